package models

import "time"

type AwardStatus string

const (
	AwardPending      AwardStatus = "pending"
	AwardActive       AwardStatus = "active"
	AwardUnsuccessful AwardStatus = "unsuccessful"
	AwardCancelled    AwardStatus = "cancelled"
)

type Award struct {
	Id              string         `json:"id"`
	BidId           string         `json:"bid_id"`
	LotId           string         `json:"lotID,omitempty"`
	Status          AwardStatus    `json:"status"`
	Value           Value          `json:"value"`
	Suppliers       []Organization `json:"suppliers"`
	Date            time.Time      `json:"date"`
	ComplaintPeriod *Period        `json:"complaintPeriod,omitempty"`
}

func (a Award) clone() Award {
	c := a
	c.Suppliers = append([]Organization(nil), a.Suppliers...)
	c.ComplaintPeriod = a.ComplaintPeriod.clone()
	return c
}

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractActive    ContractStatus = "active"
	ContractCancelled ContractStatus = "cancelled"
)

type Contract struct {
	Id      string         `json:"id"`
	AwardId string         `json:"awardID"`
	Status  ContractStatus `json:"status"`
}
