package models

import "time"

type BidStatus string

const (
	BidActive  BidStatus = "active"
	BidInvalid BidStatus = "invalid"
)

func ValidBidStatus(t BidStatus) bool {
	switch t {
	case BidActive, BidInvalid:
		return true
	default:
		return false
	}
}

type LotValue struct {
	RelatedLot       string    `json:"relatedLot"`
	Value            Value     `json:"value"`
	ParticipationUrl string    `json:"participationUrl,omitempty"`
	Date             time.Time `json:"date"`
}

type Bid struct {
	Id               string         `json:"id"`
	Tenderers        []Organization `json:"tenderers"`
	Status           BidStatus      `json:"status"`
	Value            *Value         `json:"value,omitempty"`
	LotValues        []LotValue     `json:"lotValues,omitempty"`
	ParticipationUrl string         `json:"participationUrl,omitempty"`
	Date             time.Time      `json:"date"`
}

func (b *Bid) LotValue(lotId string) (*LotValue, bool) {
	for i := range b.LotValues {
		if b.LotValues[i].RelatedLot == lotId {
			return &b.LotValues[i], true
		}
	}
	return nil, false
}

func (b Bid) clone() Bid {
	c := b
	c.Value = b.Value.clone()
	c.Tenderers = append([]Organization(nil), b.Tenderers...)
	c.LotValues = append([]LotValue(nil), b.LotValues...)
	return c
}
