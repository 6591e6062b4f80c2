package models

import "time"

type ComplaintStatus string

const (
	ComplaintPending   ComplaintStatus = "pending"
	ComplaintResolved  ComplaintStatus = "resolved"
	ComplaintDeclined  ComplaintStatus = "declined"
	ComplaintInvalid   ComplaintStatus = "invalid"
	ComplaintCancelled ComplaintStatus = "cancelled"
)

func ValidComplaintStatus(t ComplaintStatus) bool {
	switch t {
	case ComplaintPending, ComplaintResolved, ComplaintDeclined, ComplaintInvalid, ComplaintCancelled:
		return true
	default:
		return false
	}
}

type Complaint struct {
	Id           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Author       Organization    `json:"author"`
	RelatedLot   string          `json:"relatedLot,omitempty"`
	Resolution   string          `json:"resolution,omitempty"`
	Status       ComplaintStatus `json:"status"`
	Date         time.Time       `json:"date"`
	DateAnswered *time.Time      `json:"dateAnswered,omitempty"`
}
