package models

import "time"

// TenderRevision is a stored snapshot of a tender as it was after a save.
type TenderRevision struct {
	Revision  int          `json:"revision"`
	Status    TenderStatus `json:"status"`
	Tender    Tender       `json:"tender"`
	CreatedAt time.Time    `json:"date"`
}
