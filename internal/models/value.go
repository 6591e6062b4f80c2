package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers, as in the rest of the procurement API
	decimal.MarshalJSONWithoutQuotes = true
}

type Value struct {
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	ValueAddedTaxIncluded bool            `json:"valueAddedTaxIncluded"`
}

type Period struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Ended reports whether the period has a closing date.
func (p *Period) Ended() bool {
	return p != nil && p.EndDate != nil && !p.EndDate.IsZero()
}

func (p *Period) clone() *Period {
	if p == nil {
		return nil
	}
	c := &Period{}
	if p.StartDate != nil {
		t := *p.StartDate
		c.StartDate = &t
	}
	if p.EndDate != nil {
		t := *p.EndDate
		c.EndDate = &t
	}
	return c
}

func (v *Value) clone() *Value {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
