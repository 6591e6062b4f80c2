package models

type LotStatus string

const (
	LotActive       LotStatus = "active"
	LotCancelled    LotStatus = "cancelled"
	LotUnsuccessful LotStatus = "unsuccessful"
	LotComplete     LotStatus = "complete"
)

type Lot struct {
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Value         Value     `json:"value"`
	MinimalStep   Value     `json:"minimalStep"`
	AuctionPeriod *Period   `json:"auctionPeriod,omitempty"`
	AuctionUrl    string    `json:"auctionUrl,omitempty"`
	NumberOfBids  int       `json:"numberOfBids"`
	Status        LotStatus `json:"status"`
}

func (l Lot) clone() Lot {
	c := l
	c.AuctionPeriod = l.AuctionPeriod.clone()
	return c
}
