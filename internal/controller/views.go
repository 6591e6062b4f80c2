package controller

import (
	"time"

	"procurement/internal/models"
)

// TenderView hides bids while the tender is still collecting them.
func TenderView(t models.Tender) models.Tender {
	switch t.Status {
	case models.TenderEnquiries, models.TenderTendering:
		v := t.Clone()
		v.Bids = nil
		return v
	default:
		return t
	}
}

type AuctionLotView struct {
	Id            string           `json:"id"`
	Status        models.LotStatus `json:"status"`
	Value         models.Value     `json:"value"`
	MinimalStep   models.Value     `json:"minimalStep"`
	AuctionPeriod *models.Period   `json:"auctionPeriod,omitempty"`
	AuctionUrl    string           `json:"auctionUrl,omitempty"`
}

type AuctionBidView struct {
	Id               string            `json:"id"`
	Status           models.BidStatus  `json:"status"`
	Value            *models.Value     `json:"value,omitempty"`
	LotValues        []models.LotValue `json:"lotValues,omitempty"`
	ParticipationUrl string            `json:"participationUrl,omitempty"`
	Date             time.Time         `json:"date"`
}

// AuctionView is the part of a tender the auction module works with.
type AuctionView struct {
	Id            string              `json:"id"`
	Status        models.TenderStatus `json:"status"`
	DateModified  time.Time           `json:"dateModified"`
	Value         models.Value        `json:"value"`
	MinimalStep   models.Value        `json:"minimalStep"`
	TenderPeriod  *models.Period      `json:"tenderPeriod,omitempty"`
	AuctionPeriod *models.Period      `json:"auctionPeriod,omitempty"`
	AuctionUrl    string              `json:"auctionUrl,omitempty"`
	Lots          []AuctionLotView    `json:"lots,omitempty"`
	Bids          []AuctionBidView    `json:"bids,omitempty"`
}

func NewAuctionView(t models.Tender) AuctionView {
	v := AuctionView{
		Id:            t.Id,
		Status:        t.Status,
		DateModified:  t.DateModified,
		Value:         t.Value,
		MinimalStep:   t.MinimalStep,
		TenderPeriod:  t.TenderPeriod,
		AuctionPeriod: t.AuctionPeriod,
		AuctionUrl:    t.AuctionUrl,
	}
	for _, lot := range t.Lots {
		v.Lots = append(v.Lots, AuctionLotView{
			Id:            lot.Id,
			Status:        lot.Status,
			Value:         lot.Value,
			MinimalStep:   lot.MinimalStep,
			AuctionPeriod: lot.AuctionPeriod,
			AuctionUrl:    lot.AuctionUrl,
		})
	}
	for _, bid := range t.Bids {
		v.Bids = append(v.Bids, AuctionBidView{
			Id:               bid.Id,
			Status:           bid.Status,
			Value:            bid.Value,
			LotValues:        bid.LotValues,
			ParticipationUrl: bid.ParticipationUrl,
			Date:             bid.Date,
		})
	}
	return v
}
