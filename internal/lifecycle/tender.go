// Package lifecycle holds the transition tables of the tender aggregate and
// the pure functions that move a tender snapshot from one state to the next.
package lifecycle

import (
	"fmt"
	"time"

	"procurement/internal/models"
)

type Action string

const (
	ActionAuctionInfo     Action = "auction.info"
	ActionAuctionPatch    Action = "auction.patch"
	ActionAuctionReport   Action = "auction.report"
	ActionBidCreate       Action = "bid.create"
	ActionComplaintCreate Action = "complaint.create"
	ActionComplaintUpdate Action = "complaint.update"
)

type rule struct {
	statuses []models.TenderStatus
	message  string
}

var actions = map[Action]rule{
	ActionAuctionInfo: {
		statuses: []models.TenderStatus{models.TenderAuction},
		message:  "Can't get auction info in current (%s) tender status",
	},
	ActionAuctionPatch: {
		statuses: []models.TenderStatus{models.TenderAuction},
		message:  "Can't update auction urls in current (%s) tender status",
	},
	ActionAuctionReport: {
		statuses: []models.TenderStatus{models.TenderAuction},
		message:  "Can't report auction results in current (%s) tender status",
	},
	ActionBidCreate: {
		statuses: []models.TenderStatus{models.TenderTendering},
		message:  "Can't add bid in current (%s) tender status",
	},
	ActionComplaintCreate: {
		statuses: []models.TenderStatus{models.TenderEnquiries, models.TenderTendering},
		message:  "Can't add complaint in current (%s) tender status",
	},
	ActionComplaintUpdate: {
		statuses: []models.TenderStatus{
			models.TenderEnquiries,
			models.TenderTendering,
			models.TenderAuction,
			models.TenderQualification,
			models.TenderAwarded,
		},
		message: "Can't update complaint in current (%s) tender status",
	},
}

// Allow checks the action against the tender status. The returned error
// wraps models.ErrForbidden.
func Allow(status models.TenderStatus, action Action) error {
	r, ok := actions[action]
	if !ok {
		return fmt.Errorf("lifecycle.Allow: unknown action %q", action)
	}
	for _, s := range r.statuses {
		if s == status {
			return nil
		}
	}
	return models.Forbidden(r.message, status)
}

var tenderTransitions = map[models.TenderStatus][]models.TenderStatus{
	models.TenderEnquiries:     {models.TenderTendering, models.TenderCancelled},
	models.TenderTendering:     {models.TenderAuction, models.TenderCancelled, models.TenderUnsuccessful},
	models.TenderAuction:       {models.TenderQualification, models.TenderCancelled},
	models.TenderQualification: {models.TenderAwarded, models.TenderUnsuccessful, models.TenderCancelled},
	models.TenderAwarded:       {models.TenderComplete, models.TenderUnsuccessful, models.TenderCancelled},
}

// Terminal reports whether no transition leaves the status.
func Terminal(status models.TenderStatus) bool {
	return len(tenderTransitions[status]) == 0
}

func CanSwitch(from, to models.TenderStatus) error {
	if Terminal(from) {
		return fmt.Errorf("lifecycle.CanSwitch: %w", models.ErrTenderFinished)
	}
	for _, s := range tenderTransitions[from] {
		if s == to {
			return nil
		}
	}
	return models.Forbidden("Can't switch tender from (%s) to (%s) status", from, to)
}

// SwitchStatus returns a copy of t moved to status to. Entering the auction
// opens the auction period of the tender, or of every lot with competing
// bids.
func SwitchStatus(t models.Tender, to models.TenderStatus, now time.Time) (models.Tender, error) {
	if err := CanSwitch(t.Status, to); err != nil {
		return t, err
	}

	next := t.Clone()
	next.Status = to
	if to != models.TenderAuction {
		return next, nil
	}

	next.RefreshNumberOfBids()
	start := now
	if len(next.Lots) == 0 {
		if next.AuctionPeriod == nil {
			next.AuctionPeriod = &models.Period{}
		}
		next.AuctionPeriod.StartDate = &start
		return next, nil
	}
	for i := range next.Lots {
		lot := &next.Lots[i]
		if lot.Status != models.LotActive || lot.NumberOfBids < 2 {
			continue
		}
		if lot.AuctionPeriod == nil {
			lot.AuctionPeriod = &models.Period{}
		}
		lot.AuctionPeriod.StartDate = &start
	}
	return next, nil
}
