package service

import (
	"context"
	"fmt"

	"procurement/internal/lifecycle"
	"procurement/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//// Bids

func (s *Service) AddBid(ctx context.Context, tenderId string, bid models.Bid) (models.Bid, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}

	if err = lifecycle.Allow(tender.Status, lifecycle.ActionBidCreate); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}

	if err = checkBid(&tender, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}

	now := s.now()
	bid.Id = uuid.NewString()
	if bid.Status == "" {
		bid.Status = models.BidActive
	}
	bid.Date = now
	bid.ParticipationUrl = ""
	for i := range bid.LotValues {
		bid.LotValues[i].Date = now
		bid.LotValues[i].ParticipationUrl = ""
	}

	next := tender.Clone()
	next.Bids = append(next.Bids, bid)
	next.RefreshNumberOfBids()

	saved, err := s.save(ctx, next)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}

	s.log.Info("Created tender bid",
		zap.String("message_id", "tender_bid_create"),
		zap.String("tender_id", saved.Id),
		zap.String("bid_id", bid.Id),
		zap.Int("lot_values", len(bid.LotValues)),
	)
	return bid, nil
}

func checkBid(t *models.Tender, bid models.Bid) error {
	if bid.Status != "" && !models.ValidBidStatus(bid.Status) {
		return models.Unprocessable("status", "Value must be one of [%s %s]", models.BidActive, models.BidInvalid)
	}

	if len(t.Lots) == 0 {
		if bid.Value == nil {
			return models.Unprocessable("value", "This field is required.")
		}
		if len(bid.LotValues) > 0 {
			return models.Unprocessable("lotValues", "Rogue field")
		}
		if bid.Value.Currency != t.Value.Currency {
			return models.Unprocessable("value", "currency of bid should be identical to currency of value of tender")
		}
		return nil
	}

	if len(bid.LotValues) == 0 {
		return models.Unprocessable("lotValues", "This field is required.")
	}
	seen := make(map[string]bool, len(bid.LotValues))
	for _, lv := range bid.LotValues {
		lot, ok := t.Lot(lv.RelatedLot)
		if !ok || seen[lv.RelatedLot] {
			return models.Unprocessable("lotValues", "relatedLot should be one of lots")
		}
		seen[lv.RelatedLot] = true
		if lot.Status != models.LotActive {
			return models.Unprocessable("lotValues", "Can add bid only in active lot status")
		}
		if lv.Value.Currency != t.Value.Currency {
			return models.Unprocessable("lotValues", "currency of bid should be identical to currency of value of lot")
		}
	}
	return nil
}
