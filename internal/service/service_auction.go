package service

import (
	"context"
	"fmt"

	"procurement/internal/lifecycle"
	"procurement/internal/models"
	"procurement/internal/qualification"

	"go.uber.org/zap"
)

//// Auction

// GetAuction returns the tender for the auction module. lotId is empty for
// the tender wide endpoint.
func (s *Service) GetAuction(ctx context.Context, tenderId, lotId string) (models.Tender, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetAuction: %w", err)
	}

	if err = lifecycle.Allow(tender.Status, lifecycle.ActionAuctionInfo); err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetAuction: %w", err)
	}

	if lotId != "" {
		if _, ok := tender.Lot(lotId); !ok {
			return models.Tender{}, fmt.Errorf("service.Service.GetAuction: %w", models.NotFound("auction_lot_id", models.ErrNoLot))
		}
	}

	return tender, nil
}

// PatchAuction stores auction and participation urls.
func (s *Service) PatchAuction(ctx context.Context, tenderId, lotId string, data lifecycle.AuctionData) (models.Tender, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.PatchAuction: %w", err)
	}

	if err = lifecycle.Allow(tender.Status, lifecycle.ActionAuctionPatch); err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.PatchAuction: %w", err)
	}

	if err = lifecycle.ValidateAuctionData(tender, lotId, data, false); err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.PatchAuction: %w", err)
	}

	next := lifecycle.ApplyAuctionUrls(tender, lotId, data)
	saved, err := s.save(ctx, next)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.PatchAuction: %w", err)
	}

	s.log.Info("Updated auction urls",
		zap.String("message_id", "tender_auction_patch"),
		zap.String("tender_id", saved.Id),
		zap.String("lot_id", lotId),
	)
	return saved, nil
}

// ReportAuction records auction results. When every competitive auction of
// the tender has closed, qualification starts with the next award.
func (s *Service) ReportAuction(ctx context.Context, tenderId, lotId string, data lifecycle.AuctionData) (models.Tender, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.ReportAuction: %w", err)
	}

	if err = lifecycle.Allow(tender.Status, lifecycle.ActionAuctionReport); err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.ReportAuction: %w", err)
	}

	if err = lifecycle.ValidateAuctionData(tender, lotId, data, true); err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.ReportAuction: %w", err)
	}

	now := s.now()
	next := lifecycle.ApplyAuctionResults(tender, lotId, data, now)
	awarded := lifecycle.AuctionsClosed(next)
	if awarded {
		next = qualification.NextAward(next, now)
	}

	saved, err := s.save(ctx, next)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.ReportAuction: %w", err)
	}

	s.log.Info("Report auction results",
		zap.String("message_id", "tender_auction_post"),
		zap.String("tender_id", saved.Id),
		zap.String("lot_id", lotId),
		zap.Bool("next_award", awarded),
		zap.String("status", string(saved.Status)),
	)
	return saved, nil
}
