package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procurement/internal/lifecycle"
	"procurement/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetTenders(ctx context.Context, limit, offset int, statuses []models.TenderStatus) ([]models.Tender, error)
	GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error)
	AddTender(ctx context.Context, t models.Tender) (models.Tender, error)
	SaveTender(ctx context.Context, t models.Tender) (models.Tender, error)
	GetTenderRevisions(ctx context.Context, UUID string) ([]models.TenderRevision, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log, now: time.Now}
}

//// Tenders

func (s *Service) GetTenders(ctx context.Context, limit, offset int, statuses []models.TenderStatus) ([]models.Tender, error) {
	tenders, err := s.repo.GetTenders(ctx, limit, offset, statuses)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenders: %w", err)
	}
	return tenders, nil
}

func (s *Service) GetTender(ctx context.Context, tenderId string) (models.Tender, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", err)
	}
	return tender, nil
}

func (s *Service) AddTender(ctx context.Context, tender models.Tender) (models.Tender, error) {
	switch tender.Status {
	case "":
		tender.Status = models.TenderEnquiries
	case models.TenderEnquiries, models.TenderTendering:
	default:
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w",
			models.Unprocessable("status", "Tender can be created only in %s or %s status", models.TenderEnquiries, models.TenderTendering))
	}

	now := s.now()
	tender.Id = uuid.NewString()
	tender.Bids = nil
	tender.Awards = nil
	tender.Contracts = nil
	tender.Complaints = nil
	tender.AuctionPeriod = nil
	tender.AwardPeriod = nil
	for i := range tender.Lots {
		tender.Lots[i].Id = uuid.NewString()
		tender.Lots[i].Status = models.LotActive
		tender.Lots[i].AuctionPeriod = nil
	}
	tender.RefreshNumberOfBids()
	tender.CreatedAt = time.Time{}
	tender.Touch(now)

	tender, err := s.repo.AddTender(ctx, tender)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w", err)
	}

	s.log.Info("Created tender",
		zap.String("message_id", "tender_create"),
		zap.String("tender_id", tender.Id),
		zap.String("status", string(tender.Status)),
		zap.Int("lots", len(tender.Lots)),
	)
	return tender, nil
}

func (s *Service) SetTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus) (models.Tender, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}

	next, err := lifecycle.SwitchStatus(tender, status, s.now())
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}

	saved, err := s.save(ctx, next)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}

	s.log.Info("Switched tender status",
		zap.String("message_id", "tender_status_switch"),
		zap.String("tender_id", saved.Id),
		zap.String("from", string(tender.Status)),
		zap.String("to", string(saved.Status)),
	)
	return saved, nil
}

func (s *Service) TenderRevisions(ctx context.Context, tenderId string) ([]models.TenderRevision, error) {
	if _, err := uuid.Parse(tenderId); err != nil {
		return nil, fmt.Errorf("service.Service.TenderRevisions: %w", models.NotFound("tender_id", models.ErrNoTender))
	}

	revisions, err := s.repo.GetTenderRevisions(ctx, tenderId)
	if errors.Is(err, models.ErrNoTender) {
		return nil, fmt.Errorf("service.Service.TenderRevisions: %w", models.NotFound("tender_id", models.ErrNoTender))
	} else if err != nil {
		return nil, fmt.Errorf("service.Service.TenderRevisions: %w", err)
	}
	return revisions, nil
}

// Service

func (s *Service) tender(ctx context.Context, tenderId string) (models.Tender, error) {
	if _, err := uuid.Parse(tenderId); err != nil {
		return models.Tender{}, models.NotFound("tender_id", models.ErrNoTender)
	}

	tender, err := s.repo.GetTenderByUUID(ctx, tenderId)
	if errors.Is(err, models.ErrNoTender) {
		return models.Tender{}, models.NotFound("tender_id", models.ErrNoTender)
	} else if err != nil {
		return models.Tender{}, err
	}
	return tender, nil
}

// save persists the proposed tender. The caller's snapshot is only replaced
// by the returned value, so a failed save leaves nothing half applied.
func (s *Service) save(ctx context.Context, next models.Tender) (models.Tender, error) {
	next.Touch(s.now())
	saved, err := s.repo.SaveTender(ctx, next)
	if err != nil {
		s.log.Warn("Tender save failed",
			zap.String("tender_id", next.Id),
			zap.Int("revision", next.Revision),
			zap.Bool("conflict", errors.Is(err, models.ErrConflict)),
			zap.Error(err),
		)
		return models.Tender{}, err
	}
	return saved, nil
}
