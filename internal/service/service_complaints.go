package service

import (
	"context"
	"fmt"

	"procurement/internal/lifecycle"
	"procurement/internal/models"
	"procurement/internal/qualification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//// Complaints

func (s *Service) GetComplaints(ctx context.Context, tenderId string) ([]models.Complaint, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetComplaints: %w", err)
	}

	result := make([]models.Complaint, 0, len(tender.Complaints))
	return append(result, tender.Complaints...), nil
}

func (s *Service) GetComplaint(ctx context.Context, tenderId, complaintId string) (models.Complaint, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.GetComplaint: %w", err)
	}

	complaint, ok := tender.Complaint(complaintId)
	if !ok {
		return models.Complaint{}, fmt.Errorf("service.Service.GetComplaint: %w", models.NotFound("complaint_id", models.ErrNoComplaint))
	}
	return *complaint, nil
}

func (s *Service) AddComplaint(ctx context.Context, tenderId string, complaint models.Complaint) (models.Complaint, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.AddComplaint: %w", err)
	}

	if err = lifecycle.Allow(tender.Status, lifecycle.ActionComplaintCreate); err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.AddComplaint: %w", err)
	}

	if complaint.RelatedLot != "" {
		if _, ok := tender.Lot(complaint.RelatedLot); !ok {
			return models.Complaint{}, fmt.Errorf("service.Service.AddComplaint: %w",
				models.Unprocessable("relatedLot", "relatedLot should be one of lots"))
		}
	}

	complaint.Id = uuid.NewString()
	complaint.Status = models.ComplaintPending
	complaint.Resolution = ""
	complaint.Date = s.now()
	complaint.DateAnswered = nil

	next := tender.Clone()
	next.Complaints = append(next.Complaints, complaint)

	saved, err := s.save(ctx, next)
	if err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.AddComplaint: %w", err)
	}

	s.log.Info("Created tender complaint",
		zap.String("message_id", "tender_complaint_create"),
		zap.String("tender_id", saved.Id),
		zap.String("complaint_id", complaint.Id),
	)
	return complaint, nil
}

// UpdateComplaint applies a reviewer decision. Resolving a complaint outside
// the enquiry period cancels the tender; declining or invalidating one on an
// awarded tender re-evaluates the tender status.
func (s *Service) UpdateComplaint(ctx context.Context, tenderId, complaintId string, patch lifecycle.ComplaintPatch) (models.Complaint, error) {
	tender, err := s.tender(ctx, tenderId)
	if err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.UpdateComplaint: %w", err)
	}

	if err = lifecycle.Allow(tender.Status, lifecycle.ActionComplaintUpdate); err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.UpdateComplaint: %w", err)
	}

	complaint, ok := tender.Complaint(complaintId)
	if !ok {
		return models.Complaint{}, fmt.Errorf("service.Service.UpdateComplaint: %w", models.NotFound("complaint_id", models.ErrNoComplaint))
	}

	target := complaint.Status
	if patch.Status != nil {
		target = *patch.Status
	}
	if err = lifecycle.CheckComplaintUpdate(complaint.Status, target); err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.UpdateComplaint: %w", err)
	}

	now := s.now()
	next, effect, err := lifecycle.ApplyComplaintPatch(tender, complaintId, patch, now)
	if err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.UpdateComplaint: %w", err)
	}
	if effect == lifecycle.EffectStatusRecheck {
		next = qualification.CheckStatus(next, now)
	}

	saved, err := s.save(ctx, next)
	if err != nil {
		return models.Complaint{}, fmt.Errorf("service.Service.UpdateComplaint: %w", err)
	}

	updated, _ := saved.Complaint(complaintId)
	s.log.Info("Updated tender complaint",
		zap.String("message_id", "tender_complaint_patch"),
		zap.String("tender_id", saved.Id),
		zap.String("complaint_id", complaintId),
		zap.String("complaint_status", string(updated.Status)),
		zap.Stringer("effect", effect),
		zap.String("tender_status", string(saved.Status)),
	)
	return *updated, nil
}
