package lifecycle

import (
	"time"

	"procurement/internal/models"
)

// client driven complaint transitions; cancelled is only reached by cascade
var complaintTransitions = map[models.ComplaintStatus][]models.ComplaintStatus{
	models.ComplaintPending: {
		models.ComplaintPending,
		models.ComplaintResolved,
		models.ComplaintDeclined,
		models.ComplaintInvalid,
	},
}

// CheckComplaintUpdate validates a client request to move a complaint from
// current to target status.
func CheckComplaintUpdate(current, target models.ComplaintStatus) error {
	if current != models.ComplaintPending {
		return models.Forbidden("Can't update complaint in current (%s) status", current)
	}
	if target == models.ComplaintCancelled {
		return models.Forbidden("Can't cancel complaint")
	}
	if !models.ValidComplaintStatus(target) {
		return models.Unprocessable("status", "Value must be one of %v", complaintTransitions[current])
	}
	for _, s := range complaintTransitions[current] {
		if s == target {
			return nil
		}
	}
	return models.Forbidden("Can't update complaint from (%s) to (%s) status", current, target)
}

type Effect int

const (
	EffectNone Effect = iota
	EffectTenderCancelled
	EffectStatusRecheck
)

func (e Effect) String() string {
	switch e {
	case EffectTenderCancelled:
		return "tender_cancelled"
	case EffectStatusRecheck:
		return "status_recheck"
	default:
		return "none"
	}
}

// ComplaintPatch carries the fields a reviewer may change.
type ComplaintPatch struct {
	Status     *models.ComplaintStatus
	Resolution *string
}

// ApplyComplaintPatch returns a copy of t with the patch applied to the
// complaint and the cascade that follows from its new status. A returned
// EffectStatusRecheck means the caller must re-evaluate the tender status.
func ApplyComplaintPatch(t models.Tender, complaintId string, patch ComplaintPatch, now time.Time) (models.Tender, Effect, error) {
	next := t.Clone()
	complaint, ok := next.Complaint(complaintId)
	if !ok {
		return t, EffectNone, models.NotFound("complaint_id", models.ErrNoComplaint)
	}

	if patch.Resolution != nil {
		complaint.Resolution = *patch.Resolution
	}
	if patch.Status != nil && *patch.Status != complaint.Status {
		complaint.Status = *patch.Status
		answered := now
		complaint.DateAnswered = &answered
	}

	switch {
	case complaint.Status == models.ComplaintResolved && next.Status != models.TenderEnquiries:
		return CancelTender(next, complaint.Id), EffectTenderCancelled, nil
	case (complaint.Status == models.ComplaintDeclined || complaint.Status == models.ComplaintInvalid) &&
		next.Status == models.TenderAwarded:
		return next, EffectStatusRecheck, nil
	}
	return next, EffectNone, nil
}

// CancelTender cancels every pending complaint except keep, every lot and
// the tender itself. Prior lot and tender statuses are not consulted.
func CancelTender(t models.Tender, keep string) models.Tender {
	next := t.Clone()
	for i := range next.Complaints {
		if next.Complaints[i].Id != keep && next.Complaints[i].Status == models.ComplaintPending {
			next.Complaints[i].Status = models.ComplaintCancelled
		}
	}
	for i := range next.Lots {
		next.Lots[i].Status = models.LotCancelled
	}
	next.Status = models.TenderCancelled
	return next
}
