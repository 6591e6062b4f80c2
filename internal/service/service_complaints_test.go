package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"procurement/internal/fixture"
	"procurement/internal/lifecycle"
	"procurement/internal/models"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

func newComplaint() models.Complaint {
	return models.Complaint{
		Title:       gofakeit.BuzzWord(),
		Description: gofakeit.Blurb(),
		Author:      fixture.Organization(),
		// client supplied values that must be ignored
		Status:     models.ComplaintResolved,
		Resolution: "accepted",
	}
}

func patchStatus(s models.ComplaintStatus) lifecycle.ComplaintPatch {
	return lifecycle.ComplaintPatch{Status: &s}
}

func TestAddComplaint(t *testing.T) {
	svc, repo, logs := NewTestService(t)
	ctx := context.Background()

	tender := seed(t, repo, fixture.Tender(models.TenderTendering, 1))
	complaint, err := svc.AddComplaint(ctx, tender.Id, newComplaint())
	if err != nil {
		t.Fatal(err)
	}
	if _, err = uuid.Parse(complaint.Id); err != nil {
		t.Errorf("Expected generated uuid, got %q", complaint.Id)
	}
	if complaint.Status != models.ComplaintPending || complaint.Resolution != "" || !complaint.Date.Equal(testNow) {
		t.Errorf("Expected fresh pending complaint dated %s, got %+v", testNow, complaint)
	}
	if !messageLogged(logs, "tender_complaint_create") {
		t.Error("Expected tender_complaint_create to be logged")
	}

	got, err := svc.GetComplaint(ctx, tender.Id, complaint.Id)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, complaint) {
		t.Errorf("Stored complaint differs: %+v != %+v", got, complaint)
	}

	lotComplaint := newComplaint()
	lotComplaint.RelatedLot = tender.Lots[0].Id
	if _, err = svc.AddComplaint(ctx, tender.Id, lotComplaint); err != nil {
		t.Fatal(err)
	}

	list, err := svc.GetComplaints(ctx, tender.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 complaints, got %d", len(list))
	}

	lotComplaint.RelatedLot = uuid.NewString()
	_, err = svc.AddComplaint(ctx, tender.Id, lotComplaint)
	if !errors.Is(err, models.ErrUnprocessable) {
		t.Errorf("Expected unknown relatedLot to be unprocessable, got %v", err)
	}
}

func TestAddComplaintForbidden(t *testing.T) {
	svc, repo, _ := NewTestService(t)
	ctx := context.Background()

	for _, status := range []models.TenderStatus{models.TenderAuction, models.TenderQualification, models.TenderAwarded, models.TenderComplete} {
		tender := seed(t, repo, fixture.Tender(status, 0))
		_, err := svc.AddComplaint(ctx, tender.Id, newComplaint())
		if !errors.Is(err, models.ErrForbidden) {
			t.Errorf("Expected complaint in %s to be forbidden, got %v", status, err)
		}
	}
}

func TestGetComplaintNotFound(t *testing.T) {
	svc, repo, _ := NewTestService(t)
	ctx := context.Background()

	tender := seed(t, repo, fixture.Tender(models.TenderTendering, 0))
	_, err := svc.GetComplaint(ctx, tender.Id, uuid.NewString())
	if !errors.Is(err, models.ErrNoComplaint) {
		t.Errorf("Expected %q, got %v", models.ErrNoComplaint, err)
	}

	_, err = svc.GetComplaints(ctx, uuid.NewString())
	if !errors.Is(err, models.ErrNoTender) {
		t.Errorf("Expected %q, got %v", models.ErrNoTender, err)
	}
}

func TestUpdateComplaintResolved(t *testing.T) {
	svc, repo, logs := NewTestService(t)
	ctx := context.Background()

	tender := fixture.Tender(models.TenderTendering, 2)
	first := fixture.AddComplaint(&tender, models.ComplaintPending, "")
	second := fixture.AddComplaint(&tender, models.ComplaintPending, tender.Lots[1].Id)
	tender = seed(t, repo, tender)

	resolution := gofakeit.Blurb()
	patch := patchStatus(models.ComplaintResolved)
	patch.Resolution = &resolution

	complaint, err := svc.UpdateComplaint(ctx, tender.Id, first, patch)
	if err != nil {
		t.Fatal(err)
	}
	if complaint.Status != models.ComplaintResolved || complaint.Resolution != resolution {
		t.Errorf("Expected resolved complaint with resolution, got %+v", complaint)
	}
	if complaint.DateAnswered == nil || !complaint.DateAnswered.Equal(testNow) {
		t.Errorf("Expected dateAnswered %s, got %v", testNow, complaint.DateAnswered)
	}

	stored, _ := svc.GetTender(ctx, tender.Id)
	if stored.Status != models.TenderCancelled {
		t.Errorf("Expected tender %s, got %s", models.TenderCancelled, stored.Status)
	}
	for _, lot := range stored.Lots {
		if lot.Status != models.LotCancelled {
			t.Errorf("Expected lot %s cancelled, got %s", lot.Id, lot.Status)
		}
	}
	if c, _ := stored.Complaint(second); c.Status != models.ComplaintCancelled {
		t.Errorf("Expected other pending complaint cancelled, got %s", c.Status)
	}
	if !messageLogged(logs, "tender_complaint_patch") {
		t.Error("Expected tender_complaint_patch to be logged")
	}

	// the tender is finished, no more updates
	_, err = svc.UpdateComplaint(ctx, tender.Id, second, patchStatus(models.ComplaintDeclined))
	var reqErr *models.RequestError
	if !errors.As(err, &reqErr) || reqErr.Description != "Can't update complaint in current (cancelled) tender status" {
		t.Errorf("Expected forbidden update on cancelled tender, got %v", err)
	}
}

func TestUpdateComplaintRules(t *testing.T) {
	svc, repo, _ := NewTestService(t)
	ctx := context.Background()

	tender := fixture.Tender(models.TenderTendering, 0)
	pending := fixture.AddComplaint(&tender, models.ComplaintPending, "")
	declined := fixture.AddComplaint(&tender, models.ComplaintDeclined, "")
	tender = seed(t, repo, tender)

	tester := func(complaintId string, patch lifecycle.ComplaintPatch, expected error, name string) {
		_, err := svc.UpdateComplaint(ctx, tender.Id, complaintId, patch)
		if !errors.Is(err, expected) {
			t.Errorf("%s: expected %q, got %v", name, expected, err)
		}
	}

	tester(pending, patchStatus(models.ComplaintCancelled), models.ErrForbidden, "cancel by client")
	tester(declined, patchStatus(models.ComplaintResolved), models.ErrForbidden, "update answered complaint")
	tester(pending, patchStatus("accepted"), models.ErrUnprocessable, "unknown status")
	tester(uuid.NewString(), patchStatus(models.ComplaintDeclined), models.ErrNoComplaint, "unknown complaint")

	stored, _ := repo.GetTenderByUUID(ctx, tender.Id)
	if !reflect.DeepEqual(stored, tender) {
		t.Error("Rejected updates changed the stored tender")
	}

	// declining outside of active.awarded does nothing else
	complaint, err := svc.UpdateComplaint(ctx, tender.Id, pending, patchStatus(models.ComplaintDeclined))
	if err != nil {
		t.Fatal(err)
	}
	stored, _ = repo.GetTenderByUUID(ctx, tender.Id)
	if complaint.Status != models.ComplaintDeclined || stored.Status != models.TenderTendering {
		t.Errorf("Expected declined complaint on tendering tender, got %s / %s", complaint.Status, stored.Status)
	}
}

func TestUpdateComplaintRecheck(t *testing.T) {
	svc, repo, _ := NewTestService(t)
	ctx := context.Background()

	tender := fixture.Tender(models.TenderAwarded, 0)
	bid := fixture.AddBid(&tender, 500, testNow)
	fixture.AddAward(&tender, bid, "", models.AwardUnsuccessful, testNow.Add(-time.Hour))
	complaint := fixture.AddComplaint(&tender, models.ComplaintPending, "")
	tender = seed(t, repo, tender)

	_, err := svc.UpdateComplaint(ctx, tender.Id, complaint, patchStatus(models.ComplaintInvalid))
	if err != nil {
		t.Fatal(err)
	}

	stored, _ := svc.GetTender(ctx, tender.Id)
	if stored.Status != models.TenderUnsuccessful {
		t.Errorf("Expected status recheck to end in %s, got %s", models.TenderUnsuccessful, stored.Status)
	}
}

func TestUpdateComplaintFailedSave(t *testing.T) {
	svc, repo, _ := NewTestService(t)
	ctx := context.Background()

	tender := fixture.Tender(models.TenderTendering, 1)
	complaint := fixture.AddComplaint(&tender, models.ComplaintPending, "")
	tender = seed(t, repo, tender)
	svc.repo = failingRepo{repo}

	_, err := svc.UpdateComplaint(ctx, tender.Id, complaint, patchStatus(models.ComplaintResolved))
	if err == nil {
		t.Fatal("Expected save failure to be reported")
	}

	stored, _ := repo.GetTenderByUUID(ctx, tender.Id)
	if !reflect.DeepEqual(stored, tender) {
		t.Error("Failed save changed the stored tender")
	}
}
