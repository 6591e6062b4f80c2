package lifecycle

import (
	"errors"
	"testing"
	"time"

	"procurement/internal/fixture"
	"procurement/internal/models"
)

var allStatuses = []models.TenderStatus{
	models.TenderEnquiries,
	models.TenderTendering,
	models.TenderAuction,
	models.TenderQualification,
	models.TenderAwarded,
	models.TenderComplete,
	models.TenderCancelled,
	models.TenderUnsuccessful,
}

func TestAllow(t *testing.T) {
	allowed := map[Action][]models.TenderStatus{
		ActionAuctionInfo:     {models.TenderAuction},
		ActionAuctionPatch:    {models.TenderAuction},
		ActionAuctionReport:   {models.TenderAuction},
		ActionBidCreate:       {models.TenderTendering},
		ActionComplaintCreate: {models.TenderEnquiries, models.TenderTendering},
		ActionComplaintUpdate: {models.TenderEnquiries, models.TenderTendering, models.TenderAuction, models.TenderQualification, models.TenderAwarded},
	}

	for action, statuses := range allowed {
		ok := make(map[models.TenderStatus]bool)
		for _, s := range statuses {
			ok[s] = true
		}

		for _, status := range allStatuses {
			err := Allow(status, action)
			if ok[status] && err != nil {
				t.Errorf("Action %s should be allowed in %s, got: %s", action, status, err)
			}
			if !ok[status] && !errors.Is(err, models.ErrForbidden) {
				t.Errorf("Action %s should be forbidden in %s, got: %v", action, status, err)
			}
		}
	}
}

func TestAllowMessage(t *testing.T) {
	err := Allow(models.TenderTendering, ActionAuctionReport)

	var reqErr *models.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected request error, got %v", err)
	}
	expected := "Can't report auction results in current (active.tendering) tender status"
	if reqErr.Description != expected {
		t.Errorf("Expected description %q, got %q", expected, reqErr.Description)
	}
	if reqErr.Location != "body" || reqErr.Name != "data" {
		t.Errorf("Expected body.data location, got %s.%s", reqErr.Location, reqErr.Name)
	}
}

func TestAllowUnknownAction(t *testing.T) {
	err := Allow(models.TenderAuction, Action("tender.delete"))
	if err == nil {
		t.Fatal("Unknown action should not be allowed")
	}
}

func TestCanSwitch(t *testing.T) {
	tester := func(from, to models.TenderStatus, expected error) {
		err := CanSwitch(from, to)
		if expected == nil && err != nil {
			t.Errorf("Switch %s -> %s should be allowed, got: %s", from, to, err)
		}
		if expected != nil && !errors.Is(err, expected) {
			t.Errorf("Switch %s -> %s should fail with %q, got: %v", from, to, expected, err)
		}
	}

	tester(models.TenderEnquiries, models.TenderTendering, nil)
	tester(models.TenderTendering, models.TenderAuction, nil)
	tester(models.TenderAuction, models.TenderQualification, nil)
	tester(models.TenderQualification, models.TenderAwarded, nil)
	tester(models.TenderAwarded, models.TenderComplete, nil)
	tester(models.TenderAwarded, models.TenderCancelled, nil)

	tester(models.TenderEnquiries, models.TenderAuction, models.ErrForbidden)
	tester(models.TenderAuction, models.TenderTendering, models.ErrForbidden)
	tester(models.TenderTendering, models.TenderTendering, models.ErrForbidden)

	tester(models.TenderComplete, models.TenderCancelled, models.ErrTenderFinished)
	tester(models.TenderCancelled, models.TenderTendering, models.ErrTenderFinished)
	tester(models.TenderUnsuccessful, models.TenderAwarded, models.ErrTenderFinished)
}

func TestTerminal(t *testing.T) {
	for _, status := range allStatuses {
		expected := status == models.TenderComplete || status == models.TenderCancelled || status == models.TenderUnsuccessful
		if Terminal(status) != expected {
			t.Errorf("Terminal(%s) should be %v", status, expected)
		}
	}
}

func TestSwitchStatusAuction(t *testing.T) {
	now := time.Now().UTC()

	tender := fixture.Tender(models.TenderTendering, 0)
	next, err := SwitchStatus(tender, models.TenderAuction, now)
	if err != nil {
		t.Fatal(err)
	}
	if next.Status != models.TenderAuction {
		t.Errorf("Expected status %s, got %s", models.TenderAuction, next.Status)
	}
	if next.AuctionPeriod == nil || next.AuctionPeriod.StartDate == nil || !next.AuctionPeriod.StartDate.Equal(now) {
		t.Errorf("Expected auction period to start at %s, got %+v", now, next.AuctionPeriod)
	}
	if tender.Status != models.TenderTendering || tender.AuctionPeriod != nil {
		t.Error("SwitchStatus changed the source snapshot")
	}

	// only lots with competing bids get an auction
	tender = fixture.Tender(models.TenderTendering, 2)
	fixture.AddBid(&tender, 100, now)
	fixture.AddBid(&tender, 200, now)
	tender.Bids[1].LotValues = tender.Bids[1].LotValues[:1]
	tender.RefreshNumberOfBids()

	next, err = SwitchStatus(tender, models.TenderAuction, now)
	if err != nil {
		t.Fatal(err)
	}
	if next.Lots[0].AuctionPeriod == nil || next.Lots[0].AuctionPeriod.StartDate == nil {
		t.Error("Lot with 2 bids should get an auction period")
	}
	if next.Lots[1].AuctionPeriod != nil {
		t.Error("Lot with 1 bid should not get an auction period")
	}
	if next.AuctionPeriod != nil {
		t.Error("Lot tender should not get a tender auction period")
	}
}

func TestSwitchStatusForbidden(t *testing.T) {
	tender := fixture.Tender(models.TenderEnquiries, 0)
	next, err := SwitchStatus(tender, models.TenderAwarded, time.Now())
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("Expected forbidden error, got %v", err)
	}
	if next.Status != models.TenderEnquiries {
		t.Errorf("Failed switch should return the tender unchanged, got status %s", next.Status)
	}
}
