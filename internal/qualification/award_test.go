package qualification

import (
	"testing"
	"time"

	"procurement/internal/fixture"
	"procurement/internal/models"
)

func TestNextAwardCheapest(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 0)
	fixture.AddBid(&tender, 900, now.Add(-3*time.Hour))
	late := fixture.AddBid(&tender, 700, now.Add(-time.Hour))
	early := fixture.AddBid(&tender, 700, now.Add(-2*time.Hour))

	next := NextAward(tender, now)

	if next.Status != models.TenderQualification {
		t.Fatalf("Expected status %s, got %s", models.TenderQualification, next.Status)
	}
	if len(next.Awards) != 1 {
		t.Fatalf("Expected exactly one award, got %d", len(next.Awards))
	}
	award := next.Awards[0]
	if award.BidId != early {
		t.Errorf("Expected the earliest of the cheapest bids %s to win, got %s (late one is %s)", early, award.BidId, late)
	}
	if award.Status != models.AwardPending {
		t.Errorf("Expected pending award, got %s", award.Status)
	}
	if award.ComplaintPeriod == nil || award.ComplaintPeriod.StartDate == nil || !award.ComplaintPeriod.StartDate.Equal(now) {
		t.Errorf("Expected complaint period to start at %s, got %+v", now, award.ComplaintPeriod)
	}
	if next.AwardPeriod == nil || next.AwardPeriod.StartDate == nil || next.AwardPeriod.EndDate != nil {
		t.Errorf("Expected open award period, got %+v", next.AwardPeriod)
	}
	if len(tender.Awards) != 0 || tender.Status != models.TenderAuction {
		t.Error("NextAward changed the source tender")
	}
}

func TestNextAwardSkipsUnsuccessful(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderQualification, 0)
	cheap := fixture.AddBid(&tender, 500, now)
	second := fixture.AddBid(&tender, 600, now)
	fixture.AddAward(&tender, cheap, "", models.AwardUnsuccessful, time.Time{})

	next := NextAward(tender, now)

	if len(next.Awards) != 2 || next.Awards[1].BidId != second {
		t.Fatalf("Expected second bid %s to be awarded next, got %+v", second, next.Awards)
	}
	if next.Status != models.TenderQualification {
		t.Errorf("Expected status %s, got %s", models.TenderQualification, next.Status)
	}
}

func TestNextAwardNoBids(t *testing.T) {
	tender := fixture.Tender(models.TenderAuction, 0)

	next := NextAward(tender, time.Now())

	if next.Status != models.TenderUnsuccessful {
		t.Errorf("Tender without bids should become %s, got %s", models.TenderUnsuccessful, next.Status)
	}
}

func TestNextAwardAllUnsuccessful(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderQualification, 0)
	bid := fixture.AddBid(&tender, 500, now)
	fixture.AddAward(&tender, bid, "", models.AwardUnsuccessful, time.Time{})

	next := NextAward(tender, now)

	if len(next.Awards) != 1 {
		t.Fatalf("No new award expected, got %d awards", len(next.Awards))
	}
	if next.Status != models.TenderAwarded || next.AwardPeriod.EndDate == nil {
		t.Errorf("Expected awarded tender with closed award period, got %s %+v", next.Status, next.AwardPeriod)
	}
}

func TestNextAwardLots(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 3)
	bid := fixture.AddBid(&tender, 800, now)
	// no bids on the last lot
	tender.Bids[0].LotValues = tender.Bids[0].LotValues[:2]
	tender.RefreshNumberOfBids()
	// the second lot already has an active award
	fixture.AddAward(&tender, bid, tender.Lots[1].Id, models.AwardActive, time.Time{})

	next := NextAward(tender, now)

	if next.Lots[2].Status != models.LotUnsuccessful {
		t.Errorf("Lot without bids should be %s, got %s", models.LotUnsuccessful, next.Lots[2].Status)
	}
	if awards := next.LotAwards(tender.Lots[0].Id); len(awards) != 1 || awards[0].Status != models.AwardPending {
		t.Errorf("Expected one pending award on the first lot, got %+v", awards)
	}
	if awards := next.LotAwards(tender.Lots[1].Id); len(awards) != 1 {
		t.Errorf("Lot with an active award should not get a new one, got %d awards", len(awards))
	}
	if next.Status != models.TenderQualification {
		t.Errorf("Expected status %s, got %s", models.TenderQualification, next.Status)
	}
}

func TestNextAwardLotsAwarded(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderQualification, 1)
	bid := fixture.AddBid(&tender, 800, now)
	fixture.AddAward(&tender, bid, tender.Lots[0].Id, models.AwardActive, time.Time{})

	next := NextAward(tender, now)

	if next.Status != models.TenderAwarded {
		t.Errorf("Expected status %s, got %s", models.TenderAwarded, next.Status)
	}
	if next.AwardPeriod.EndDate == nil || !next.AwardPeriod.EndDate.Equal(now) {
		t.Errorf("Expected award period to end at %s, got %+v", now, next.AwardPeriod)
	}
}
