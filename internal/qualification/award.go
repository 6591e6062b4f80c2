// Package qualification picks award candidates after an auction and settles
// the tender status once awards and complaints allow it.
package qualification

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"procurement/internal/models"
)

type candidate struct {
	bidId     string
	value     models.Value
	date      time.Time
	suppliers []models.Organization
}

// NextAward returns a copy of t with a pending award appended for every
// lot (or for the tender) that has no pending or active award yet, and the
// tender status moved to qualification or awarded accordingly.
func NextAward(t models.Tender, now time.Time) models.Tender {
	next := t.Clone()
	if next.AwardPeriod == nil {
		next.AwardPeriod = &models.Period{}
	}
	if next.AwardPeriod.StartDate == nil {
		start := now
		next.AwardPeriod.StartDate = &start
	}

	if len(next.Lots) > 0 {
		nextLotAwards(&next, now)
	} else {
		nextTenderAward(&next, now)
	}
	return next
}

func nextLotAwards(t *models.Tender, now time.Time) {
	pending := false
	for i := range t.Lots {
		lot := &t.Lots[i]
		if lot.Status != models.LotActive {
			continue
		}

		awards := t.LotAwards(lot.Id)
		if n := len(awards); n > 0 && (awards[n-1].Status == models.AwardPending || awards[n-1].Status == models.AwardActive) {
			pending = pending || awards[n-1].Status == models.AwardPending
			continue
		}

		var candidates []candidate
		for _, bid := range t.Bids {
			if bid.Status != models.BidActive {
				continue
			}
			if lv, ok := bid.LotValue(lot.Id); ok {
				candidates = append(candidates, candidate{bid.Id, lv.Value, lv.Date, bid.Tenderers})
			}
		}
		if len(candidates) == 0 {
			lot.Status = models.LotUnsuccessful
			continue
		}

		best, ok := cheapest(candidates, unsuccessfulBids(awards))
		if !ok {
			continue
		}
		t.Awards = append(t.Awards, newAward(best, lot.Id, now))
		pending = true
	}
	settleAwardPeriod(t, pending, now)
}

func nextTenderAward(t *models.Tender, now time.Time) {
	n := len(t.Awards)
	if n == 0 || (t.Awards[n-1].Status != models.AwardPending && t.Awards[n-1].Status != models.AwardActive) {
		var candidates []candidate
		for _, bid := range t.Bids {
			if bid.Status != models.BidActive || bid.Value == nil {
				continue
			}
			candidates = append(candidates, candidate{bid.Id, *bid.Value, bid.Date, bid.Tenderers})
		}
		if best, ok := cheapest(candidates, unsuccessfulBids(t.Awards)); ok {
			t.Awards = append(t.Awards, newAward(best, "", now))
		}
	}

	if len(t.Awards) == 0 {
		t.Status = models.TenderUnsuccessful
		return
	}
	settleAwardPeriod(t, t.Awards[len(t.Awards)-1].Status == models.AwardPending, now)
}

func settleAwardPeriod(t *models.Tender, pending bool, now time.Time) {
	if pending {
		t.AwardPeriod.EndDate = nil
		t.Status = models.TenderQualification
		return
	}
	end := now
	t.AwardPeriod.EndDate = &end
	t.Status = models.TenderAwarded
}

// cheapest orders candidates by amount, then by bid date, skipping bids
// that were already awarded unsuccessfully.
func cheapest(candidates []candidate, skip map[string]bool) (candidate, bool) {
	var left []candidate
	for _, c := range candidates {
		if !skip[c.bidId] {
			left = append(left, c)
		}
	}
	if len(left) == 0 {
		return candidate{}, false
	}
	sort.SliceStable(left, func(i, j int) bool {
		if cmp := left[i].value.Amount.Cmp(left[j].value.Amount); cmp != 0 {
			return cmp < 0
		}
		return left[i].date.Before(left[j].date)
	})
	return left[0], true
}

func unsuccessfulBids(awards []models.Award) map[string]bool {
	skip := make(map[string]bool)
	for _, award := range awards {
		if award.Status == models.AwardUnsuccessful {
			skip[award.BidId] = true
		}
	}
	return skip
}

func newAward(c candidate, lotId string, now time.Time) models.Award {
	start := now
	return models.Award{
		Id:              uuid.NewString(),
		BidId:           c.bidId,
		LotId:           lotId,
		Status:          models.AwardPending,
		Value:           c.value,
		Suppliers:       append([]models.Organization(nil), c.suppliers...),
		Date:            now,
		ComplaintPeriod: &models.Period{StartDate: &start},
	}
}
