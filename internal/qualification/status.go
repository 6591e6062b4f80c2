package qualification

import (
	"time"

	"procurement/internal/models"
)

// CheckStatus returns a copy of t with lot and tender statuses settled from
// the current awards, contracts and complaints.
func CheckStatus(t models.Tender, now time.Time) models.Tender {
	next := t.Clone()
	if len(next.Lots) > 0 {
		checkLots(&next, now)
	} else {
		checkTender(&next, now)
	}
	return next
}

func checkLots(t *models.Tender, now time.Time) {
	blocked := make(map[string]bool)
	for _, c := range t.Complaints {
		if c.Status != models.ComplaintPending {
			continue
		}
		if c.RelatedLot == "" {
			return
		}
		blocked[c.RelatedLot] = true
	}

	for i := range t.Lots {
		lot := &t.Lots[i]
		if lot.Status != models.LotActive || blocked[lot.Id] {
			continue
		}
		awards := t.LotAwards(lot.Id)
		if len(awards) == 0 || !standStillOver(awards, now) {
			continue
		}

		last := awards[len(awards)-1]
		switch {
		case last.Status == models.AwardUnsuccessful:
			lot.Status = models.LotUnsuccessful
		case last.Status == models.AwardActive && hasActiveContract(t, last.Id):
			lot.Status = models.LotComplete
		}
	}

	statuses := make(map[models.LotStatus]bool)
	for _, lot := range t.Lots {
		statuses[lot.Status] = true
	}
	switch {
	case only(statuses, models.LotCancelled):
		t.Status = models.TenderCancelled
	case only(statuses, models.LotUnsuccessful, models.LotCancelled):
		t.Status = models.TenderUnsuccessful
	case only(statuses, models.LotComplete, models.LotUnsuccessful, models.LotCancelled):
		t.Status = models.TenderComplete
	}
}

func checkTender(t *models.Tender, now time.Time) {
	pendingComplaints := false
	for _, c := range t.Complaints {
		if c.Status == models.ComplaintPending {
			pendingComplaints = true
		}
	}
	activeAwards := false
	for _, a := range t.Awards {
		if a.Status == models.AwardActive {
			activeAwards = true
		}
	}

	if !activeAwards && !pendingComplaints && standStillExpired(t.Awards, now) {
		t.Status = models.TenderUnsuccessful
	}
	if n := len(t.Contracts); n > 0 && t.Contracts[n-1].Status == models.ContractActive {
		t.Status = models.TenderComplete
	}
}

// standStillOver reports whether every award complaint period has ended by
// now. Awards without a closing date do not hold the tender.
func standStillOver(awards []models.Award, now time.Time) bool {
	for _, a := range awards {
		if a.ComplaintPeriod.Ended() && a.ComplaintPeriod.EndDate.After(now) {
			return false
		}
	}
	return true
}

// standStillExpired needs at least one closed complaint period, the latest
// of them strictly before now.
func standStillExpired(awards []models.Award, now time.Time) bool {
	var latest *time.Time
	for _, a := range awards {
		if a.ComplaintPeriod.Ended() && (latest == nil || a.ComplaintPeriod.EndDate.After(*latest)) {
			latest = a.ComplaintPeriod.EndDate
		}
	}
	return latest != nil && latest.Before(now)
}

func hasActiveContract(t *models.Tender, awardId string) bool {
	for _, c := range t.Contracts {
		if c.AwardId == awardId && c.Status == models.ContractActive {
			return true
		}
	}
	return false
}

// only reports whether the set is non-empty and holds nothing but allowed.
func only(set map[models.LotStatus]bool, allowed ...models.LotStatus) bool {
	if len(set) == 0 {
		return false
	}
	ok := make(map[models.LotStatus]bool, len(allowed))
	for _, s := range allowed {
		ok[s] = true
	}
	for s := range set {
		if !ok[s] {
			return false
		}
	}
	return true
}
