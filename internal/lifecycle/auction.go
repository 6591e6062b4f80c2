package lifecycle

import (
	"time"

	"procurement/internal/models"
)

type LotValueResult struct {
	RelatedLot       string        `json:"relatedLot"`
	Value            *models.Value `json:"value,omitempty"`
	ParticipationUrl string        `json:"participationUrl,omitempty"`
}

type BidResult struct {
	Id               string           `json:"id"`
	Value            *models.Value    `json:"value,omitempty"`
	LotValues        []LotValueResult `json:"lotValues,omitempty"`
	ParticipationUrl string           `json:"participationUrl,omitempty"`
}

type LotResult struct {
	Id         string `json:"id"`
	AuctionUrl string `json:"auctionUrl,omitempty"`
}

// AuctionData is what the auction module reports back: bid values after the
// auction and the urls participants use to join it.
type AuctionData struct {
	AuctionUrl string      `json:"auctionUrl,omitempty"`
	Bids       []BidResult `json:"bids,omitempty"`
	Lots       []LotResult `json:"lots,omitempty"`
}

// ValidateAuctionData checks that data describes exactly the bids and lots
// of the tender. lotId is empty for tender wide requests.
func ValidateAuctionData(t models.Tender, lotId string, data AuctionData, report bool) error {
	if lotId != "" {
		lot, ok := t.Lot(lotId)
		if !ok {
			return models.NotFound("auction_lot_id", models.ErrNoLot)
		}
		if lot.Status != models.LotActive {
			if report {
				return models.Forbidden("Can report auction results only in active lot status")
			}
			return models.Forbidden("Can update auction urls only in active lot status")
		}
	}

	if report || len(data.Bids) > 0 {
		if len(data.Bids) != len(t.Bids) {
			return models.Unprocessable("bids", "Number of auction results did not match the number of tender bids")
		}
		seen := make(map[string]bool, len(data.Bids))
		for _, bid := range data.Bids {
			if _, ok := t.Bid(bid.Id); !ok || seen[bid.Id] {
				return models.Unprocessable("bids", "Auction bids should be identical to the tender bids")
			}
			seen[bid.Id] = true
		}
	}

	if len(data.Lots) > 0 {
		if len(data.Lots) != len(t.Lots) {
			return models.Unprocessable("lots", "Number of lots did not match the number of tender lots")
		}
		seen := make(map[string]bool, len(data.Lots))
		for _, lot := range data.Lots {
			if _, ok := t.Lot(lot.Id); !ok || seen[lot.Id] {
				return models.Unprocessable("lots", "Auction lots should be identical to the tender lots")
			}
			seen[lot.Id] = true
		}
	}

	if len(t.Lots) == 0 {
		return nil
	}
	for _, reported := range data.Bids {
		bid, _ := t.Bid(reported.Id)
		if bid.Status != models.BidActive || (len(reported.LotValues) == 0 && !report) {
			continue
		}
		if len(reported.LotValues) != len(bid.LotValues) {
			return models.Unprocessable("bids", "Number of lots of auction results did not match the number of tender lots")
		}
		for i, lv := range bid.LotValues {
			if reported.LotValues[i].RelatedLot != lv.RelatedLot {
				return models.Unprocessable("bids", "Auction bid.lotValue should be identical to the tender bid.lotValue")
			}
		}
	}
	return nil
}

// ApplyAuctionResults returns a copy of t carrying the reported bid values
// and the closed auction period of the tender (no lots) or of the lot.
func ApplyAuctionResults(t models.Tender, lotId string, data AuctionData, now time.Time) models.Tender {
	next := t.Clone()

	for _, reported := range data.Bids {
		bid, ok := next.Bid(reported.Id)
		if !ok {
			continue
		}
		if len(next.Lots) == 0 {
			if reported.Value != nil {
				bid.Value = mergeValue(bid.Value, *reported.Value)
			}
			continue
		}
		for _, rlv := range reported.LotValues {
			if rlv.Value == nil || (lotId != "" && rlv.RelatedLot != lotId) {
				continue
			}
			if lv, ok := bid.LotValue(rlv.RelatedLot); ok {
				lv.Value = *mergeValue(&lv.Value, *rlv.Value)
			}
		}
	}

	closed := now
	switch {
	case len(next.Lots) == 0:
		if next.AuctionPeriod == nil {
			next.AuctionPeriod = &models.Period{}
		}
		next.AuctionPeriod.EndDate = &closed
	case lotId != "":
		lot, _ := next.Lot(lotId)
		if lot.AuctionPeriod == nil {
			lot.AuctionPeriod = &models.Period{}
		}
		lot.AuctionPeriod.EndDate = &closed
	}

	next.RefreshNumberOfBids()
	return next
}

// ApplyAuctionUrls returns a copy of t with the auction and participation
// urls set. For a lot request only the lot and the lot values bound to it
// change.
func ApplyAuctionUrls(t models.Tender, lotId string, data AuctionData) models.Tender {
	next := t.Clone()

	if lotId == "" && data.AuctionUrl != "" {
		next.AuctionUrl = data.AuctionUrl
	}
	for _, rl := range data.Lots {
		if rl.AuctionUrl == "" || (lotId != "" && rl.Id != lotId) {
			continue
		}
		if lot, ok := next.Lot(rl.Id); ok {
			lot.AuctionUrl = rl.AuctionUrl
		}
	}
	for _, reported := range data.Bids {
		bid, ok := next.Bid(reported.Id)
		if !ok {
			continue
		}
		if lotId == "" && reported.ParticipationUrl != "" {
			bid.ParticipationUrl = reported.ParticipationUrl
		}
		for _, rlv := range reported.LotValues {
			if rlv.ParticipationUrl == "" || (lotId != "" && rlv.RelatedLot != lotId) {
				continue
			}
			if lv, ok := bid.LotValue(rlv.RelatedLot); ok {
				lv.ParticipationUrl = rlv.ParticipationUrl
			}
		}
	}
	return next
}

// AuctionsClosed reports whether every lot with competing bids has finished
// its auction. Tenders without such lots pass.
func AuctionsClosed(t models.Tender) bool {
	for _, lot := range t.Lots {
		if lot.NumberOfBids > 1 && !lot.AuctionPeriod.Ended() {
			return false
		}
	}
	return true
}

func mergeValue(current *models.Value, reported models.Value) *models.Value {
	v := models.Value{}
	if current != nil {
		v = *current
	}
	v.Amount = reported.Amount
	if reported.Currency != "" {
		v.Currency = reported.Currency
	}
	return &v
}
