package lifecycle

import (
	"errors"
	"testing"
	"time"

	"procurement/internal/fixture"
	"procurement/internal/models"
)

func valuePtr(amount int64) *models.Value {
	v := fixture.Value(amount)
	return &v
}

func auctionResults(t models.Tender, amounts ...int64) AuctionData {
	var data AuctionData
	for i, bid := range t.Bids {
		result := BidResult{Id: bid.Id}
		if len(t.Lots) == 0 {
			result.Value = valuePtr(amounts[i])
		}
		for _, lv := range bid.LotValues {
			result.LotValues = append(result.LotValues, LotValueResult{RelatedLot: lv.RelatedLot, Value: valuePtr(amounts[i])})
		}
		data.Bids = append(data.Bids, result)
	}
	return data
}

func TestValidateAuctionData(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 0)
	fixture.AddBid(&tender, 900, now)
	fixture.AddBid(&tender, 800, now)

	tester := func(data AuctionData, report bool, expected error, name string) {
		err := ValidateAuctionData(tender, "", data, report)
		if expected == nil && err != nil {
			t.Errorf("%s: expected no error, got %s", name, err)
		}
		if expected != nil && !errors.Is(err, expected) {
			t.Errorf("%s: expected %q, got %v", name, expected, err)
		}
	}

	tester(auctionResults(tender, 700, 600), true, nil, "matching results")
	tester(AuctionData{}, false, nil, "empty patch")
	tester(AuctionData{}, true, models.ErrUnprocessable, "report without bids")

	short := auctionResults(tender, 700, 600)
	short.Bids = short.Bids[:1]
	tester(short, true, models.ErrUnprocessable, "bid count mismatch")

	foreign := auctionResults(tender, 700, 600)
	foreign.Bids[0].Id = "00000000-0000-0000-0000-000000000000"
	tester(foreign, true, models.ErrUnprocessable, "unknown bid id")

	duplicate := auctionResults(tender, 700, 600)
	duplicate.Bids[1].Id = duplicate.Bids[0].Id
	tester(duplicate, true, models.ErrUnprocessable, "duplicate bid id")

	lots := AuctionData{Lots: []LotResult{{Id: "lot"}}}
	tester(lots, false, models.ErrUnprocessable, "lots on a tender without lots")
}

func TestValidateAuctionDataLots(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 2)
	fixture.AddBid(&tender, 900, now)
	fixture.AddBid(&tender, 800, now)

	err := ValidateAuctionData(tender, tender.Lots[0].Id, auctionResults(tender, 700, 600), true)
	if err != nil {
		t.Fatalf("Expected matching lot results to pass, got %s", err)
	}

	err = ValidateAuctionData(tender, "missing", auctionResults(tender, 700, 600), true)
	if !errors.Is(err, models.ErrNoLot) {
		t.Errorf("Expected %q for unknown lot, got %v", models.ErrNoLot, err)
	}

	swapped := auctionResults(tender, 700, 600)
	lvs := swapped.Bids[0].LotValues
	lvs[0].RelatedLot, lvs[1].RelatedLot = lvs[1].RelatedLot, lvs[0].RelatedLot
	err = ValidateAuctionData(tender, "", swapped, true)
	if !errors.Is(err, models.ErrUnprocessable) {
		t.Errorf("Expected lot value relation mismatch to be unprocessable, got %v", err)
	}

	missing := auctionResults(tender, 700, 600)
	missing.Bids[1].LotValues = missing.Bids[1].LotValues[:1]
	err = ValidateAuctionData(tender, "", missing, true)
	if !errors.Is(err, models.ErrUnprocessable) {
		t.Errorf("Expected lot value count mismatch to be unprocessable, got %v", err)
	}

	lots := AuctionData{Lots: []LotResult{{Id: tender.Lots[0].Id}}}
	err = ValidateAuctionData(tender, "", lots, false)
	if !errors.Is(err, models.ErrUnprocessable) {
		t.Errorf("Expected lot count mismatch to be unprocessable, got %v", err)
	}

	tender.Lots[1].Status = models.LotCancelled
	err = ValidateAuctionData(tender, tender.Lots[1].Id, auctionResults(tender, 700, 600), true)
	var reqErr *models.RequestError
	if !errors.As(err, &reqErr) || reqErr.Description != "Can report auction results only in active lot status" {
		t.Errorf("Expected inactive lot report to be forbidden, got %v", err)
	}
	err = ValidateAuctionData(tender, tender.Lots[1].Id, AuctionData{}, false)
	if !errors.As(err, &reqErr) || reqErr.Description != "Can update auction urls only in active lot status" {
		t.Errorf("Expected inactive lot patch to be forbidden, got %v", err)
	}
}

func TestApplyAuctionResults(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 0)
	first := fixture.AddBid(&tender, 900, now)
	second := fixture.AddBid(&tender, 800, now)

	next := ApplyAuctionResults(tender, "", auctionResults(tender, 700, 750), now)

	expected := map[string]int64{first: 700, second: 750}
	for id, amount := range expected {
		bid, _ := next.Bid(id)
		if !bid.Value.Amount.Equal(fixture.Value(amount).Amount) {
			t.Errorf("Bid %s: expected amount %d, got %s", id, amount, bid.Value.Amount)
		}
		if bid.Value.Currency != fixture.Currency {
			t.Errorf("Bid %s: currency lost, got %q", id, bid.Value.Currency)
		}
	}
	if !next.AuctionPeriod.Ended() || !next.AuctionPeriod.EndDate.Equal(now) {
		t.Errorf("Expected tender auction period to end at %s, got %+v", now, next.AuctionPeriod)
	}

	bid, _ := tender.Bid(first)
	if !bid.Value.Amount.Equal(fixture.Value(900).Amount) || tender.AuctionPeriod != nil {
		t.Error("ApplyAuctionResults changed the source tender")
	}
}

func TestApplyAuctionResultsLot(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 2)
	first := fixture.AddBid(&tender, 900, now)
	fixture.AddBid(&tender, 800, now)
	lotId := tender.Lots[0].Id

	next := ApplyAuctionResults(tender, lotId, auctionResults(tender, 700, 600), now)

	bid, _ := next.Bid(first)
	for _, lv := range bid.LotValues {
		expected := fixture.Value(900).Amount
		if lv.RelatedLot == lotId {
			expected = fixture.Value(700).Amount
		}
		if !lv.Value.Amount.Equal(expected) {
			t.Errorf("Lot value for %s: expected %s, got %s", lv.RelatedLot, expected, lv.Value.Amount)
		}
	}

	if !next.Lots[0].AuctionPeriod.Ended() {
		t.Error("Addressed lot auction should be closed")
	}
	if next.Lots[1].AuctionPeriod.Ended() {
		t.Error("Other lot auction should stay open")
	}
	if next.AuctionPeriod.Ended() {
		t.Error("Lot tender auction period should not be closed")
	}
	if next.Lots[0].NumberOfBids != 2 {
		t.Errorf("Expected 2 bids on the lot, got %d", next.Lots[0].NumberOfBids)
	}
}

func TestApplyAuctionUrls(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 2)
	bidId := fixture.AddBid(&tender, 900, now)

	data := AuctionData{
		AuctionUrl: "http://auction/tender",
		Lots: []LotResult{
			{Id: tender.Lots[0].Id, AuctionUrl: "http://auction/lot0"},
			{Id: tender.Lots[1].Id, AuctionUrl: "http://auction/lot1"},
		},
		Bids: []BidResult{{
			Id:               bidId,
			ParticipationUrl: "http://auction/bid",
			LotValues: []LotValueResult{
				{RelatedLot: tender.Lots[0].Id, ParticipationUrl: "http://auction/lot0/bid"},
				{RelatedLot: tender.Lots[1].Id, ParticipationUrl: "http://auction/lot1/bid"},
			},
		}},
	}

	// lot request only touches its lot
	next := ApplyAuctionUrls(tender, tender.Lots[0].Id, data)
	if next.AuctionUrl != "" {
		t.Errorf("Lot request should not set tender auctionUrl, got %q", next.AuctionUrl)
	}
	if next.Lots[0].AuctionUrl != "http://auction/lot0" || next.Lots[1].AuctionUrl != "" {
		t.Errorf("Unexpected lot urls: %q, %q", next.Lots[0].AuctionUrl, next.Lots[1].AuctionUrl)
	}
	bid, _ := next.Bid(bidId)
	if bid.ParticipationUrl != "" {
		t.Errorf("Lot request should not set bid participationUrl, got %q", bid.ParticipationUrl)
	}
	if bid.LotValues[0].ParticipationUrl != "http://auction/lot0/bid" || bid.LotValues[1].ParticipationUrl != "" {
		t.Errorf("Unexpected lot value urls: %+v", bid.LotValues)
	}

	// tender request sets everything
	next = ApplyAuctionUrls(tender, "", data)
	bid, _ = next.Bid(bidId)
	if next.AuctionUrl != "http://auction/tender" || next.Lots[1].AuctionUrl != "http://auction/lot1" ||
		bid.ParticipationUrl != "http://auction/bid" || bid.LotValues[1].ParticipationUrl != "http://auction/lot1/bid" {
		t.Errorf("Tender request should set all urls, got %+v", next)
	}
}

func TestAuctionsClosed(t *testing.T) {
	now := time.Now().UTC()
	tender := fixture.Tender(models.TenderAuction, 2)
	fixture.AddBid(&tender, 900, now)
	fixture.AddBid(&tender, 800, now)

	if AuctionsClosed(tender) {
		t.Error("Competitive lots without closed auctions should keep the gate shut")
	}

	tender = ApplyAuctionResults(tender, tender.Lots[0].Id, auctionResults(tender, 1, 2), now)
	if AuctionsClosed(tender) {
		t.Error("One open competitive lot should keep the gate shut")
	}

	tender = ApplyAuctionResults(tender, tender.Lots[1].Id, auctionResults(tender, 1, 2), now)
	if !AuctionsClosed(tender) {
		t.Error("All competitive lots closed should open the gate")
	}

	single := fixture.Tender(models.TenderAuction, 1)
	fixture.AddBid(&single, 900, now)
	if !AuctionsClosed(single) {
		t.Error("Tender without competitive lots should pass the gate")
	}
}
