// Package fixture builds tenders with random but valid content for tests.
package fixture

import (
	"time"

	"procurement/internal/models"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const Currency = "UAH"

func Organization() models.Organization {
	return models.Organization{
		Name: gofakeit.Company(),
		Identifier: models.Identifier{
			Scheme: models.SchemeEDRPOU,
			Id:     gofakeit.Numerify("########"),
		},
		ContactPoint: models.ContactPoint{
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
		},
	}
}

func Value(amount int64) models.Value {
	return models.Value{
		Amount:                decimal.NewFromInt(amount),
		Currency:              Currency,
		ValueAddedTaxIncluded: true,
	}
}

// Tender returns a stored looking tender in status with lots active lots.
func Tender(status models.TenderStatus, lots int) models.Tender {
	now := time.Now().UTC().Truncate(time.Second)
	t := models.Tender{
		Id:              uuid.NewString(),
		Title:           gofakeit.BuzzWord(),
		Description:     gofakeit.Blurb(),
		ProcuringEntity: Organization(),
		Value:           Value(100000),
		MinimalStep:     Value(1000),
		Status:          status,
		DateModified:    now,
		CreatedAt:       now,
	}
	for i := 0; i < lots; i++ {
		t.Lots = append(t.Lots, models.Lot{
			Id:          uuid.NewString(),
			Title:       gofakeit.BS(),
			Value:       Value(50000),
			MinimalStep: Value(500),
			Status:      models.LotActive,
		})
	}
	return t
}

// AddBid appends an active bid with amount for the tender, or for every
// active lot of a lot tender, and returns its id.
func AddBid(t *models.Tender, amount int64, date time.Time) string {
	bid := models.Bid{
		Id:        uuid.NewString(),
		Tenderers: []models.Organization{Organization()},
		Status:    models.BidActive,
		Date:      date,
	}
	if len(t.Lots) == 0 {
		v := Value(amount)
		bid.Value = &v
	}
	for _, lot := range t.Lots {
		if lot.Status != models.LotActive {
			continue
		}
		bid.LotValues = append(bid.LotValues, models.LotValue{
			RelatedLot: lot.Id,
			Value:      Value(amount),
			Date:       date,
		})
	}
	t.Bids = append(t.Bids, bid)
	t.RefreshNumberOfBids()
	return bid.Id
}

// AddComplaint appends a complaint in status and returns its id.
func AddComplaint(t *models.Tender, status models.ComplaintStatus, relatedLot string) string {
	complaint := models.Complaint{
		Id:          uuid.NewString(),
		Title:       gofakeit.BuzzWord(),
		Description: gofakeit.Blurb(),
		Author:      Organization(),
		RelatedLot:  relatedLot,
		Status:      status,
		Date:        time.Now().UTC(),
	}
	t.Complaints = append(t.Complaints, complaint)
	return complaint.Id
}

// AddAward appends an award for the bid, with a complaint period ending at
// end when end is not zero.
func AddAward(t *models.Tender, bidId, lotId string, status models.AwardStatus, end time.Time) string {
	award := models.Award{
		Id:              uuid.NewString(),
		BidId:           bidId,
		LotId:           lotId,
		Status:          status,
		Value:           Value(1),
		Date:            time.Now().UTC(),
		ComplaintPeriod: &models.Period{},
	}
	if !end.IsZero() {
		award.ComplaintPeriod.EndDate = &end
	}
	t.Awards = append(t.Awards, award)
	return award.Id
}

func AddContract(t *models.Tender, awardId string, status models.ContractStatus) {
	t.Contracts = append(t.Contracts, models.Contract{
		Id:      uuid.NewString(),
		AwardId: awardId,
		Status:  status,
	})
}
