package models

import "time"

type TenderStatus string

const (
	TenderEnquiries     TenderStatus = "active.enquiries"
	TenderTendering     TenderStatus = "active.tendering"
	TenderAuction       TenderStatus = "active.auction"
	TenderQualification TenderStatus = "active.qualification"
	TenderAwarded       TenderStatus = "active.awarded"
	TenderComplete      TenderStatus = "complete"
	TenderCancelled     TenderStatus = "cancelled"
	TenderUnsuccessful  TenderStatus = "unsuccessful"
)

func ValidTenderStatus(t TenderStatus) bool {
	switch t {
	case TenderEnquiries, TenderTendering, TenderAuction, TenderQualification,
		TenderAwarded, TenderComplete, TenderCancelled, TenderUnsuccessful:
		return true
	default:
		return false
	}
}

type Tender struct {
	Id              string       `json:"id"`
	Revision        int          `json:"-"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	ProcuringEntity Organization `json:"procuringEntity"`
	Value           Value        `json:"value"`
	MinimalStep     Value        `json:"minimalStep"`
	EnquiryPeriod   *Period      `json:"enquiryPeriod,omitempty"`
	TenderPeriod    *Period      `json:"tenderPeriod,omitempty"`
	AuctionPeriod   *Period      `json:"auctionPeriod,omitempty"`
	AwardPeriod     *Period      `json:"awardPeriod,omitempty"`
	AuctionUrl      string       `json:"auctionUrl,omitempty"`
	Status          TenderStatus `json:"status"`
	Lots            []Lot        `json:"lots,omitempty"`
	Bids            []Bid        `json:"bids,omitempty"`
	Awards          []Award      `json:"awards,omitempty"`
	Contracts       []Contract   `json:"contracts,omitempty"`
	Complaints      []Complaint  `json:"complaints,omitempty"`
	DateModified    time.Time    `json:"dateModified"`
	CreatedAt       time.Time    `json:"date"`
}

// Clone returns a deep copy, so the copy can be transformed without
// touching the snapshot it was taken from.
func (t Tender) Clone() Tender {
	c := t
	c.EnquiryPeriod = t.EnquiryPeriod.clone()
	c.TenderPeriod = t.TenderPeriod.clone()
	c.AuctionPeriod = t.AuctionPeriod.clone()
	c.AwardPeriod = t.AwardPeriod.clone()

	c.Lots = nil
	for _, lot := range t.Lots {
		c.Lots = append(c.Lots, lot.clone())
	}
	c.Bids = nil
	for _, bid := range t.Bids {
		c.Bids = append(c.Bids, bid.clone())
	}
	c.Awards = nil
	for _, award := range t.Awards {
		c.Awards = append(c.Awards, award.clone())
	}
	c.Contracts = append([]Contract(nil), t.Contracts...)
	c.Complaints = append([]Complaint(nil), t.Complaints...)
	for i := range c.Complaints {
		c.Complaints[i].DateAnswered = cloneTime(c.Complaints[i].DateAnswered)
	}
	return c
}

func (t *Tender) Lot(lotId string) (*Lot, bool) {
	for i := range t.Lots {
		if t.Lots[i].Id == lotId {
			return &t.Lots[i], true
		}
	}
	return nil, false
}

func (t *Tender) Complaint(complaintId string) (*Complaint, bool) {
	for i := range t.Complaints {
		if t.Complaints[i].Id == complaintId {
			return &t.Complaints[i], true
		}
	}
	return nil, false
}

func (t *Tender) Bid(bidId string) (*Bid, bool) {
	for i := range t.Bids {
		if t.Bids[i].Id == bidId {
			return &t.Bids[i], true
		}
	}
	return nil, false
}

// LotBidCount counts active bids holding a value for the lot.
func (t *Tender) LotBidCount(lotId string) int {
	count := 0
	for _, bid := range t.Bids {
		if bid.Status != BidActive {
			continue
		}
		if _, ok := bid.LotValue(lotId); ok {
			count++
		}
	}
	return count
}

// RefreshNumberOfBids recomputes Lot.NumberOfBids from the bids.
func (t *Tender) RefreshNumberOfBids() {
	for i := range t.Lots {
		t.Lots[i].NumberOfBids = t.LotBidCount(t.Lots[i].Id)
	}
}

func (t *Tender) LotAwards(lotId string) []Award {
	var awards []Award
	for _, award := range t.Awards {
		if award.LotId == lotId {
			awards = append(awards, award)
		}
	}
	return awards
}

func (t *Tender) Touch(now time.Time) {
	t.DateModified = now
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
