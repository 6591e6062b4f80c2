package controller

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"procurement/internal/lifecycle"
	"procurement/internal/models"
)

// Request bodies travel in the same {"data": ...} envelope as responses.
func decodeData(data []byte, dst any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return &models.RequestError{Location: "body", Name: "data", Description: "could not parse json: " + err.Error(), Err: models.ErrBadRequest}
	}

	raw := bytes.TrimSpace(envelope.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Unprocessable("data", "Data not available")
	}

	err = json.Unmarshal(raw, dst)
	if err != nil {
		return &models.RequestError{Location: "body", Name: "data", Description: "could not parse json: " + err.Error(), Err: models.ErrBadRequest}
	}
	return nil
}

// New tender request

type NewLotReq struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Value       models.Value `json:"value"`
	MinimalStep models.Value `json:"minimalStep"`
}

type NewTenderReq struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	ProcuringEntity models.Organization `json:"procuringEntity"`
	Value           models.Value        `json:"value"`
	MinimalStep     models.Value        `json:"minimalStep"`
	EnquiryPeriod   *models.Period      `json:"enquiryPeriod"`
	TenderPeriod    *models.Period      `json:"tenderPeriod"`
	Status          models.TenderStatus `json:"status"`
	Lots            []NewLotReq         `json:"lots"`
}

func ParseNewTenderReq(data []byte) (*NewTenderReq, error) {
	t := &NewTenderReq{}

	err := decodeData(data, t)
	if err != nil {
		return nil, err
	}

	if err = checkRequired(t.Title, "title"); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Title, "title", 500); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Description, "description", 2000); err != nil {
		return nil, err
	}
	if err = checkOrganization(t.ProcuringEntity, "procuringEntity"); err != nil {
		return nil, err
	}
	if err = checkValue(t.Value, "value"); err != nil {
		return nil, err
	}
	if err = checkMinimalStep(t.MinimalStep, t.Value, "tender"); err != nil {
		return nil, err
	}
	if len(t.Status) > 0 && !models.ValidTenderStatus(t.Status) {
		return nil, models.Unprocessable("status", "invalid tender status supplied: %s", t.Status)
	}

	for _, lot := range t.Lots {
		if err = checkRequired(lot.Title, "lots"); err != nil {
			return nil, err
		}
		if err = checkLengthLimit(lot.Title, "lots", 500); err != nil {
			return nil, err
		}
		if err = checkValue(lot.Value, "lots"); err != nil {
			return nil, err
		}
		if lot.Value.Currency != t.Value.Currency {
			return nil, models.Unprocessable("lots", "currency should be identical to currency of value of tender")
		}
		if err = checkMinimalStep(lot.MinimalStep, lot.Value, "lot"); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (req *NewTenderReq) Tender() models.Tender {
	t := models.Tender{
		Title:           req.Title,
		Description:     req.Description,
		ProcuringEntity: req.ProcuringEntity,
		Value:           req.Value,
		MinimalStep:     req.MinimalStep,
		EnquiryPeriod:   req.EnquiryPeriod,
		TenderPeriod:    req.TenderPeriod,
		Status:          req.Status,
	}
	for _, lot := range req.Lots {
		t.Lots = append(t.Lots, models.Lot{
			Title:       lot.Title,
			Description: lot.Description,
			Value:       lot.Value,
			MinimalStep: lot.MinimalStep,
		})
	}
	return t
}

// New bid request

type NewLotValueReq struct {
	RelatedLot string       `json:"relatedLot"`
	Value      models.Value `json:"value"`
}

type NewBidReq struct {
	Tenderers []models.Organization `json:"tenderers"`
	Status    models.BidStatus      `json:"status"`
	Value     *models.Value         `json:"value"`
	LotValues []NewLotValueReq      `json:"lotValues"`
}

func ParseNewBidReq(data []byte) (*NewBidReq, error) {
	b := &NewBidReq{}

	err := decodeData(data, b)
	if err != nil {
		return nil, err
	}

	if len(b.Tenderers) == 0 {
		return nil, models.Unprocessable("tenderers", "Please provide at least 1 item.")
	}
	for _, org := range b.Tenderers {
		if err = checkOrganization(org, "tenderers"); err != nil {
			return nil, err
		}
	}
	if len(b.Status) > 0 && !models.ValidBidStatus(b.Status) {
		return nil, models.Unprocessable("status", "Value must be one of [%s %s]", models.BidActive, models.BidInvalid)
	}
	if b.Value != nil {
		if err = checkValue(*b.Value, "value"); err != nil {
			return nil, err
		}
	}
	for _, lv := range b.LotValues {
		if err = checkRequired(lv.RelatedLot, "lotValues"); err != nil {
			return nil, err
		}
		if err = checkValue(lv.Value, "lotValues"); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (req *NewBidReq) Bid() models.Bid {
	b := models.Bid{
		Tenderers: req.Tenderers,
		Status:    req.Status,
		Value:     req.Value,
	}
	for _, lv := range req.LotValues {
		b.LotValues = append(b.LotValues, models.LotValue{RelatedLot: lv.RelatedLot, Value: lv.Value})
	}
	return b
}

// Auction request

func ParseAuctionReq(data []byte) (lifecycle.AuctionData, error) {
	var a lifecycle.AuctionData

	err := decodeData(data, &a)
	if err != nil {
		return a, err
	}

	for _, bid := range a.Bids {
		if err = checkRequired(bid.Id, "bids"); err != nil {
			return a, err
		}
		if bid.Value != nil {
			if err = checkValue(*bid.Value, "bids"); err != nil {
				return a, err
			}
		}
		for _, lv := range bid.LotValues {
			if lv.Value == nil {
				continue
			}
			if err = checkValue(*lv.Value, "bids"); err != nil {
				return a, err
			}
		}
	}
	for _, lot := range a.Lots {
		if err = checkRequired(lot.Id, "lots"); err != nil {
			return a, err
		}
	}

	return a, nil
}

// Complaint requests

type NewComplaintReq struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Author      models.Organization `json:"author"`
	RelatedLot  string              `json:"relatedLot"`
}

func ParseNewComplaintReq(data []byte) (*NewComplaintReq, error) {
	c := &NewComplaintReq{}

	err := decodeData(data, c)
	if err != nil {
		return nil, err
	}

	if err = checkRequired(c.Title, "title"); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(c.Title, "title", 500); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(c.Description, "description", 2000); err != nil {
		return nil, err
	}
	if err = checkOrganization(c.Author, "author"); err != nil {
		return nil, err
	}

	return c, nil
}

func (req *NewComplaintReq) Complaint() models.Complaint {
	return models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		RelatedLot:  req.RelatedLot,
	}
}

type ComplaintPatchReq struct {
	Status     *models.ComplaintStatus `json:"status"`
	Resolution *string                 `json:"resolution"`
}

func ParseComplaintPatchReq(data []byte) (lifecycle.ComplaintPatch, error) {
	c := &ComplaintPatchReq{}

	err := decodeData(data, c)
	if err != nil {
		return lifecycle.ComplaintPatch{}, err
	}

	if c.Resolution != nil {
		if err = checkLengthLimit(*c.Resolution, "resolution", 2000); err != nil {
			return lifecycle.ComplaintPatch{}, err
		}
	}

	return lifecycle.ComplaintPatch{Status: c.Status, Resolution: c.Resolution}, nil
}

// Service

func checkRequired(str, fieldName string) error {
	if len(str) == 0 {
		return models.Unprocessable(fieldName, "This field is required.")
	}
	return nil
}

func checkLengthLimit(str, fieldName string, limit int) error {
	if n := utf8.RuneCountInString(str); n > limit {
		return models.Unprocessable(fieldName, "field '%s' exceeds length limit: %d / %d", fieldName, n, limit)
	}
	return nil
}

func checkOrganization(org models.Organization, fieldName string) error {
	if len(org.Name) == 0 {
		return models.Unprocessable(fieldName, "organization name is required")
	}
	if !models.ValidOrganizationScheme(org.Identifier.Scheme) {
		return models.Unprocessable(fieldName, "invalid identifier scheme supplied: %s", org.Identifier.Scheme)
	}
	if len(org.Identifier.Id) == 0 {
		return models.Unprocessable(fieldName, "identifier id is required")
	}
	return nil
}

func checkValue(v models.Value, fieldName string) error {
	if v.Amount.IsNegative() {
		return models.Unprocessable(fieldName, "Float value should be greater than 0.")
	}
	if utf8.RuneCountInString(v.Currency) != 3 {
		return models.Unprocessable(fieldName, "currency should be a 3 letter code, got %q", v.Currency)
	}
	return nil
}

func checkMinimalStep(step, value models.Value, owner string) error {
	if err := checkValue(step, "minimalStep"); err != nil {
		return err
	}
	if step.Currency != value.Currency {
		return models.Unprocessable("minimalStep", "currency should be identical to currency of value of %s", owner)
	}
	if step.Amount.GreaterThan(value.Amount) {
		return models.Unprocessable("minimalStep", "value should be less than value of %s", owner)
	}
	return nil
}
