package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"procurement/internal/lifecycle"
	"procurement/internal/models"

	"go.uber.org/zap"
)

type Service interface {
	AddTender(ctx context.Context, tender models.Tender) (models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int, statuses []models.TenderStatus) ([]models.Tender, error)
	GetTender(ctx context.Context, tenderId string) (models.Tender, error)
	SetTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus) (models.Tender, error)
	TenderRevisions(ctx context.Context, tenderId string) ([]models.TenderRevision, error)

	AddBid(ctx context.Context, tenderId string, bid models.Bid) (models.Bid, error)

	GetAuction(ctx context.Context, tenderId, lotId string) (models.Tender, error)
	PatchAuction(ctx context.Context, tenderId, lotId string, data lifecycle.AuctionData) (models.Tender, error)
	ReportAuction(ctx context.Context, tenderId, lotId string, data lifecycle.AuctionData) (models.Tender, error)

	GetComplaints(ctx context.Context, tenderId string) ([]models.Complaint, error)
	GetComplaint(ctx context.Context, tenderId, complaintId string) (models.Complaint, error)
	AddComplaint(ctx context.Context, tenderId string, complaint models.Complaint) (models.Complaint, error)
	UpdateComplaint(ctx context.Context, tenderId, complaintId string, patch lifecycle.ComplaintPatch) (models.Complaint, error)
}

type Controller struct {
	service Service
	log     *zap.Logger
	timeout time.Duration
}

func NewController(service Service, log *zap.Logger, timeout time.Duration) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{service: service, log: log, timeout: timeout}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Tenders

// GET /api/tenders
func (c *Controller) GetTenders(w http.ResponseWriter, r *http.Request) {
	var statuses []models.TenderStatus

	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil || limit < 0 {
		c.errorResponse(w, http.StatusBadRequest, badRequest("querystring", "limit", "invalid value of 'limit' query parameter: "+query.Get("limit")))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil || offset < 0 {
		c.errorResponse(w, http.StatusBadRequest, badRequest("querystring", "offset", "invalid value of 'offset' query parameter: "+query.Get("offset")))
		return
	}

	for _, str := range query["status"] {
		s := models.TenderStatus(str)
		if !models.ValidTenderStatus(s) {
			c.errorResponse(w, http.StatusBadRequest, badRequest("querystring", "status", "invalid tender status supplied: "+str))
			return
		}
		statuses = append(statuses, s)
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tenders, err := c.service.GetTenders(ctx, limit, offset, statuses)
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	views := make([]models.Tender, 0, len(tenders))
	for _, t := range tenders {
		views = append(views, TenderView(t))
	}
	c.marshalResponse(w, http.StatusOK, views)
}

// POST /api/tenders
func (c *Controller) NewTender(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not read request body"))
		return
	}

	req, err := ParseNewTenderReq(data)
	if err != nil {
		c.requestErrorResponse(w, err)
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tender, err := c.service.AddTender(ctx, req.Tender())
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Location", c.location(r, "/api/tenders/"+tender.Id))
	c.marshalResponse(w, http.StatusCreated, TenderView(tender))
}

// GET /api/tenders/{tenderId}
func (c *Controller) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.requestContext(r)
	defer cancel()

	tender, err := c.service.GetTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, TenderView(tender))
}

// PUT /api/tenders/{tenderId}/status
func (c *Controller) SetTenderStatus(w http.ResponseWriter, r *http.Request) {
	status := models.TenderStatus(r.URL.Query().Get("status"))
	if !models.ValidTenderStatus(status) {
		c.errorResponse(w, http.StatusBadRequest, badRequest("querystring", "status", "empty or invalid status supplied"))
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tender, err := c.service.SetTenderStatus(ctx, r.PathValue("tenderId"), status)
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, TenderView(tender))
}

// GET /api/tenders/{tenderId}/revisions
func (c *Controller) TenderRevisions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.requestContext(r)
	defer cancel()

	revisions, err := c.service.TenderRevisions(ctx, r.PathValue("tenderId"))
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, revisions)
}

//// Bids

// POST /api/tenders/{tenderId}/bids
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not read request body"))
		return
	}

	req, err := ParseNewBidReq(data)
	if err != nil {
		c.requestErrorResponse(w, err)
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tenderId := r.PathValue("tenderId")
	bid, err := c.service.AddBid(ctx, tenderId, req.Bid())
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Location", c.location(r, "/api/tenders/"+tenderId+"/bids/"+bid.Id))
	c.marshalResponse(w, http.StatusCreated, bid)
}

//// Auction

// GET /api/tenders/{tenderId}/auction
// GET /api/tenders/{tenderId}/auction/{lotId}
func (c *Controller) GetAuction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.requestContext(r)
	defer cancel()

	tender, err := c.service.GetAuction(ctx, r.PathValue("tenderId"), r.PathValue("lotId"))
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, NewAuctionView(tender))
}

// PATCH /api/tenders/{tenderId}/auction
// PATCH /api/tenders/{tenderId}/auction/{lotId}
func (c *Controller) PatchAuction(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not read request body"))
		return
	}

	req, err := ParseAuctionReq(data)
	if err != nil {
		c.requestErrorResponse(w, err)
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tender, err := c.service.PatchAuction(ctx, r.PathValue("tenderId"), r.PathValue("lotId"), req)
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, NewAuctionView(tender))
}

// POST /api/tenders/{tenderId}/auction
// POST /api/tenders/{tenderId}/auction/{lotId}
func (c *Controller) ReportAuction(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not read request body"))
		return
	}

	req, err := ParseAuctionReq(data)
	if err != nil {
		c.requestErrorResponse(w, err)
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tender, err := c.service.ReportAuction(ctx, r.PathValue("tenderId"), r.PathValue("lotId"), req)
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, TenderView(tender))
}

//// Complaints

// GET /api/tenders/{tenderId}/complaints
func (c *Controller) GetComplaints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.requestContext(r)
	defer cancel()

	complaints, err := c.service.GetComplaints(ctx, r.PathValue("tenderId"))
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, complaints)
}

// POST /api/tenders/{tenderId}/complaints
func (c *Controller) NewComplaint(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not read request body"))
		return
	}

	req, err := ParseNewComplaintReq(data)
	if err != nil {
		c.requestErrorResponse(w, err)
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	tenderId := r.PathValue("tenderId")
	complaint, err := c.service.AddComplaint(ctx, tenderId, req.Complaint())
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Location", c.location(r, "/api/tenders/"+tenderId+"/complaints/"+complaint.Id))
	c.marshalResponse(w, http.StatusCreated, complaint)
}

// GET /api/tenders/{tenderId}/complaints/{complaintId}
func (c *Controller) GetComplaint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.requestContext(r)
	defer cancel()

	complaint, err := c.service.GetComplaint(ctx, r.PathValue("tenderId"), r.PathValue("complaintId"))
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, complaint)
}

// PATCH /api/tenders/{tenderId}/complaints/{complaintId}
func (c *Controller) PatchComplaint(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not read request body"))
		return
	}

	patch, err := ParseComplaintPatchReq(data)
	if err != nil {
		c.requestErrorResponse(w, err)
		return
	}

	ctx, cancel := c.requestContext(r)
	defer cancel()

	complaint, err := c.service.UpdateComplaint(ctx, r.PathValue("tenderId"), r.PathValue("complaintId"), patch)
	if err != nil {
		c.serviceErrorResponse(w, r, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, complaint)
}

// Service

type ErrorDetail struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Status string        `json:"status"`
	Errors []ErrorDetail `json:"errors"`
}

type DataResponse struct {
	Data any `json:"data"`
}

func badRequest(location, name, description string) ErrorDetail {
	return ErrorDetail{Location: location, Name: name, Description: description}
}

func internalError(description string) ErrorDetail {
	return ErrorDetail{Location: "body", Name: "data", Description: description}
}

func (c *Controller) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), c.timeout)
}

func (c *Controller) location(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: path}).String()
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, details ...ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Status: "error", Errors: details})
	if err != nil {
		c.log.Error("controller.Controller.errorResponse", zap.Error(err))
		return
	}

	_, err = w.Write(data)
	if err != nil {
		c.log.Error("controller.Controller.errorResponse", zap.Error(err))
		return
	}
}

// requestErrorResponse reports request parsing failures.
func (c *Controller) requestErrorResponse(w http.ResponseWriter, err error) {
	var reqErr *models.RequestError
	if !errors.As(err, &reqErr) {
		c.errorResponse(w, http.StatusBadRequest, badRequest("body", "data", err.Error()))
		return
	}
	c.errorResponse(w, statusCode(reqErr.Err), ErrorDetail{
		Location:    reqErr.Location,
		Name:        reqErr.Name,
		Description: reqErr.Description,
	})
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *models.RequestError
	switch {
	case errors.As(err, &reqErr):
		c.requestErrorResponse(w, reqErr)
	case errors.Is(err, models.ErrTenderFinished):
		c.errorResponse(w, http.StatusForbidden, internalError("Tender is already finished, status cannot be changed"))
	case errors.Is(err, models.ErrConflict):
		c.errorResponse(w, http.StatusConflict, internalError("Tender was modified by another request, retry"))
	case errors.Is(err, context.DeadlineExceeded):
		c.log.Warn("Request timed out", zap.String("path", r.URL.Path), zap.Error(err))
		c.errorResponse(w, http.StatusServiceUnavailable, internalError("request timed out"))
	default:
		c.log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		c.errorResponse(w, http.StatusInternalServerError, internalError("internal server error"))
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNoTender),
		errors.Is(err, models.ErrNoLot),
		errors.Is(err, models.ErrNoComplaint):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, status int, data any) {
	d, err := json.Marshal(DataResponse{Data: data})
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, internalError("could not marshal response data"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(d)
	if err != nil {
		c.log.Error("controller.Controller.marshalResponse", zap.Error(err))
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
