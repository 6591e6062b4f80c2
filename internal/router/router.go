package router

import (
	"net/http"
	"time"

	"procurement/internal/controller"

	"go.uber.org/zap"
)

func NewRouter(c *controller.Controller, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)

	mux.HandleFunc("GET /api/tenders", c.GetTenders)
	mux.HandleFunc("POST /api/tenders", c.NewTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", c.GetTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/status", c.SetTenderStatus)
	mux.HandleFunc("GET /api/tenders/{tenderId}/revisions", c.TenderRevisions)
	mux.HandleFunc("POST /api/tenders/{tenderId}/bids", c.NewBid)

	mux.HandleFunc("GET /api/tenders/{tenderId}/auction", c.GetAuction)
	mux.HandleFunc("PATCH /api/tenders/{tenderId}/auction", c.PatchAuction)
	mux.HandleFunc("POST /api/tenders/{tenderId}/auction", c.ReportAuction)
	mux.HandleFunc("GET /api/tenders/{tenderId}/auction/{lotId}", c.GetAuction)
	mux.HandleFunc("PATCH /api/tenders/{tenderId}/auction/{lotId}", c.PatchAuction)
	mux.HandleFunc("POST /api/tenders/{tenderId}/auction/{lotId}", c.ReportAuction)

	mux.HandleFunc("GET /api/tenders/{tenderId}/complaints", c.GetComplaints)
	mux.HandleFunc("POST /api/tenders/{tenderId}/complaints", c.NewComplaint)
	mux.HandleFunc("GET /api/tenders/{tenderId}/complaints/{complaintId}", c.GetComplaint)
	mux.HandleFunc("PATCH /api/tenders/{tenderId}/complaints/{complaintId}", c.PatchComplaint)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return requestLogger(cors, log)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler, log *zap.Logger) http.Handler {
	if log == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
