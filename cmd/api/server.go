package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mcclellann/welfare/pkg/advisor"
	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/logger"
	"github.com/mcclellann/welfare/pkg/metrics"
	"github.com/mcclellann/welfare/pkg/store"
)

// Server exposes the store over HTTP. It never touches ledger state directly: writes go
// through Dispatch and reads through Snapshot.
type Server struct {
	store           *store.Store
	advisor         advisor.Advisor
	metrics         *metrics.Metrics
	exportPath      string
	insightsTimeout time.Duration
	log             *logger.Logger
}

func NewServer(st *store.Store, adv advisor.Advisor, log *logger.Logger) *Server {
	return &Server{
		store:           st,
		advisor:         adv,
		insightsTimeout: 30 * time.Second,
		log:             log.WithComponent(logger.ComponentHTTP),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/state", s.stateHandler).Methods("GET")

	router.HandleFunc("/members", s.listMembersHandler).Methods("GET")
	router.HandleFunc("/members", s.addMemberHandler).Methods("POST")

	router.HandleFunc("/transactions", s.listTransactionsHandler).Methods("GET")
	router.HandleFunc("/transactions", s.addTransactionHandler).Methods("POST")

	router.HandleFunc("/loans", s.listLoansHandler).Methods("GET")
	router.HandleFunc("/loans", s.addLoanHandler).Methods("POST")
	router.HandleFunc("/loans/{id}", s.getLoanHandler).Methods("GET")
	router.HandleFunc("/loans/{id}/status", s.updateLoanStatusHandler).Methods("PUT")
	router.HandleFunc("/loans/{id}/repayments", s.addRepaymentHandler).Methods("POST")

	router.HandleFunc("/contributions", s.listContributionsHandler).Methods("GET")
	router.HandleFunc("/contributions", s.addContributionHandler).Methods("POST")

	router.HandleFunc("/programmes", s.listProgrammesHandler).Methods("GET")
	router.HandleFunc("/programmes", s.addProgrammeHandler).Methods("POST")

	router.HandleFunc("/dashboard", s.dashboardHandler).Methods("GET")
	router.HandleFunc("/reports/{month}", s.reportHandler).Methods("GET")
	router.HandleFunc("/insights", s.insightsHandler).Methods("GET")
	router.HandleFunc("/export", s.exportHandler).Methods("POST")

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.InfoContext(r.Context(), "Request handled",
			logger.FieldMethod, r.Method,
			logger.FieldPath, r.URL.Path,
			logger.FieldStatusCode, rec.status,
			logger.FieldDuration, time.Since(start).Milliseconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps a ledger rejection onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidCommand), errors.Is(err, ledger.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrMemberNotFound), errors.Is(err, ledger.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidTransition), errors.Is(err, ledger.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrLoanNotRepayable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
