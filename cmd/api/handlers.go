package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mcclellann/welfare/pkg/advisor"
	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/logger"
	"github.com/mcclellann/welfare/pkg/models"
	"github.com/mcclellann/welfare/pkg/store"
)

type createdResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// dispatch runs cmd and writes either the created ids or the rejection.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd ledger.Command) (ledger.Result, bool) {
	res, err := s.store.Dispatch(r.Context(), cmd)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return res, false
	}
	return res, true
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, cmd ledger.Command) {
	res, ok := s.dispatch(w, r, cmd)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: res.RecordID, TransactionID: res.TransactionID})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) listMembersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Members)
}

func (s *Server) addMemberHandler(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.AddMember
	if !decode(w, r, &cmd) {
		return
	}
	s.create(w, r, cmd)
}

func (s *Server) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.TransactionsNewestFirst(s.store.Snapshot().Transactions))
}

func (s *Server) addTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.AddTransaction
	if !decode(w, r, &cmd) {
		return
	}
	s.create(w, r, cmd)
}

func (s *Server) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	status := models.LoanStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, fmt.Sprintf("Unknown loan status %q", status), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ledger.LoansByStatus(s.store.Snapshot(), status))
}

func (s *Server) addLoanHandler(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.AddLoan
	if !decode(w, r, &cmd) {
		return
	}
	s.create(w, r, cmd)
}

type loanDetail struct {
	Loan       models.Loan         `json:"loan"`
	Member     string              `json:"member"`
	Progress   ledger.LoanProgress `json:"progress"`
	Repayments []models.Repayment  `json:"repayments"`
}

func (s *Server) getLoanHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	loan, ok := snap.Loan(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Loan not found", http.StatusNotFound)
		return
	}
	detail := loanDetail{
		Loan:       loan,
		Progress:   ledger.Progress(loan),
		Repayments: ledger.RepaymentsForLoan(snap, loan.ID),
	}
	if m, ok := snap.Member(loan.MemberID); ok {
		detail.Member = m.Name
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) updateLoanStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.LoanStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, ok := s.dispatch(w, r, ledger.UpdateLoanStatus{LoanID: mux.Vars(r)["id"], Status: req.Status})
	if !ok {
		return
	}
	loan, _ := res.State.Loan(res.RecordID)
	writeJSON(w, http.StatusOK, loan)
}

func (s *Server) addRepaymentHandler(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.AddRepayment
	if !decode(w, r, &cmd) {
		return
	}
	cmd.LoanID = mux.Vars(r)["id"]
	s.create(w, r, cmd)
}

func (s *Server) listContributionsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		writeJSON(w, http.StatusOK, ledger.ContributionsNewestFirst(ledger.ContributionsForMember(snap, memberID)))
		return
	}
	writeJSON(w, http.StatusOK, ledger.ContributionsNewestFirst(snap.Contributions))
}

func (s *Server) addContributionHandler(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.AddContribution
	if !decode(w, r, &cmd) {
		return
	}
	s.create(w, r, cmd)
}

func (s *Server) listProgrammesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot().Programmes)
}

func (s *Server) addProgrammeHandler(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.AddProgramme
	if !decode(w, r, &cmd) {
		return
	}
	s.create(w, r, cmd)
}

type dashboard struct {
	Summary ledger.Summary       `json:"summary"`
	Monthly []ledger.MonthTotals `json:"monthly"`
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, dashboard{
		Summary: ledger.Summarize(snap),
		Monthly: ledger.MonthlySeries(snap),
	})
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	month, err := models.ParseYearMonth(mux.Vars(r)["month"])
	if err != nil {
		http.Error(w, "Invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Report(s.store.Snapshot(), month))
}

func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.insightsTimeout)
	defer cancel()

	summary := ledger.SummaryText(ledger.Summarize(s.store.Snapshot()))
	text, err := s.advisor.Insights(ctx, summary)
	if err != nil {
		if errors.Is(err, advisor.ErrMissingAPIKey) {
			http.Error(w, "Insights are unavailable: set GEMINI_API_KEY to enable them", http.StatusServiceUnavailable)
			return
		}
		s.log.WarnContext(ctx, "Insights request failed", logger.FieldError, err.Error())
		http.Error(w, "Failed to generate insights", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insights": text})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if s.exportPath == "" {
		http.Error(w, "Export is disabled: set EXPORT_PATH to enable it", http.StatusServiceUnavailable)
		return
	}
	counts, err := exportSnapshot(r.Context(), s.store, s.exportPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": s.exportPath, "rows": counts})
}

// exportSnapshot writes the current state to the SQLite file at path and reports the
// row counts it now holds.
func exportSnapshot(ctx context.Context, st *store.Store, path string) (map[string]int, error) {
	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := st.Export(ctx, db); err != nil {
		return nil, err
	}
	return db.Counts(ctx)
}
