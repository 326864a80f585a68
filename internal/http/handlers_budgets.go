package http

import (
	"net/http"

	applog "smartspend/internal/log"
)

// handleListBudgets returns every budget with its consumption status.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Ledger().BudgetStatuses())
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := in.toBudget("", s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Budget created",
		applog.FieldBudgetID, created.ID,
		applog.FieldCategory, created.CategoryID,
		applog.FieldAmount, created.Amount.StringFixed(2),
		applog.FieldPeriod, created.Period)

	status, _ := s.ledger.Ledger().BudgetStatus(created.ID)
	NewJSONResponse().Created("/api/budgets/" + created.ID).Body(status).Send(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	b, err := in.toBudget(id, s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.UpdateBudget(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	status, _ := s.ledger.Ledger().BudgetStatus(id)
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
