package http

import (
	"net/http"

	"smartspend/internal/ledger"
	applog "smartspend/internal/log"
)

// handleListTransactions serves the ledger newest first, optionally
// narrowed by start, end and category.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r, s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs := s.ledger.Ledger().Transactions()
	if rng.Start != nil || rng.End != nil {
		txs = ledger.FilterByDate(txs, rng.Start, rng.End)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		txs = ledger.FilterByCategory(txs, category)
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Ledger().RecurringTransactions())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := in.toTransaction("", s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(created.ID, string(created.Type), created.Amount, created.Category).
			ToSlice()...)
	NewJSONResponse().Created("/api/transactions/" + created.ID).Body(created).Send(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := in.toTransaction(id, s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}

	updated, _ := s.ledger.Ledger().Transaction(id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	w.WriteHeader(http.StatusNoContent)
}

// createdOrFailed responds 201 with v, or with the error status.
func createdOrFailed[T any](w http.ResponseWriter, r *http.Request, location string, v T, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Created(location).Body(v).Send(w)
}
