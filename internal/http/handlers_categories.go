package http

import (
	"net/http"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Ledger().Categories())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), in.toCategory(""))
	createdOrFailed(w, r, "/api/categories/"+c.ID, c, err)
}

// handleUpdateCategory rejects edits to the seeded categories with 403.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.UpdateCategory(r.Context(), in.toCategory(id)); err != nil {
		writeError(w, r, err)
		return
	}
	c, _ := s.ledger.Ledger().Category(id)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
