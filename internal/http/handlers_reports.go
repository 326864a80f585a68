package http

import (
	"fmt"
	"net/http"
	"time"

	"smartspend/internal/core"
	applog "smartspend/internal/log"
	"smartspend/internal/services"
)

type reportResponse struct {
	core.Report
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Rows        int       `json:"rows"`
	Pending     bool      `json:"pending,omitempty"`
	Message     string    `json:"message,omitempty"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}

func newReportResponse(g services.GeneratedReport) reportResponse {
	resp := reportResponse{
		Report:  g.Report,
		From:    g.From,
		To:      g.To,
		Rows:    g.Rows,
		Pending: g.Pending,
		Message: g.Message,
	}
	if !g.Pending {
		resp.DownloadURL = "/api/reports/" + g.Report.ID + "/download"
	}
	return resp
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Ledger().Reports())
}

// handleCreateReport records a report for the requested period and renders
// it once so the response can describe its window and size.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in reportInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	format, period, err := in.normalized()
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.reports.Generate(r.Context(), format, period, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if g.Pending {
		status = http.StatusAccepted
	}
	s.logger.InfoContext(r.Context(), "Report requested",
		applog.FieldReportID, g.Report.ID,
		applog.FieldPeriod, period,
		"format", format,
		"pending", g.Pending)
	NewJSONResponse().
		Status(status).
		Header("Location", "/api/reports/"+g.Report.ID).
		Body(newReportResponse(g)).
		Send(w)
}

// handleDownloadReport renders a stored report for the current window.
// Formats without a renderer answer with the pending notice.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	g, err := s.reports.Regenerate(r.Context(), r.PathValue("id"), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if g.Pending {
		writeJSON(w, http.StatusAccepted, newReportResponse(g))
		return
	}

	w.Header().Set("Content-Type", g.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", g.Filename))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(g.Data)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found, err := s.reports.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, fmt.Errorf("report %s: %w", id, services.ErrReportNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
