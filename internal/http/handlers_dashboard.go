package http

import (
	"net/http"

	"smartspend/internal/core"
	applog "smartspend/internal/log"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Ledger().Totals())
}

// handleAnalytics serves the dashboard read model. Results are cached per
// ledger revision, so any write invalidates them.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	tf, err := parseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	l := s.ledger.Ledger()
	now := s.now().In(s.loc)
	build := func() core.Analytics { return l.Analytics(tf, now) }

	var a core.Analytics
	if s.analytics != nil {
		a = s.analytics.GetOrBuild(l.Revision(), tf, now, build)
	} else {
		a = build()
	}
	writeJSON(w, http.StatusOK, a)
}

type recurringRunResponse struct {
	Created int    `json:"created"`
	Policy  string `json:"policy"`
}

// handleRunRecurring triggers a recurring scan outside the schedule.
func (s *Server) handleRunRecurring(w http.ResponseWriter, r *http.Request) {
	if s.recurring == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "recurring processing is not configured")
		return
	}
	n, err := s.recurring.ProcessDue(r.Context(), s.now().In(s.loc))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Manual recurring run complete",
		applog.FieldComponent, applog.ComponentRecurring,
		"created", n)
	writeJSON(w, http.StatusOK, recurringRunResponse{Created: n, Policy: string(s.recurring.Policy())})
}
