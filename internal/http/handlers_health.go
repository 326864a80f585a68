package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz checks that the backing store answers within two seconds.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMetrics renders counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	counter := func(name, help string, v any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %v\n", name, help, name, name, v)
	}

	tm := s.tracer.GetMetrics()
	counter("smartspend_http_requests_total", "HTTP requests served.", tm.TotalRequests)
	counter("smartspend_http_server_errors_total", "HTTP responses with a 5xx status.", tm.ServerErrors)
	counter("smartspend_http_response_time_avg_seconds", "Average response time.", tm.AverageResponseTime.Seconds())

	rm := s.limiter.GetMetrics()
	counter("smartspend_rate_limited_total", "Requests rejected by the rate limiter.", rm.Rejected)
	counter("smartspend_rate_limit_clients", "Clients tracked by the rate limiter.", rm.ClientCount)

	dm := s.detector.GetMetrics()
	counter("smartspend_suspicious_requests_total", "Requests flagged as probes.", dm.SuspiciousRequests)

	if s.analytics != nil {
		hits, misses, size := s.analytics.Stats()
		counter("smartspend_analytics_cache_hits_total", "Analytics cache hits.", hits)
		counter("smartspend_analytics_cache_misses_total", "Analytics cache misses.", misses)
		counter("smartspend_analytics_cache_entries", "Analytics cache entries.", size)
	}

	l := s.ledger.Ledger()
	snap := l.Snapshot()
	counter("smartspend_ledger_revision", "Committed ledger changes since start.", l.Revision())
	counter("smartspend_ledger_transactions", "Transactions in the ledger.", len(snap.Transactions))
	counter("smartspend_ledger_budgets", "Budgets in the ledger.", len(snap.Budgets))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}
