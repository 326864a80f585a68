package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"smartspend/internal/cache"
	applog "smartspend/internal/log"
	"smartspend/internal/middleware/ratelimit"
	"smartspend/internal/middleware/security"
	"smartspend/internal/middleware/trace"
	"smartspend/internal/services"
)

// Deps are the collaborators the API serves.
type Deps struct {
	Ledger    *services.LedgerService
	Reports   *services.ReportService
	Recurring *services.RecurringProcessor
	// Analytics may be nil to disable caching.
	Analytics *cache.AnalyticsCache
	// Ready reports whether the backing store is reachable. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger

	RequestsPerMinute int
	Location          *time.Location
	Now               func() time.Time
}

type Server struct {
	http.Server
	ledger    *services.LedgerService
	reports   *services.ReportService
	recurring *services.RecurringProcessor
	analytics *cache.AnalyticsCache
	ready     func(ctx context.Context) error
	logger    *applog.Logger
	loc       *time.Location
	now       func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
}

// NewServer wires routes and middleware. Call Shutdown to release the
// rate limiter.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		ledger:    deps.Ledger,
		reports:   deps.Reports,
		recurring: deps.Recurring,
		analytics: deps.Analytics,
		ready:     deps.Ready,
		logger:    logger,
		loc:       deps.Location,
		now:       deps.Now,
		detector:  security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RequestsPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/recurring", s.handleListRecurring)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("POST /api/recurring/run", s.handleRunRecurring)

	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("POST /api/reports", s.handleCreateReport)
	mux.HandleFunc("DELETE /api/reports/{id}", s.handleDeleteReport)
	mux.HandleFunc("GET /api/reports/{id}/download", s.handleDownloadReport)
}

// middleware builds the chain, outermost first: logger, tracing, request-id
// logging, security headers, probe detection, rate limiting, JSON mux errors.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = muxErrorsAsJSON(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, isProbe, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(h)
	h = s.tracer.Middleware(h)
	return applog.Middleware(s.logger)(h)
}

// Health and metrics probes bypass the rate limiter.
func isProbe(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// muxErrorsAsJSON rewrites the mux's plain-text 404 and 405 responses into
// the API's JSON error shape. Handler errors are already JSON and pass through.
func muxErrorsAsJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&jsonErrorWriter{ResponseWriter: w}, r)
	})
}

var muxErrorBodies = map[int]string{
	http.StatusNotFound:         `{"error":"not found"}`,
	http.StatusMethodNotAllowed: `{"error":"method not allowed"}`,
}

type jsonErrorWriter struct {
	http.ResponseWriter
	suppress bool
}

func (w *jsonErrorWriter) WriteHeader(code int) {
	body, ok := muxErrorBodies[code]
	if ok && !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		w.suppress = true
		w.Header().Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(code)
		w.ResponseWriter.Write([]byte(body))
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *jsonErrorWriter) Write(b []byte) (int, error) {
	if w.suppress {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Close releases background resources without serving shutdown.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}
