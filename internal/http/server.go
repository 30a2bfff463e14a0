package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expensex/internal/app"
	"expensex/internal/cache"
	applog "expensex/internal/log"
	"expensex/internal/middleware/ratelimit"
	"expensex/internal/middleware/security"
	"expensex/internal/middleware/trace"
)

// Config holds HTTP server settings. Zero values pick defaults.
type Config struct {
	Addr string
	// RequestsPerMinute limits state-changing requests per client IP.
	RequestsPerMinute int
	// BlockSuspicious answers flagged requests with 403 instead of only
	// logging them.
	BlockSuspicious bool
	TrustedProxies  []string
}

// Server is the JSON API over one App.
type Server struct {
	*http.Server

	app      *app.App
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
	shutdownErr  error
}

// NewServer builds the API server. The rate limiter's cleanup goroutine
// runs until Shutdown.
func NewServer(cfg Config, a *app.App, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Server{
		app:       a,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
		detector:  security.NewDetector(),
		tracer:    trace.NewMiddleware(),
		startedAt: time.Now(),
	}
	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}

	s.Server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses", s.handleClearExpenses)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/quick-entry", s.handleQuickEntry)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/analysis", s.handleAnalysis)

	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("GET /api/limits", s.handleListLimits)
	mux.HandleFunc("PUT /api/limits/{category}", s.handleSetLimit)
	mux.HandleFunc("DELETE /api/limits/{category}", s.handleDeleteLimit)
	mux.HandleFunc("POST /api/alerts/check", s.handleCheckAlerts)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/categorize", s.handleCategorize)
	mux.HandleFunc("POST /api/assistant", s.handleAssistant)
	mux.HandleFunc("GET /api/currencies", s.handleCurrencies)

	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("POST /api/export/sheets", s.handleExportSheets)

	return mux
}

// handler wraps the routes, outermost first: request ID, request log,
// panic recovery, security headers, suspicious request detection, then
// the write rate limit.
func (s *Server) handler(cfg Config) http.Handler {
	var h http.Handler = s.routes()
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.WritesOnly, s.onRateLimit)(h)
	h = s.detector.Middleware(s.logger, cfg.BlockSuspicious)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.recoverer(h)
	h = applog.Middleware(s.logger, s.detector.ExtractClientIP)(h)
	return s.tracer.Handler(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(r, http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w, r)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				applog.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panic",
					applog.FieldPath, r.URL.Path,
					"panic", rec)
				InternalServerError(r, "internal error").Write(w, r)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Cleaners exposes periodic cleanup hooks for the cache manager.
func (s *Server) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.limiter}
}

// Shutdown stops accepting requests, waits for in-flight ones and stops
// the rate limiter. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		s.limiter.Stop()
		s.shutdownErr = s.Server.Shutdown(ctx)
	})
	return s.shutdownErr
}
