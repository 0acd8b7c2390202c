package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"lifedash/internal/auth"
	"lifedash/internal/log"
	"lifedash/internal/middleware/ratelimit"
	"lifedash/internal/middleware/security"
	"lifedash/internal/middleware/trace"
	"lifedash/internal/services"
	"lifedash/internal/storage"
)

// Services are the domain services the API exposes.
type Services struct {
	Finance   *services.FinanceService
	Fuel      *services.FuelService
	Dreams    *services.DreamService
	Dashboard *services.DashboardService
}

// WriteLister lists journaled write events.
type WriteLister interface {
	List(ctx context.Context, f storage.ListFilter) ([]services.WriteEvent, error)
}

// Options configures a Server. Journal and Checks may be nil.
type Options struct {
	Logger             *log.Logger
	Verifier           auth.CredentialVerifier
	Tokens             *auth.Tokens
	Journal            WriteLister
	Checks             map[string]func(context.Context) error
	SecureCookies      bool
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	svc      Services
	opts     Options
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:      svc,
		opts:     opts,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(rlConfig),
		detector: security.NewDetector(),
		tracer:   trace.NewMiddleware(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	mux := http.NewServeMux()
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please wait a moment.").Write(w)
	})
	read := func(h http.HandlerFunc) http.Handler { return s.requireSession(h) }
	write := func(h http.HandlerFunc) http.Handler { return limited(s.requireSession(h)) }

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /login", limited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("GET /api/session", read(s.handleSession))

	mux.Handle("GET /api/transactions", read(s.handleListTransactions))
	mux.Handle("POST /api/transactions", write(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/export", read(s.handleExportTransactions))

	mux.Handle("GET /api/dreams", read(s.handleListDreams))
	mux.Handle("POST /api/dreams", write(s.handleCreateDream))
	mux.Handle("GET /api/dreams/export", read(s.handleExportDreams))
	mux.Handle("GET /api/dreams/{dreamID}", read(s.handleDreamProgress))
	mux.Handle("POST /api/dreams/{dreamID}/contributions", write(s.handleContribute))

	mux.Handle("GET /api/fuel", read(s.handleListFuel))
	mux.Handle("POST /api/fuel", write(s.handleCreateFuel))
	mux.Handle("GET /api/fuel/export", read(s.handleExportFuel))

	mux.Handle("GET /api/dashboard", read(s.handleDashboard))
	mux.Handle("GET /api/writes", read(s.handleWrites))

	var h http.Handler = mux
	h = withSentry(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.AccessLog(s.detector.ExtractClientIP)(h)
	h = log.RequestIDMiddleware(trace.FromRequest)(h)
	h = log.Middleware(logger)(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleReady runs every registered check and answers 503 if any fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res := readiness{Status: "ready", Checks: make(map[string]string, len(s.opts.Checks))}
	status := http.StatusOK
	for name, check := range s.opts.Checks {
		if err := check(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "check", name, log.FieldError, err)
			res.Checks[name] = err.Error()
			res.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	NewResponse().Status(status).JSON(res).Write(w)
}
