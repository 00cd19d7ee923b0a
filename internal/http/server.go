package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"nextcash/internal/auth"
	"nextcash/internal/log"
	"nextcash/internal/middleware/ratelimit"
	"nextcash/internal/middleware/security"
	"nextcash/internal/middleware/trace"
	"nextcash/internal/services"
	appweb "nextcash/web"
)

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the application operations exposed over HTTP.
type Services struct {
	Transactions *services.TransactionService
	Categories   *services.CategoryService
	Cashflow     *services.CashflowService
}

// Options configure the middleware chain.
type Options struct {
	Verifier           auth.Verifier
	Health             Pinger
	Logger             *log.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	templates *template.Template

	tx       *services.TransactionService
	cats     *services.CategoryService
	cashflow *services.CashflowService
	health   Pinger
	logger   *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err, "cidr", cidr)
		}
	}

	s := &Server{
		tx:       svc.Transactions,
		cats:     svc.Categories,
		cashflow: svc.Cashflow,
		health:   opts.Health,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		now:      time.Now,
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	page := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, security.NoStore(h))
	}

	page("GET /{$}", s.handleIndex)
	page("GET /dashboard", s.handleDashboard)
	page("GET /dashboard/transactions", s.handleTransactionList)
	page("GET /dashboard/transactions/new", s.handleNewTransactionForm)
	page("POST /dashboard/transactions/new", s.handleCreateTransaction)
	page("GET /dashboard/transactions/{id}", s.handleEditTransactionForm)
	page("POST /dashboard/transactions/{id}", s.handleUpdateTransaction)
	page("POST /dashboard/transactions/{id}/delete", s.handleDeleteTransaction)
	page("GET /ui/categories", s.handleCategoryOptions)

	page("GET /api/categories", s.handleAPICategories)
	page("GET /api/cashflow", s.handleAPICashflow)
	page("GET /api/transactions", s.handleAPIListTransactions)
	page("POST /api/transactions", s.handleAPICreateTransaction)
	page("GET /api/transactions/{id}", s.handleAPIGetTransaction)
	page("PUT /api/transactions/{id}", s.handleAPIUpdateTransaction)
	page("DELETE /api/transactions/{id}", s.handleAPIDeleteTransaction)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(handler)
	if opts.Verifier != nil {
		handler = auth.Middleware(opts.Verifier, logger.WithComponent(log.ComponentAuth).Logger)(handler)
	}
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		metrics := s.tracer.GetMetrics()
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			log.FieldOperation, log.OpShutdown,
			"total_requests", metrics.TotalRequests,
			"server_errors", metrics.ServerErrors,
			"rate_limited", s.limiter.Hits(),
			"suspicious_requests", s.detector.SuspiciousRequests())
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldSubcomponent, log.ComponentRateLimit,
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if isAPI(r) {
		writeJSONError(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}
	TooManyRequestsError(msgRateLimited).Write(w)
}
