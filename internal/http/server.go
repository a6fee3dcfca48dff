package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"warikan/internal/cache"
	"warikan/internal/log"
	"warikan/internal/middleware/ratelimit"
	"warikan/internal/middleware/security"
	"warikan/internal/middleware/trace"
	"warikan/internal/services"
	appweb "warikan/web"
)

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the handlers need.
type Deps struct {
	Settlements *services.SettlementService
	Advances    *services.AdvanceService
	// Sources is nil when the ledger does not come from a script URL; the
	// setup screen is then never shown.
	Sources *services.SourceSettings
	// Publisher announces refreshes to the worker; optional.
	Publisher services.Publisher
	Store     Pinger
	Logger    *log.Logger
}

// appMetrics holds counters exported on /metrics.
type appMetrics struct {
	started       time.Time
	reports       atomic.Int64
	fetchFailures atomic.Int64
	advancesSaved atomic.Int64
	refreshes     atomic.Int64
}

type Server struct {
	http.Server
	templates *template.Template

	settlements *services.SettlementService
	advances    *services.AdvanceService
	sources     *services.SourceSettings
	publisher   services.Publisher
	store       Pinger

	logger      *log.Logger
	structured  *log.StructuredLogger
	ipResolver  *security.ClientIPResolver
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	caches      *cache.Manager
	metrics     appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		settlements: deps.Settlements,
		advances:    deps.Advances,
		sources:     deps.Sources,
		publisher:   deps.Publisher,
		store:       deps.Store,
		logger:      logger,
		structured:  log.NewStructuredLogger(logger),
		ipResolver:  security.NewClientIPResolver(),
		caches:      cache.NewManager(),
	}
	s.metrics.started = time.Now()

	t, err := parseTemplates()
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	}
	s.templates = t

	if s.settlements != nil {
		s.caches.Register(s.settlements.Cache())
	}
	s.caches.StartCleanup(10 * time.Minute)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/settings/source", s.handleSaveSource)
	mux.HandleFunc("/advances", s.handleSaveAdvance)
	mux.HandleFunc("/refresh", s.handleRefresh)

	// UI partials
	mux.Handle("/ui/monthly", security.NoStore(http.HandlerFunc(s.handleMonthlyPartial)))
	mux.Handle("/ui/yearly", security.NoStore(http.HandlerFunc(s.handleYearlyPartial)))

	// JSON API
	mux.Handle("/api/overview", security.NoStore(http.HandlerFunc(s.handleAPIOverview)))
	mux.Handle("/api/reports/monthly", security.NoStore(http.HandlerFunc(s.handleAPIMonthly)))
	mux.Handle("/api/reports/yearly", security.NoStore(http.HandlerFunc(s.handleAPIYearly)))

	limitCfg := ratelimit.DefaultConfig()
	s.rateLimiter = ratelimit.NewLimiter(limitCfg)
	s.tracer = trace.NewMiddleware(logger, s.ipResolver.ClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(limitCfg, s.ipResolver.ClientIP, s.onRateLimited)(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"yen": formatYen,
	}
	return template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.ipResolver.ClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "リクエストが多すぎます。しばらくしてから再度お試しください。").Write(w)
}

// Shutdown stops background loops and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a template, falling back to an error fragment.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": name})
	}
}
