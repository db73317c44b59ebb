package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tyotilasto/internal/core"
	applog "tyotilasto/internal/log"
	"tyotilasto/internal/metrics"
	"tyotilasto/internal/middleware/ratelimit"
	"tyotilasto/internal/middleware/security"
	"tyotilasto/internal/middleware/trace"
	"tyotilasto/internal/news"
	"tyotilasto/internal/services"
	appweb "tyotilasto/web"
)

type (
	// SummaryProvider serves the cached dashboard summary.
	SummaryProvider interface {
		CachedSummary(ctx context.Context) (core.Summary, error)
		Ordered(summary core.Summary) []services.OrderedRegion
	}

	// ReportProvider serves the newest monthly report.
	ReportProvider interface {
		Latest(ctx context.Context) (core.Report, bool, error)
	}

	// NewsProvider serves the news panel.
	NewsProvider interface {
		Latest(ctx context.Context) ([]news.Article, error)
	}

	// Check is a named readiness probe.
	Check func(ctx context.Context) error
)

var (
	_ SummaryProvider = (*services.SummaryService)(nil)
	_ ReportProvider  = (*services.ReportService)(nil)
	_ NewsProvider    = (*news.Feed)(nil)
)

// Deps are the collaborators of the server. News, Checks and Metrics may be nil.
type Deps struct {
	Summaries SummaryProvider
	Reports   ReportProvider
	News      NewsProvider
	Checks    map[string]Check
	Metrics   *metrics.Metrics
	Logger    *applog.Logger
	RateLimit ratelimit.Config
}

type Server struct {
	http.Server
	templates *template.Template

	summaries SummaryProvider
	reports   ReportProvider
	news      NewsProvider
	checks    map[string]Check
	metrics   *metrics.Metrics
	logger    *applog.Logger

	rateLimiter  *ratelimit.Limiter
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = applog.New(applog.Config{})
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		summaries:   d.Summaries,
		reports:     d.Reports,
		news:        d.News,
		checks:      d.Checks,
		metrics:     d.Metrics,
		logger:      d.Logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: ratelimit.NewLimiter(d.RateLimit),
		startedAt:   time.Now(),
	}

	t, err := parseTemplates()
	if err != nil {
		s.logger.WarnContext(context.Background(), "Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(trace.Middleware)
	r.Use(applog.Middleware(s.logger, trace.FromRequest))
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	// Probes and metrics stay outside the rate limit.
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.WarnContext(context.Background(), "Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(extractClientIP, s.onRateLimit))

		r.Get("/", s.handleIndex)
		r.Route("/ui", func(r chi.Router) {
			r.Get("/summary", s.handleSummaryPartial)
			r.Get("/report", s.handleReportPartial)
			r.Get("/news", s.handleNewsPartial)
		})
		r.Route("/api", func(r chi.Router) {
			r.Get("/summary", s.handleAPISummary)
			r.Get("/report", s.handleAPIReport)
		})
	})

	return r
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, extractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Liian monta pyyntöä. Yritä hetken kuluttua uudelleen.").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
