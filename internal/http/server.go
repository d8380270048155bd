package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kamai/internal/auth"
	"kamai/internal/core"
	applog "kamai/internal/log"
	"kamai/internal/metrics"
	"kamai/internal/middleware/ratelimit"
	"kamai/internal/middleware/security"
	"kamai/internal/middleware/trace"
	"kamai/internal/session"
	appweb "kamai/web"
)

// Directory is the part of the directory service the handlers use.
type Directory interface {
	Insert(ctx context.Context, name, followerLabel, profileLink string) (core.FeaturedCreator, error)
	ListActive(ctx context.Context) ([]core.FeaturedCreator, error)
	Delete(ctx context.Context, id int64) error
}

// Options wires the server's collaborators. Directory, Sessions, Gate and
// Logger are required.
type Options struct {
	Directory          Directory
	Sessions           *session.Manager
	Gate               *auth.Gate
	Metrics            *metrics.Metrics
	Logger             *applog.Logger
	PaymentLink        string
	RateLimitPerMinute int
	Now                func() time.Time
}

type Server struct {
	http.Server
	templates   *template.Template
	dir         Directory
	sessions    *session.Manager
	gate        *auth.Gate
	metrics     *metrics.Metrics
	logger      *applog.Logger
	paymentLink string
	now         func() time.Time
	started     time.Time

	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and configures routes, returning
// a ready-to-run server.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Directory == nil || opts.Sessions == nil || opts.Gate == nil || opts.Logger == nil {
		return nil, errors.New("http: directory, sessions, gate and logger are required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t, err := parseTemplates(appweb.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:   t,
		dir:         opts.Directory,
		sessions:    opts.Sessions,
		gate:        opts.Gate,
		metrics:     opts.Metrics,
		logger:      opts.Logger.WithComponent(applog.ComponentHTTP),
		paymentLink: opts.PaymentLink,
		now:         opts.Now,
		started:     opts.Now(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	var onSuspicious func()
	var observer trace.Observer
	if s.metrics != nil {
		onSuspicious = s.metrics.SuspiciousRequests.Inc
		observer = s.metrics
	}
	s.detector = security.NewDetector(onSuspicious)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(observer),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	s.rateLimiter.StartCleanup()
	return s, nil
}

func (s *Server) routes(observer trace.Observer) http.Handler {
	r := chi.NewRouter()

	r.Use(trace.NewMiddleware(s.logger, s.detector.ExtractClientIP, observer).Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimited))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Use(security.NoStore)
		r.Use(middleware.Compress(5, "text/html"))

		r.Get("/", s.handleIndex)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/report", s.handleReport)
		r.Get("/report/download", s.handleReportDownload)
		r.Get("/creators", s.handleCreators)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)
			r.Post("/logout", s.handleAdminLogout)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/creators", s.handleAdminCreate)
				r.Delete("/creators/{id}/delete", s.handleAdminDelete)
				r.Post("/creators/{id}/delete", s.handleAdminDelete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Page not found.").Write(w)
	})
	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RateLimited.Inc()
	}
	ctx := r.Context()
	applog.FromContext(ctx).WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
		applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "").WithClientIP(s.detector.ExtractClientIP(r)).ToSlice()...)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please wait a minute and try again.").
		TriggerErrorNotification("Too many requests.").
		Write(w)
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
