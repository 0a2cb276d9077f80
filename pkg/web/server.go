package web

import (
	"log/slog"
	"net/http"

	"github.com/courtbook/toastpop/pkg/live"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// Server routes HTTP traffic to the page, the API, and the live hub.
type Server struct {
	hub    *live.Hub
	logger *slog.Logger

	gatherer       prometheus.Gatherer
	tracerProvider trace.TracerProvider
	tracerName     string
	pageTitle      string

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and API logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the given registry at /metrics. Without it
// /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithTracerProvider sets the provider for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// WithTracerName sets the tracer name for request spans.
func WithTracerName(name string) Option {
	return func(s *Server) {
		s.tracerName = name
	}
}

// WithPageTitle sets the document title of the page.
func WithPageTitle(title string) Option {
	return func(s *Server) {
		s.pageTitle = title
	}
}

// New creates a Server for hub.
func New(hub *live.Hub, opts ...Option) *Server {
	s := &Server{
		hub:        hub,
		logger:     slog.Default(),
		tracerName: defaultTracerName,
		pageTitle:  "toastpop",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(Tracing(s.tracerProvider, s.tracerName))

	r.Get("/", s.handlePage)
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))
	r.Handle("/ws", s.hub)
	r.Post("/api/toast", s.handleToast)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.hub.Len(),
	})
}
