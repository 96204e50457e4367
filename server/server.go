// Package server exposes the tracker manager over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayoisaiah/worklog/internal/ports"
	"github.com/ayoisaiah/worklog/tracker"
)

// hookTimeout bounds the post-submit command.
const hookTimeout = 30 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithSubmitter enables POST /submit.
func WithSubmitter(sub ports.Submitter) Option {
	return func(s *Server) {
		s.submitter = sub
	}
}

// WithSubmitCmd sets the command run after a successful submission.
func WithSubmitCmd(cmd string) Option {
	return func(s *Server) {
		s.submitCmd = cmd
	}
}

// WithGatherer exposes the metrics of g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// Server routes HTTP requests to the tracker manager.
type Server struct {
	manager   *tracker.Manager
	issues    ports.IssueLookup
	submitter ports.Submitter
	gatherer  prometheus.Gatherer
	log       *slog.Logger
	submitCmd string
}

// New returns a Server. Issue keys are resolved through issues before a
// tracker is created for them.
func New(m *tracker.Manager, issues ports.IssueLookup, opts ...Option) *Server {
	s := &Server{
		manager: m,
		issues:  issues,
		log:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the routes of the tracker API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/trackers", func(r chi.Router) {
		r.Get("/", s.list)
		r.Delete("/", s.clear)

		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", s.get)
			r.Post("/", s.create)
			r.Put("/", s.adjust)
			r.Delete("/", s.remove)
			r.Post("/start", s.start)
		})
	})

	r.Route("/tracker", func(r chi.Router) {
		r.Get("/", s.current)
		r.Post("/pause", s.pause)
	})

	r.Get("/sum", s.sum)
	r.Post("/submit", s.submit)

	return r
}

// loggingMiddleware logs every request once it has been served.
func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.String("remote", r.RemoteAddr),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}
