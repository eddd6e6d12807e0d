package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/schedsim/internal/compare"
	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/internal/ui"
)

// Server is the simulation REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	compare   *compare.Runner
	ui        *ui.UI // read-only HTML dashboard
	now       func() time.Time
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logging.Component(logger, "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		compare:   compare.NewRunner(logger),
		ui:        ui.New(st, logger),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(tracingMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// Web UI
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})
	r.Route("/ui", s.ui.RegisterRoutes)

	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Simulations
		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", s.handleListSimulations)
			r.Post("/", s.handleCreateSimulation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSimulation)
				r.Delete("/", s.handleDeleteSimulation)
				r.Get("/report", s.handleSimulationReport)
			})
		})

		// Comparisons are computed on demand and not stored.
		r.Post("/comparisons", s.handleCreateComparison)
	})
}
