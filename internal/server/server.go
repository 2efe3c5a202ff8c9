package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/ironprogress/internal/coach"
	"github.com/claude/ironprogress/internal/ingest/alpha"
	"github.com/claude/ironprogress/internal/journal"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps import request bodies.
const maxUploadBytes = 32 << 20

// Options carries the presentation settings handlers need.
type Options struct {
	Location        *time.Location // ledger and coach dates; UTC when nil
	CoachWindowDays int            // default window for the weekly analysis
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	journal *journal.Journal
	coach   *coach.Coach
	board   *coach.Board
	alpha   *alpha.Provider
	opts    Options
	log     *slog.Logger
	now     func() time.Time
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(j *journal.Journal, c *coach.Coach, alphaProvider *alpha.Provider, opts Options, log *slog.Logger) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CoachWindowDays <= 0 {
		opts.CoachWindowDays = 7
	}
	s := &Server{
		journal: j,
		coach:   c,
		board:   coach.NewBoard(),
		alpha:   alphaProvider,
		opts:    opts,
		log:     log,
		now:     time.Now,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// No auth on any route: tsnet or the loopback bind handles access.
func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleLogSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.With(RequireConfirm).Delete("/sessions/{id}", s.handleDeleteSession)

		r.With(RequireConfirm).Post("/import", s.handleImport)
		r.Get("/export.json", s.handleExportJSON)
		r.Get("/export.txt", s.handleExportText)

		r.Get("/exercises", s.handleExercises)
		r.Get("/exercises/last", s.handleLastPerformance)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/progression", s.handleProgression)
		r.Get("/stats", s.handleStats)

		r.Get("/coach/weekly", s.handleCoachWeekly)
		r.Get("/coach/next", s.handleCoachNext)
		r.Post("/coach/refresh", s.handleCoachRefresh)
		r.Get("/coach/latest", s.handleCoachLatest)
	})
}
