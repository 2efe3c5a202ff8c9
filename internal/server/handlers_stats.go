package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/catalog"
	"github.com/claude/ironprogress/internal/models"
)

// statsResponse is the dashboard summary.
type statsResponse struct {
	analytics.Summary
	SessionsThisWeek int `json:"sessions_this_week"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions := s.journal.Sessions()
	writeJSON(w, http.StatusOK, statsResponse{
		Summary:          analytics.Summarize(sessions),
		SessionsThisWeek: analytics.SessionsThisWeek(sessions, s.now().In(s.opts.Location)),
	})
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analytics.ExerciseNames(s.journal.Sessions()))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Definitions())
}

func (s *Server) handleLastPerformance(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	perf, ok := analytics.LastPerformance(s.journal.Sessions(), name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no recorded sets for " + name})
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("exercise")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	writeJSON(w, http.StatusOK, analytics.Progression(s.journal.Sessions(), name))
}

// coachWindow reads ?days=, defaulting to the configured window.
func (s *Server) coachWindow(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return s.opts.CoachWindowDays, true
	}
	days, err := strconv.Atoi(v)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

func (s *Server) weeklyAnalysis(ctx context.Context, days int) string {
	recent := analytics.LastDays(s.journal.Sessions(), s.now(), days)
	return s.coach.WeeklyAnalysis(ctx, recent)
}

func (s *Server) handleCoachWeekly(w http.ResponseWriter, r *http.Request) {
	days, ok := s.coachWindow(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days": days,
		"text": s.weeklyAnalysis(r.Context(), days),
	})
}

func (s *Server) handleCoachNext(w http.ResponseWriter, r *http.Request) {
	sessions := s.journal.Sessions()
	models.SortByDate(sessions, true)
	writeJSON(w, http.StatusOK, map[string]string{"text": s.coach.SuggestNext(r.Context(), sessions)})
}

// handleCoachRefresh starts a weekly analysis in the background and returns
// immediately; GET /coach/latest shows the result once it lands.
func (s *Server) handleCoachRefresh(w http.ResponseWriter, r *http.Request) {
	days, ok := s.coachWindow(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
		return
	}
	ctx := context.WithoutCancel(r.Context())
	s.board.Refresh(ctx, func(ctx context.Context) string {
		return s.weeklyAnalysis(ctx, days)
	})
	writeJSON(w, http.StatusAccepted, s.board.Latest())
}

func (s *Server) handleCoachLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Latest())
}
