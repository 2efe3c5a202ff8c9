// Package render formats sessions and derived views for the terminal.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/models"
)

const (
	dateLayout = "Mon Jan 2 2006"
	barWidth   = 24
)

// Stats renders the dashboard counters.
func Stats(sum analytics.Summary, thisWeek int, loc *time.Location) string {
	s := newStyles()
	last := "never"
	if sum.LastWorkout != nil {
		last = sum.LastWorkout.In(location(loc)).Format(dateLayout)
	}

	rows := [][2]string{
		{"sessions", strconv.Itoa(sum.TotalSessions)},
		{"sets", strconv.Itoa(sum.TotalSets)},
		{"lifetime volume", formatKg(sum.LifetimeVolume)},
		{"last workout", last},
		{"this week", strconv.Itoa(thisWeek)},
	}

	lines := []string{s.title.Render("IronProgress")}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(r[0]+":"), s.value.Render(r[1])))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Sessions renders a session history in the order given.
func Sessions(sessions []models.WorkoutSession, loc *time.Location) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Workout history"),
		s.header.Render(fmt.Sprintf("sessions: %d", len(sessions))),
	}
	if len(sessions) == 0 {
		lines = append(lines, s.empty.Render("No workouts logged yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, session := range sessions {
		lines = append(lines, s.section.Render(renderSession(session, location(loc), s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(session models.WorkoutSession, loc *time.Location, s styles) string {
	parts := []string{
		s.session.Render(fmt.Sprintf("%s  %s", session.Date.In(loc).Format(dateLayout), session.Title)),
		s.header.Render(fmt.Sprintf("id %s · %d sets · %s", session.ID, session.SetCount(), formatKg(session.Volume()))),
	}
	for _, e := range session.Exercises {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top,
			s.exercise.Render("  "+e.ExerciseName+": "),
			s.detail.Render(formatSets(e.Sets)),
		))
		if e.Notes != "" {
			parts = append(parts, s.note.Render("    "+e.Notes))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Exercises renders a name list, one per line.
func Exercises(names []string) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Exercises"),
		s.header.Render(fmt.Sprintf("distinct: %d", len(names))),
	}
	if len(names) == 0 {
		lines = append(lines, s.empty.Render("No exercises logged yet."))
	}
	for _, n := range names {
		lines = append(lines, s.detail.Render("  "+n))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Progression renders one row per point with a volume bar scaled to the
// series maximum.
func Progression(exercise string, points []models.ProgressPoint, loc *time.Location) string {
	s := newStyles()
	lines := []string{s.title.Render(exercise)}
	if len(points) == 0 {
		lines = append(lines, s.empty.Render("No recorded sets for this exercise."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	var peak float64
	for _, p := range points {
		peak = math.Max(peak, p.Volume)
	}

	lines = append(lines, s.header.Render(fmt.Sprintf("%-16s %-28s %10s %8s", "date", "volume", "kg", "max")))
	for _, p := range points {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			s.detail.Render(fmt.Sprintf("%-16s ", p.Date.In(location(loc)).Format(dateLayout))),
			renderBar(p.Volume, peak, barWidth, s),
			s.value.Render(fmt.Sprintf("%13s", strconv.FormatFloat(p.Volume, 'f', -1, 64))),
			s.detail.Render(fmt.Sprintf("%9s", strconv.FormatFloat(p.MaxWeight, 'f', -1, 64))),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Coach renders coaching text under a heading.
func Coach(heading, text string) string {
	s := newStyles()
	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render(heading),
		s.section.Render(s.detail.Render(text)),
	)
}

func renderBar(v, peak float64, width int, s styles) string {
	filled := 0
	if peak > 0 {
		filled = int(math.Round(float64(width) * v / peak))
	}
	filled = min(max(filled, 0), width)
	return "[" + s.barFill.Render(strings.Repeat("=", filled)) + s.barEmpty.Render(strings.Repeat("-", width-filled)) + "]"
}

// formatSets renders sets as "10x20kg, 8x22.5kg"; superset members get a "+".
func formatSets(sets []models.ExerciseSet) string {
	if len(sets) == 0 {
		return "no sets"
	}
	out := make([]string, 0, len(sets))
	for _, set := range sets {
		v := fmt.Sprintf("%dx%gkg", set.Reps, set.Weight)
		if set.IsSuperset {
			v += "+"
		}
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " kg"
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
