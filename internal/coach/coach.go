// Package coach produces natural-language training summaries. Its methods
// never fail: every problem degrades to a fixed fallback text.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/ironprogress/internal/models"
)

const (
	NoWorkoutsText   = "No workouts found for this week to analyze. Go lift some weights!"
	UnreachableText  = "Sorry, I couldn't reach the AI coach right now. Please check your connection or API key."
	EmptyAnalysis    = "Could not generate analysis."
	EmptySuggestion  = "Rest day might be good!"
	FailedSuggestion = "Plan a Balanced session!"
)

// suggestionHistory is how many trailing sessions the next-session prompt sees.
const suggestionHistory = 3

// Coach wraps a Generator with prompts and fallbacks. A nil generator
// behaves like an unreachable service.
type Coach struct {
	gen Generator
	loc *time.Location
	log *slog.Logger
}

// New creates a Coach. Dates in prompts are rendered in loc (UTC when nil).
func New(gen Generator, loc *time.Location, log *slog.Logger) *Coach {
	if loc == nil {
		loc = time.UTC
	}
	return &Coach{gen: gen, loc: loc, log: log}
}

// WeeklyAnalysis summarizes the given sessions. An empty input returns
// NoWorkoutsText without contacting the service.
func (c *Coach) WeeklyAnalysis(ctx context.Context, sessions []models.WorkoutSession) string {
	if len(sessions) == 0 {
		return NoWorkoutsText
	}
	if c.gen == nil {
		return UnreachableText
	}

	text, err := c.gen.Generate(ctx, c.weeklyPrompt(sessions))
	if err != nil {
		c.log.Error("weekly analysis failed", "sessions", len(sessions), "error", err)
		return UnreachableText
	}
	if strings.TrimSpace(text) == "" {
		return EmptyAnalysis
	}
	return text
}

// SuggestNext proposes the next session from the last few sessions in the
// order given.
func (c *Coach) SuggestNext(ctx context.Context, sessions []models.WorkoutSession) string {
	if c.gen == nil {
		return FailedSuggestion
	}
	text, err := c.gen.Generate(ctx, nextPrompt(sessions))
	if err != nil {
		c.log.Error("next session suggestion failed", "error", err)
		return FailedSuggestion
	}
	if strings.TrimSpace(text) == "" {
		return EmptySuggestion
	}
	return text
}

func (c *Coach) weeklyPrompt(sessions []models.WorkoutSession) string {
	summaries := make([]string, 0, len(sessions))
	for _, s := range sessions {
		var b strings.Builder
		fmt.Fprintf(&b, "Date: %s\nFocus: %s\nExercises:\n", s.Date.In(c.loc).Format("1/2/2006"), s.Title)
		lines := make([]string, 0, len(s.Exercises))
		for _, e := range s.Exercises {
			sets := make([]string, 0, len(e.Sets))
			for _, set := range e.Sets {
				sets = append(sets, fmt.Sprintf("%dx%gkg", set.Reps, set.Weight))
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", e.ExerciseName, strings.Join(sets, ", ")))
		}
		b.WriteString(strings.Join(lines, "\n"))
		summaries = append(summaries, b.String())
	}

	return `You are an expert fitness coach. Analyze the following workout logs for my week.
Identify progressive overload, volume changes, and intensity.

Give me a "Weekly Overview" that includes:
1. A brief motivational summary.
2. Key achievements (e.g., "You increased your chest press weight by 5kg").
3. Suggestions for next week (e.g., "Focus more on form for squats" or "Volume on shoulders is high, good job").

Keep it concise, encouraging, and professional. Use Markdown formatting.

Workouts:
` + strings.Join(summaries, "\n\n")
}

func nextPrompt(sessions []models.WorkoutSession) string {
	recent := sessions
	if len(recent) > suggestionHistory {
		recent = recent[len(recent)-suggestionHistory:]
	}
	lines := make([]string, 0, len(recent))
	for _, s := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", s.Date, s.Title))
	}
	return `Based on these recent workouts, suggest a plan for my next gym session (Body parts and 3-4 key exercises).

Recent History:
` + strings.Join(lines, "\n") + `

Keep it short.`
}
