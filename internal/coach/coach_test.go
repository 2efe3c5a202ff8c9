package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/ironprogress/internal/models"
)

// stubGenerator records prompts and returns a canned reply.
type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func testCoach(gen Generator) *Coach {
	return New(gen, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sessionOn(id string, day int, title string) models.WorkoutSession {
	return models.WorkoutSession{
		ID:    id,
		Date:  models.NewTimestamp(time.Date(2025, 8, day, 10, 0, 0, 0, time.UTC)),
		Title: title,
		Exercises: []models.ExerciseLog{
			{ExerciseName: "Chest press dumbbell", Sets: []models.ExerciseSet{{Reps: 6, Weight: 22}, {Reps: 9, Weight: 22.5}}},
		},
	}
}

// TestWeeklyAnalysisEmpty verifies no service call is made for an empty week.
func TestWeeklyAnalysisEmpty(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	if got := testCoach(gen).WeeklyAnalysis(context.Background(), nil); got != NoWorkoutsText {
		t.Errorf("got %q, want %q", got, NoWorkoutsText)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("generator called %d times", len(gen.prompts))
	}
}

// TestWeeklyAnalysisFallbacks verifies failure and empty replies degrade to fixed text.
func TestWeeklyAnalysisFallbacks(t *testing.T) {
	sessions := []models.WorkoutSession{sessionOn("a", 30, "Chest - Back")}
	ctx := context.Background()

	if got := testCoach(&stubGenerator{err: errors.New("network down")}).WeeklyAnalysis(ctx, sessions); got != UnreachableText {
		t.Errorf("error reply = %q", got)
	}
	if got := testCoach(&stubGenerator{reply: "  "}).WeeklyAnalysis(ctx, sessions); got != EmptyAnalysis {
		t.Errorf("empty reply = %q", got)
	}
	if got := testCoach(nil).WeeklyAnalysis(ctx, sessions); got != UnreachableText {
		t.Errorf("nil generator = %q", got)
	}
	if got := testCoach(&stubGenerator{reply: "Great week!"}).WeeklyAnalysis(ctx, sessions); got != "Great week!" {
		t.Errorf("reply = %q", got)
	}
}

// TestWeeklyPrompt verifies each session is summarized with its sets.
func TestWeeklyPrompt(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	testCoach(gen).WeeklyAnalysis(context.Background(), []models.WorkoutSession{sessionOn("a", 30, "Chest - Back")})
	if len(gen.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(gen.prompts))
	}
	p := gen.prompts[0]
	for _, want := range []string{
		"Date: 8/30/2025",
		"Focus: Chest - Back",
		"- Chest press dumbbell: 6x22kg, 9x22.5kg",
		`"Weekly Overview"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

// TestSuggestNext verifies only the last three sessions reach the prompt and the fallbacks.
func TestSuggestNext(t *testing.T) {
	sessions := []models.WorkoutSession{
		sessionOn("1", 1, "First"),
		sessionOn("2", 2, "Second"),
		sessionOn("3", 3, "Third"),
		sessionOn("4", 4, "Fourth"),
	}
	gen := &stubGenerator{reply: "Legs day"}
	if got := testCoach(gen).SuggestNext(context.Background(), sessions); got != "Legs day" {
		t.Errorf("reply = %q", got)
	}
	p := gen.prompts[0]
	if strings.Contains(p, "First") {
		t.Errorf("prompt includes the fourth-last session:\n%s", p)
	}
	if !strings.Contains(p, "2025-08-04T10:00:00.000Z: Fourth") {
		t.Errorf("prompt missing latest session line:\n%s", p)
	}

	if got := testCoach(&stubGenerator{}).SuggestNext(context.Background(), sessions); got != EmptySuggestion {
		t.Errorf("empty reply = %q", got)
	}
	if got := testCoach(&stubGenerator{err: errors.New("quota")}).SuggestNext(context.Background(), sessions); got != FailedSuggestion {
		t.Errorf("error reply = %q", got)
	}
}

// TestBoardSupersededResult verifies a late result from an older run is dropped.
func TestBoardSupersededResult(t *testing.T) {
	b := NewBoard()
	if got := b.Latest(); got.Loading || got.Text != "" {
		t.Errorf("empty board = %+v", got)
	}

	first := b.Begin()
	second := b.Begin()
	if !b.Latest().Loading {
		t.Error("board not loading after Begin")
	}
	if !b.Publish(second, "new") {
		t.Error("newest publish rejected")
	}
	if b.Publish(first, "stale") {
		t.Error("stale publish accepted")
	}
	got := b.Latest()
	if got.Text != "new" || got.Loading {
		t.Errorf("latest = %+v, want new, not loading", got)
	}
}

// TestBoardRefresh verifies background runs publish and clear the loading state.
func TestBoardRefresh(t *testing.T) {
	b := NewBoard()
	release := make(chan struct{})
	slow := b.Refresh(context.Background(), func(context.Context) string {
		<-release
		return "slow"
	})
	fast := b.Refresh(context.Background(), func(context.Context) string { return "fast" })

	<-fast
	if got := b.Latest(); got.Text != "fast" || got.Loading {
		t.Errorf("after fast = %+v", got)
	}
	close(release)
	<-slow
	if got := b.Latest(); got.Text != "fast" {
		t.Errorf("slow run overwrote newer result: %+v", got)
	}
}
