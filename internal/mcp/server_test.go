package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

// fakeSource is a DataSource over a fixed slice.
type fakeSource struct {
	sessions []models.WorkoutSession
	err      error
}

func (f fakeSource) Sessions(context.Context) ([]models.WorkoutSession, error) {
	return models.Clone(f.sessions), f.err
}

func testHandlers(ds DataSource) *handlers {
	return &handlers{
		ds:  ds,
		loc: time.UTC,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time { return testNow },
	}
}

func sampleSessions() []models.WorkoutSession {
	return []models.WorkoutSession{
		{
			ID:    "new",
			Date:  models.NewTimestamp(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
			Title: "Arms",
			Exercises: []models.ExerciseLog{
				{ExerciseName: "Curling", Sets: []models.ExerciseSet{{Reps: 10, Weight: 30}}},
			},
		},
		{
			ID:    "old",
			Date:  models.NewTimestamp(time.Date(2023, 12, 4, 10, 0, 0, 0, time.UTC)),
			Title: "Arms and traps",
			Exercises: []models.ExerciseLog{
				{ExerciseName: "Curling", Sets: []models.ExerciseSet{{Reps: 8, Weight: 35}}},
				{ExerciseName: "Traps", Sets: []models.ExerciseSet{{Reps: 25, Weight: 40}}},
			},
		},
	}
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestDefaultTimeRange verifies time range defaults and parsing.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "", 30, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(testNow) {
		t.Errorf("end = %v, want %v", end, testNow)
	}
	if got := end.Sub(start); got != 30*24*time.Hour {
		t.Errorf("default range = %v, want 720h", got)
	}

	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", 30, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if want := time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}

	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", 30, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", "", 30, testNow); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestListSessions verifies the default window, ordering and limit.
func TestListSessions(t *testing.T) {
	h := testHandlers(fakeSource{sessions: sampleSessions()})

	res, err := h.listSessions(context.Background(), callTool(map[string]any{"start": "2023-12-01"}))
	if err != nil {
		t.Fatal(err)
	}
	var got []models.WorkoutSession
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("ids = %v, want [new old]", got)
	}

	res, _ = h.listSessions(context.Background(), callTool(map[string]any{"start": "2023-12-01", "limit": float64(1)}))
	got = nil
	json.Unmarshal([]byte(resultText(t, res)), &got) //nolint:errcheck
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("limited = %v, want [new]", got)
	}

	// The 30-day default starts 2023-12-04 12:00, after the older session.
	res, _ = h.listSessions(context.Background(), callTool(nil))
	got = nil
	json.Unmarshal([]byte(resultText(t, res)), &got) //nolint:errcheck
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("default window = %v, want [new]", got)
	}

	// A bare end date includes sessions later that day.
	res, _ = h.listSessions(context.Background(), callTool(map[string]any{"start": "2023-12-01", "end": "2024-01-01"}))
	got = nil
	json.Unmarshal([]byte(resultText(t, res)), &got) //nolint:errcheck
	if len(got) != 2 || got[0].ID != "new" {
		t.Errorf("end-dated window = %v, want [new old]", got)
	}

	res, _ = h.listSessions(context.Background(), callTool(map[string]any{"start": "yesterday"}))
	if !res.IsError {
		t.Error("invalid start accepted")
	}
}

// TestSourceError verifies data source failures surface as tool errors.
func TestSourceError(t *testing.T) {
	h := testHandlers(fakeSource{err: errors.New("connection refused")})
	res, err := h.getStats(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !res.IsError {
		t.Error("IsError = false, want true")
	}
	if !strings.Contains(resultText(t, res), "connection refused") {
		t.Errorf("text = %q", resultText(t, res))
	}
}

// TestExerciseTools verifies list_exercises, get_progression and last_performance.
func TestExerciseTools(t *testing.T) {
	h := testHandlers(fakeSource{sessions: sampleSessions()})
	ctx := context.Background()

	res, _ := h.listExercises(ctx, callTool(nil))
	var names []string
	json.Unmarshal([]byte(resultText(t, res)), &names) //nolint:errcheck
	if strings.Join(names, ",") != "Curling,Traps" {
		t.Errorf("names = %v", names)
	}

	res, _ = h.getProgression(ctx, callTool(map[string]any{"exercise": "Curling"}))
	var points []models.ProgressPoint
	json.Unmarshal([]byte(resultText(t, res)), &points) //nolint:errcheck
	if len(points) != 2 || points[0].Volume != 280 || points[1].MaxWeight != 30 {
		t.Errorf("progression = %+v", points)
	}

	res, _ = h.getProgression(ctx, callTool(nil))
	if !res.IsError {
		t.Error("missing exercise accepted")
	}

	res, _ = h.lastPerformance(ctx, callTool(map[string]any{"exercise": "Traps"}))
	var perf analytics.Performance
	json.Unmarshal([]byte(resultText(t, res)), &perf) //nolint:errcheck
	if perf.SessionID != "old" || len(perf.Sets) != 1 {
		t.Errorf("last performance = %+v", perf)
	}

	res, _ = h.lastPerformance(ctx, callTool(map[string]any{"exercise": "Squat"}))
	if !res.IsError {
		t.Error("unknown exercise did not error")
	}
}

// TestGetStats verifies lifetime totals and the weekly count.
func TestGetStats(t *testing.T) {
	h := testHandlers(fakeSource{sessions: sampleSessions()})
	res, _ := h.getStats(context.Background(), callTool(nil))
	var got stats
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalSessions != 2 || got.TotalSets != 3 {
		t.Errorf("totals = %+v", got.Summary)
	}
	if got.LifetimeVolume != 300+280+1000 {
		t.Errorf("lifetime volume = %g, want 1580", got.LifetimeVolume)
	}
	// 2024-01-03 is a Wednesday; Monday 2024-01-01 starts the week.
	if got.SessionsThisWeek != 1 {
		t.Errorf("sessions this week = %d, want 1", got.SessionsThisWeek)
	}
}

// TestExportLedger verifies the ledger text is returned newest first.
func TestExportLedger(t *testing.T) {
	h := testHandlers(fakeSource{sessions: sampleSessions()})
	res, _ := h.exportLedger(context.Background(), callTool(nil))
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Monday, 01/01/24 (Arms)") {
		t.Errorf("ledger starts with %q", strings.SplitN(text, "\n", 2)[0])
	}
	if strings.Index(text, "Arms and traps") < strings.Index(text, "(Arms)") {
		t.Error("older session rendered first")
	}
}

// TestResources verifies both resources return JSON for the requested URI.
func TestResources(t *testing.T) {
	h := testHandlers(fakeSource{sessions: sampleSessions()})
	ctx := context.Background()

	var req mcp.ReadResourceRequest
	req.Params.URI = "ironprogress://recent_sessions"
	contents, err := h.recentSessions(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	tc := contents[0].(mcp.TextResourceContents)
	if tc.URI != req.Params.URI || tc.MIMEType != "application/json" {
		t.Errorf("contents = %+v", tc)
	}
	var recent []models.WorkoutSession
	json.Unmarshal([]byte(tc.Text), &recent) //nolint:errcheck
	if len(recent) != 1 || recent[0].ID != "new" {
		t.Errorf("recent = %v, want [new]", recent)
	}

	req.Params.URI = "ironprogress://exercise_catalog"
	contents, err = h.exerciseCatalog(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	var entries []catalogEntry
	json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &entries) //nolint:errcheck
	if len(entries) < 2 || entries[0].Name != "Curling" || !entries[0].Logged {
		t.Fatalf("entries = %+v", entries)
	}
	var deadlift bool
	for _, e := range entries {
		if e.Name == "Deadlift" {
			deadlift = e.MuscleGroup == "Back/Legs" && !e.Logged
		}
	}
	if !deadlift {
		t.Error("catalog missing unlogged Deadlift with its muscle group")
	}
}

// TestNewRegistersEverything verifies the server builds with a journal-less source.
func TestNewRegistersEverything(t *testing.T) {
	s := New(fakeSource{}, "test", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
}
