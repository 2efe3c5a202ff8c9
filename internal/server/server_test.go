package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/ironprogress/internal/coach"
	"github.com/claude/ironprogress/internal/ingest/alpha"
	"github.com/claude/ironprogress/internal/journal"
	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/storage"
)

var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

type fixedGenerator string

func (g fixedGenerator) Generate(context.Context, string) (string, error) {
	return string(g), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedSession(id string, date time.Time, title string, exercises ...models.ExerciseLog) models.WorkoutSession {
	return models.WorkoutSession{ID: id, Date: models.NewTimestamp(date), Title: title, Exercises: exercises}
}

// newTestServer returns a server over a file store seeded with two sessions.
func newTestServer(t *testing.T) (*Server, *journal.Journal) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "sessions")
	if err != nil {
		t.Fatal(err)
	}
	seed := []models.WorkoutSession{
		seedSession("new", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "Arms",
			models.ExerciseLog{ExerciseName: "Curling machine", Sets: []models.ExerciseSet{{Reps: 10, Weight: 30}}},
		),
		seedSession("old", time.Date(2023, 12, 4, 10, 0, 0, 0, time.UTC), "Shoulder, Bicep, Traps",
			models.ExerciseLog{ExerciseName: "Curling machine", Sets: []models.ExerciseSet{{Reps: 8, Weight: 35}}},
			models.ExerciseLog{ExerciseName: "Traps machine", Sets: []models.ExerciseSet{{Reps: 25, Weight: 40}}},
		),
	}
	log := discardLogger()
	j, err := journal.Open(context.Background(), store, seed, log)
	if err != nil {
		t.Fatal(err)
	}
	c := coach.New(fixedGenerator("Solid week."), time.UTC, log)
	s := New(j, c, alpha.NewProvider(j, log), Options{Location: time.UTC, CoachWindowDays: 7}, log)
	s.now = func() time.Time { return testNow }
	return s, j
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return v
}

// TestListSessionsOrder verifies stored, ascending and descending listings.
func TestListSessionsOrder(t *testing.T) {
	s, _ := newTestServer(t)
	for order, want := range map[string]string{"": "new", "asc": "old", "desc": "new"} {
		rec := do(t, s, http.MethodGet, "/api/v1/sessions?order="+order, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("order %q: status = %d", order, rec.Code)
		}
		sessions := decode[[]models.WorkoutSession](t, rec)
		if len(sessions) != 2 || sessions[0].ID != want {
			t.Errorf("order %q: first = %v, want %s", order, sessions, want)
		}
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/sessions?order=random", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad order status = %d, want 400", rec.Code)
	}
}

// TestGetSession verifies lookup by id and 404.
func TestGetSession(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/sessions/old", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[models.WorkoutSession](t, rec); got.Title != "Shoulder, Bicep, Traps" {
		t.Errorf("title = %q", got.Title)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/sessions/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

// TestLogSession verifies the server assigns an id and rejects incomplete sessions.
func TestLogSession(t *testing.T) {
	s, j := newTestServer(t)
	body := `{"title":"Legs","exercises":[{"exerciseName":"Squat smith machine","sets":[{"reps":10,"weight":60}]}]}`
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[models.WorkoutSession](t, rec)
	if got.ID == "" {
		t.Error("no id assigned")
	}
	if want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("date = %v, want %v", got.Date, want)
	}
	if j.Len() != 3 {
		t.Errorf("journal len = %d, want 3", j.Len())
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/sessions", `{"title":"","exercises":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty session status = %d, want 400", rec.Code)
	}
	negative := `{"title":"x","exercises":[{"exerciseName":"y","sets":[{"reps":-1,"weight":1}]}]}`
	if rec := do(t, s, http.MethodPost, "/api/v1/sessions", negative); rec.Code != http.StatusBadRequest {
		t.Errorf("negative reps status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/sessions", `{`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", rec.Code)
	}
}

// TestDeleteRequiresConfirm verifies the confirmation gate and deletion.
func TestDeleteRequiresConfirm(t *testing.T) {
	s, j := newTestServer(t)
	if rec := do(t, s, http.MethodDelete, "/api/v1/sessions/old", ""); rec.Code != http.StatusConflict {
		t.Errorf("unconfirmed status = %d, want 409", rec.Code)
	}
	if j.Len() != 2 {
		t.Fatal("unconfirmed delete mutated the journal")
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/sessions/old?confirm=true", ""); rec.Code != http.StatusOK {
		t.Errorf("confirmed status = %d", rec.Code)
	}
	if j.Len() != 1 {
		t.Errorf("len = %d, want 1", j.Len())
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/sessions/old?confirm=true", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

// TestImportJSON verifies confirmation, merge counts and malformed input.
func TestImportJSON(t *testing.T) {
	s, j := newTestServer(t)
	body := `[{"id":"old","date":"2023-12-04","title":"dup","exercises":[]},{"id":"mid","date":"2023-12-20","title":"Mid","exercises":[]}]`

	if rec := do(t, s, http.MethodPost, "/api/v1/import", body); rec.Code != http.StatusConflict {
		t.Errorf("unconfirmed status = %d, want 409", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/import?confirm=true", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	res := decode[map[string]any](t, rec)
	if res["added"] != float64(1) || res["message"] != "Imported 1 new workouts." {
		t.Errorf("result = %v", res)
	}
	if got := j.Sessions(); len(got) != 3 || got[1].ID != "mid" {
		t.Errorf("sessions after import = %v", got)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/import?confirm=true", `{"id":"x"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("object import status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/import?confirm=true&format=xml", `[]`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", rec.Code)
	}
	if j.Len() != 3 {
		t.Errorf("rejected imports changed the journal: len = %d", j.Len())
	}
}

// TestImportAlpha verifies CSV exports merge through the alpha provider.
func TestImportAlpha(t *testing.T) {
	s, j := newTestServer(t)
	csv := `"Push";"2024-01-02 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
`
	rec := do(t, s, http.MethodPost, "/api/v1/import?confirm=true&format=alpha", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if j.Len() != 3 {
		t.Errorf("len = %d, want 3", j.Len())
	}
	do(t, s, http.MethodPost, "/api/v1/import?confirm=true&format=alpha", csv)
	if j.Len() != 3 {
		t.Errorf("re-import duplicated sessions: len = %d", j.Len())
	}
}

// TestExports verifies both download formats and their file names.
func TestExports(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/export.json", "")
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "ironprogress_backup_2024-01-03.json") {
		t.Errorf("json disposition = %q", cd)
	}
	sessions := decode[[]models.WorkoutSession](t, rec)
	if len(sessions) != 2 || sessions[0].ID != "new" {
		t.Errorf("export = %v", sessions)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/export.txt", "")
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "ironprogress_logs_2024-01-03.txt") {
		t.Errorf("text disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Monday, 01/01/24 (Arms)\nCurling machine:\n10 (30 kg)") {
		t.Errorf("ledger = %q", rec.Body.String())
	}
}

// TestAnalyticsEndpoints verifies the read-only views.
func TestAnalyticsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	names := decode[[]string](t, do(t, s, http.MethodGet, "/api/v1/exercises", ""))
	if strings.Join(names, ",") != "Curling machine,Traps machine" {
		t.Errorf("exercises = %v", names)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/progression?exercise=Curling+machine", "")
	points := decode[[]models.ProgressPoint](t, rec)
	if len(points) != 2 || points[0].MaxWeight != 35 || points[1].Volume != 300 {
		t.Errorf("progression = %+v", points)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/progression", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing exercise status = %d", rec.Code)
	}

	stats := decode[map[string]any](t, do(t, s, http.MethodGet, "/api/v1/stats", ""))
	if stats["total_sessions"] != float64(2) || stats["total_sets"] != float64(3) {
		t.Errorf("stats = %v", stats)
	}
	if stats["lifetime_volume_kg"] != float64(300+280+1000) {
		t.Errorf("volume = %v", stats["lifetime_volume_kg"])
	}
	if stats["sessions_this_week"] != float64(1) {
		t.Errorf("this week = %v", stats["sessions_this_week"])
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/last?name=Curling+machine", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("last status = %d", rec.Code)
	}
	if got := decode[map[string]any](t, rec); got["session_id"] != "new" {
		t.Errorf("last performance = %v", got)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/exercises/last?name=Run", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown exercise status = %d", rec.Code)
	}

	defs := decode[[]models.ExerciseDefinition](t, do(t, s, http.MethodGet, "/api/v1/catalog", ""))
	if len(defs) == 0 {
		t.Error("empty catalog")
	}
}

// TestCoachEndpoints verifies the synchronous and background coach routes.
func TestCoachEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	got := decode[map[string]any](t, do(t, s, http.MethodGet, "/api/v1/coach/weekly", ""))
	if got["text"] != "Solid week." || got["days"] != float64(7) {
		t.Errorf("weekly = %v", got)
	}
	got = decode[map[string]any](t, do(t, s, http.MethodGet, "/api/v1/coach/weekly?days=1", ""))
	if got["text"] != coach.NoWorkoutsText {
		t.Errorf("empty window = %v", got)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/coach/weekly?days=-2", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad days status = %d", rec.Code)
	}

	next := decode[map[string]string](t, do(t, s, http.MethodGet, "/api/v1/coach/next", ""))
	if next["text"] != "Solid week." {
		t.Errorf("next = %v", next)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/coach/refresh", ""); rec.Code != http.StatusAccepted {
		t.Errorf("refresh status = %d", rec.Code)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		latest := decode[coach.Result](t, do(t, s, http.MethodGet, "/api/v1/coach/latest", ""))
		if !latest.Loading && latest.Text == "Solid week." {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("refresh never published: %+v", latest)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestCORSPreflight verifies OPTIONS requests short-circuit with the CORS headers.
func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/api/v1/sessions/old", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Errorf("allow methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}
