// Package alpha imports Alpha Progression CSV exports as workout sessions.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/ironprogress/internal/models"
	"github.com/google/uuid"
)

// sessionNamespace scopes the name-based ids given to imported sessions, so
// the same export always yields the same ids.
var sessionNamespace = uuid.MustParse("6f1c9a52-3b0e-4d8e-9a47-1e2f6c4b7d10")

var (
	// sessionHeaderRe matches: "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// exerciseHeaderRe matches: "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// setDataRe matches: 1;115;8;1
	setDataRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// columnHeaderRe matches: #;KG;REPS;RIR
	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

// exercise collects one exercise block before it becomes an ExerciseLog.
type exercise struct {
	name       string
	equipment  string
	modifiers  string
	targetReps int
	bodyweight bool
	sets       []models.ExerciseSet
}

func (e *exercise) log() models.ExerciseLog {
	var notes []string
	if e.equipment != "" {
		notes = append(notes, e.equipment)
	}
	if e.bodyweight {
		notes = append(notes, "bodyweight plus")
	}
	if e.targetReps > 0 {
		notes = append(notes, fmt.Sprintf("target %d reps", e.targetReps))
	}
	if e.modifiers != "" {
		notes = append(notes, e.modifiers)
	}
	sets := e.sets
	if sets == nil {
		sets = []models.ExerciseSet{}
	}
	return models.ExerciseLog{
		ExerciseName: e.name,
		Sets:         sets,
		Notes:        strings.Join(notes, " · "),
	}
}

// parser is the line-oriented state machine over an export.
type parser struct {
	sessions []models.WorkoutSession
	current  *models.WorkoutSession
	exercise *exercise
}

func (p *parser) flushExercise() {
	if p.current != nil && p.exercise != nil {
		p.current.Exercises = append(p.current.Exercises, p.exercise.log())
	}
	p.exercise = nil
}

func (p *parser) flushSession() {
	p.flushExercise()
	if p.current != nil {
		p.sessions = append(p.sessions, *p.current)
	}
	p.current = nil
}

// Parse reads an Alpha Progression CSV export. Only working sets are kept;
// warmups are dropped. Equipment, bodyweight-plus loading, the target rep
// count and set modifiers are carried in the exercise notes. Session ids are
// derived from the session date and name.
func Parse(r io.Reader) ([]models.WorkoutSession, error) {
	scanner := bufio.NewScanner(r)
	p := &parser{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Blank line = session boundary
		if line == "" {
			p.flushSession()
			continue
		}

		if columnHeaderRe.MatchString(line) {
			continue
		}

		if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
			p.flushSession()
			date, err := parseSessionDate(m[2])
			if err != nil {
				return nil, fmt.Errorf("parsing session date %q: %w", m[2], err)
			}
			p.current = &models.WorkoutSession{
				ID:    sessionID(date, m[1]),
				Date:  models.NewTimestamp(date),
				Title: m[1],
			}
			continue
		}

		if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
			if p.current == nil {
				return nil, fmt.Errorf("exercise without session: %q", line)
			}
			p.flushExercise()
			targetReps, err := strconv.Atoi(m[4])
			if err != nil {
				return nil, fmt.Errorf("bad target reps in %q: %w", line, err)
			}
			p.exercise = &exercise{
				name:       strings.TrimSpace(m[2]),
				equipment:  strings.TrimSpace(m[3]),
				modifiers:  strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[5]), "·")),
				targetReps: targetReps,
			}
			continue
		}

		if m := setDataRe.FindStringSubmatch(line); m != nil {
			if p.exercise == nil {
				return nil, fmt.Errorf("set data without exercise: %q", line)
			}
			weight, isBW := parseWeight(m[2])
			reps, err := strconv.Atoi(m[3])
			if err != nil {
				return nil, fmt.Errorf("bad reps in %q: %w", line, err)
			}
			if isBW {
				p.exercise.bodyweight = true
			}
			p.exercise.sets = append(p.exercise.sets, models.ExerciseSet{Reps: reps, Weight: weight})
			continue
		}

		// Unknown lines (notes, app metadata) are ignored.
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	p.flushSession()
	return p.sessions, nil
}

// sessionID returns a stable uuid for a session so re-importing the same
// export merges as a no-op.
func sessionID(date time.Time, name string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(date.Format(time.RFC3339)+"|"+name)).String()
}

// parseSessionDate parses "2026-02-19 4:54" or "2026-02-19 16:54".
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseWeight handles European decimals and bodyweight-plus notation.
// "+35" -> (35, true), "102,5" -> (102.5, false), "+0" -> (0, true)
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		return parseEuropeanFloat(s[1:]), true
	}
	return parseEuropeanFloat(s), false
}

// parseEuropeanFloat converts "102,5" to 102.5. Unparseable input is 0.
func parseEuropeanFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
