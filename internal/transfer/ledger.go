package transfer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/claude/ironprogress/internal/models"
)

const (
	ledgerDateLayout = "Monday, 02/01/06"
	ledgerSeparator  = "_______"
)

// WriteLedger writes the human-readable text ledger, newest session first.
// Dates are rendered in loc (UTC when nil). The output cannot be re-imported.
func WriteLedger(w io.Writer, sessions []models.WorkoutSession, loc *time.Location) error {
	if _, err := io.WriteString(w, Ledger(sessions, loc)); err != nil {
		return fmt.Errorf("writing ledger export: %w", err)
	}
	return nil
}

// Ledger renders the text ledger as a string.
func Ledger(sessions []models.WorkoutSession, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	sorted := append([]models.WorkoutSession(nil), sessions...)
	models.SortByDate(sorted, false)

	blocks := make([]string, 0, len(sorted))
	for _, s := range sorted {
		header := fmt.Sprintf("%s (%s)", s.Date.In(loc).Format(ledgerDateLayout), s.Title)
		exercises := make([]string, 0, len(s.Exercises))
		for _, e := range s.Exercises {
			exercises = append(exercises, ledgerExercise(e))
		}
		blocks = append(blocks, header+"\n"+strings.Join(exercises, "\n")+"\n"+ledgerSeparator)
	}
	return strings.Join(blocks, "\n\n")
}

// ledgerExercise renders "Name:\n10 (20 kg) - 8 (22.5 kg)" plus an optional note line.
func ledgerExercise(e models.ExerciseLog) string {
	sets := make([]string, 0, len(e.Sets))
	for _, s := range e.Sets {
		sets = append(sets, fmt.Sprintf("%d (%s kg)", s.Reps, formatWeight(s.Weight)))
	}
	out := e.ExerciseName + ":\n" + strings.Join(sets, " - ")
	if e.Notes != "" {
		out += "\nNote: " + e.Notes
	}
	return out
}

// formatWeight prints the shortest decimal form: 20, 22.5, 17.25.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
