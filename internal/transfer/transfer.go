// Package transfer merges externally supplied session collections into the
// local one and serializes the collection for backup and reading.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/claude/ironprogress/internal/models"
)

// ErrMalformed is returned when input is not a JSON array of session objects.
var ErrMalformed = errors.New("malformed session document")

// Merge adds every incoming session whose id is not already present locally and
// returns the result sorted ascending by date, plus the number of sessions added.
// Local sessions are never removed or replaced. Duplicate ids inside incoming
// are added once (first occurrence wins).
func Merge(local, incoming []models.WorkoutSession) ([]models.WorkoutSession, int) {
	seen := make(map[string]struct{}, len(local)+len(incoming))
	for _, s := range local {
		seen[s.ID] = struct{}{}
	}

	merged := make([]models.WorkoutSession, 0, len(local)+len(incoming))
	merged = append(merged, local...)

	added := 0
	for _, s := range incoming {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		merged = append(merged, s)
		added++
	}

	models.SortByDate(merged, true)
	return merged, added
}

// ParseSessions decodes an imported document. The top level must be a JSON
// array whose elements are all objects, and every session must validate.
// Nothing is returned unless the whole document is acceptable.
func ParseSessions(data []byte) ([]models.WorkoutSession, error) {
	var raw []json.RawMessage
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sessions := make([]models.WorkoutSession, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformed, i)
		}
		var s models.WorkoutSession
		if err := json.Unmarshal(elem, &s); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformed, i, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformed, i, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// ReadSessions is ParseSessions over a reader.
func ReadSessions(r io.Reader) ([]models.WorkoutSession, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	return ParseSessions(data)
}

// DecodeDocument decodes a stored collection without validating it.
func DecodeDocument(data []byte) ([]models.WorkoutSession, error) {
	var sessions []models.WorkoutSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if sessions == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformed)
	}
	return sessions, nil
}

// EncodeDocument encodes the collection compactly for storage.
func EncodeDocument(sessions []models.WorkoutSession) ([]byte, error) {
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("encoding sessions: %w", err)
	}
	return data, nil
}

// WriteJSON writes the full collection, in its stored order, indented for reading.
func WriteJSON(w io.Writer, sessions []models.WorkoutSession) error {
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sessions); err != nil {
		return fmt.Errorf("writing JSON export: %w", err)
	}
	return nil
}

// ExportFileName returns the download name for an export made at now.
// kind is "json" for the backup document and "text" for the ledger.
func ExportFileName(kind string, now time.Time) string {
	day := now.Format("2006-01-02")
	if kind == "text" {
		return "ironprogress_logs_" + day + ".txt"
	}
	return "ironprogress_backup_" + day + ".json"
}
