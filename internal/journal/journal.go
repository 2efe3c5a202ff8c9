// Package journal owns the in-memory session collection and keeps it in sync
// with a storage.Store. Every mutation persists the next collection first and
// swaps it in only after the save succeeded.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/storage"
	"github.com/claude/ironprogress/internal/transfer"
)

var (
	ErrDuplicateID = errors.New("session id already exists")
	ErrNotFound    = errors.New("session not found")
)

// Journal is safe for concurrent use.
type Journal struct {
	mu       sync.RWMutex
	store    storage.Store
	sessions []models.WorkoutSession
	log      *slog.Logger
}

// Open loads the stored collection. An absent or undecodable document falls
// back to seed; a store I/O failure is returned.
func Open(ctx context.Context, store storage.Store, seed []models.WorkoutSession, log *slog.Logger) (*Journal, error) {
	j := &Journal{store: store, log: log}

	data, err := store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoDocument):
		log.Info("no stored sessions, starting from seed", "seed", len(seed))
		j.sessions = models.Clone(seed)
	case err != nil:
		return nil, fmt.Errorf("loading sessions: %w", err)
	default:
		sessions, derr := transfer.DecodeDocument(data)
		if derr != nil {
			log.Warn("stored sessions unreadable, starting from seed", "error", derr)
			j.sessions = models.Clone(seed)
		} else {
			j.sessions = sessions
		}
	}

	log.Info("journal opened", "sessions", len(j.sessions))
	return j, nil
}

// Sessions returns a copy of the collection in stored order.
func (j *Journal) Sessions() []models.WorkoutSession {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return models.Clone(j.sessions)
}

// Len returns the number of sessions.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.sessions)
}

// Get returns the session with the given id.
func (j *Journal) Get(id string) (models.WorkoutSession, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, s := range j.sessions {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return models.WorkoutSession{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Replace swaps the whole collection after validating every session.
func (j *Journal) Replace(ctx context.Context, sessions []models.WorkoutSession) error {
	seen := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.commit(ctx, models.Clone(sessions))
}

// Append adds a session to the end of the collection.
func (j *Journal) Append(ctx context.Context, s models.WorkoutSession) error {
	if err := s.Validate(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, existing := range j.sessions {
		if existing.ID == s.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
	}

	next := make([]models.WorkoutSession, 0, len(j.sessions)+1)
	next = append(next, j.sessions...)
	next = append(next, s.Clone())
	if err := j.commit(ctx, next); err != nil {
		return err
	}
	j.log.Info("session logged", "id", s.ID, "title", s.Title, "exercises", len(s.Exercises))
	return nil
}

// Remove deletes the session with the given id.
func (j *Journal) Remove(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	next := make([]models.WorkoutSession, 0, len(j.sessions))
	for _, s := range j.sessions {
		if s.ID != id {
			next = append(next, s)
		}
	}
	if len(next) == len(j.sessions) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := j.commit(ctx, next); err != nil {
		return err
	}
	j.log.Info("session deleted", "id", id)
	return nil
}

// Import merges incoming sessions by id and returns how many were added.
// Nothing is written when every incoming id is already present.
func (j *Journal) Import(ctx context.Context, incoming []models.WorkoutSession) (int, error) {
	for _, s := range incoming {
		if err := s.Validate(); err != nil {
			return 0, err
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	merged, added := transfer.Merge(j.sessions, models.Clone(incoming))
	if added == 0 {
		j.log.Info("import added nothing", "incoming", len(incoming))
		return 0, nil
	}
	if err := j.commit(ctx, merged); err != nil {
		return 0, err
	}
	j.log.Info("sessions imported", "incoming", len(incoming), "added", added, "total", len(merged))
	return added, nil
}

// Log builds the draft and appends the resulting session.
func (j *Journal) Log(ctx context.Context, d *Draft, now time.Time) (models.WorkoutSession, error) {
	s, err := d.Build(now)
	if err != nil {
		return models.WorkoutSession{}, err
	}
	if err := j.Append(ctx, s); err != nil {
		return models.WorkoutSession{}, err
	}
	return s, nil
}

// commit persists next and makes it current. Callers hold j.mu.
func (j *Journal) commit(ctx context.Context, next []models.WorkoutSession) error {
	data, err := transfer.EncodeDocument(next)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}
	if err := j.store.Save(ctx, data); err != nil {
		return fmt.Errorf("saving sessions: %w", err)
	}
	j.sessions = next
	return nil
}
