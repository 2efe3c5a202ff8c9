package coach

import (
	"context"
	"sync"
	"time"
)

// Result is the most recently published coaching text.
type Result struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
	Loading   bool      `json:"loading"`
}

// Board holds the latest coaching result. Each run takes a ticket; a result
// is only published if no newer run has started since, so a slow earlier
// call can never replace a later one.
type Board struct {
	mu        sync.Mutex
	ticket    uint64
	published uint64
	text      string
	updatedAt time.Time
	now       func() time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Begin starts a run and returns its ticket.
func (b *Board) Begin() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticket++
	return b.ticket
}

// Publish stores text for ticket t. It reports false, and drops the text,
// when a newer run has begun.
func (b *Board) Publish(t uint64, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t != b.ticket {
		return false
	}
	b.published = t
	b.text = text
	b.updatedAt = b.now()
	return true
}

// Latest returns the current result. Loading is true while the newest run
// has not published.
func (b *Board) Latest() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Result{
		Text:      b.text,
		UpdatedAt: b.updatedAt,
		Loading:   b.ticket != b.published,
	}
}

// Refresh runs fn in the background under a new ticket and publishes its
// result. The returned channel is closed once fn returns.
func (b *Board) Refresh(ctx context.Context, fn func(context.Context) string) <-chan struct{} {
	t := b.Begin()
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Publish(t, fn(ctx))
	}()
	return done
}
