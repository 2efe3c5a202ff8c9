package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/ironprogress/internal/ingest"
	"github.com/claude/ironprogress/internal/models"
)

// Importer merges sessions into the journal. *journal.Journal satisfies it.
type Importer interface {
	Import(ctx context.Context, incoming []models.WorkoutSession) (int, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	dst Importer
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(dst Importer, log *slog.Logger) *Provider {
	return &Provider{dst: dst, log: log}
}

// Ingest parses a CSV export and merges its sessions. Sessions already
// imported are skipped because their ids are derived from their content.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		result.SetsReceived += s.SetCount()
	}
	if len(sessions) == 0 {
		result.Message = "no sessions found in export"
		return result, nil
	}

	added, err := p.dst.Import(ctx, sessions)
	if err != nil {
		return nil, fmt.Errorf("importing sessions: %w", err)
	}
	result.SessionsAdded = added
	result.Message = fmt.Sprintf("Imported %d new workouts.", added)

	p.log.Info("alpha export ingested",
		"sessions", result.SessionsReceived,
		"added", added,
		"sets", result.SetsReceived,
	)
	return result, nil
}
