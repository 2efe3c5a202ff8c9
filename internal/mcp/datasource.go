package mcp

import (
	"context"

	"github.com/claude/ironprogress/internal/journal"
	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/remote"
)

// DataSource abstracts where MCP tools read sessions from: the local journal
// or another instance over its REST export.
type DataSource interface {
	Sessions(ctx context.Context) ([]models.WorkoutSession, error)
}

type journalSource struct {
	j *journal.Journal
}

// FromJournal reads from a local journal.
func FromJournal(j *journal.Journal) DataSource {
	return journalSource{j: j}
}

func (s journalSource) Sessions(context.Context) ([]models.WorkoutSession, error) {
	return s.j.Sessions(), nil
}

type remoteSource struct {
	c *remote.Client
}

// FromRemote reads from another ironprogress server on every call.
func FromRemote(c *remote.Client) DataSource {
	return remoteSource{c: c}
}

func (s remoteSource) Sessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return s.c.FetchExport(ctx)
}
