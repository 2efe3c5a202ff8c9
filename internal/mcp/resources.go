package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/catalog"
	"github.com/mark3labs/mcp-go/mcp"
)

// recentDays is the window of the recent_sessions resource.
const recentDays = 14

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(analytics.LastDays(sessions, h.now(), recentDays))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// catalogEntry is one exercise_catalog item. MuscleGroup is empty for
// exercises outside the curated list.
type catalogEntry struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup,omitempty"`
	Logged      bool   `json:"logged"`
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	entries := []catalogEntry{}
	seen := make(map[string]bool)
	for _, name := range analytics.ExerciseNames(sessions) {
		group, _ := catalog.MuscleGroup(name)
		entries = append(entries, catalogEntry{Name: name, MuscleGroup: group, Logged: true})
		seen[name] = true
	}
	for _, d := range catalog.Definitions() {
		if !seen[d.Name] {
			entries = append(entries, catalogEntry{Name: d.Name, MuscleGroup: d.MuscleGroup})
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
