package mcp

import (
	"context"
	"time"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/transfer"
	"github.com/mark3labs/mcp-go/mcp"
)

const dateOnly = "2006-01-02"

// defaultTimeRange returns start/end, defaulting to the given number of days
// before end. An empty end means now; a bare end date means the end of that day.
func defaultTimeRange(startStr, endStr string, days int, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// A bare date covers the whole day.
		if len(endStr) == len(dateOnly) {
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	ts, err := models.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.Time, nil
}

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List logged workout sessions, newest first. Each session has a title, a date and exercises with sets of reps and weight (kg)."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days before end.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to 20.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List every distinct exercise name that appears in the log, sorted alphabetically."),
)

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Session-by-session progression for one exercise: total volume (reps x kg) and heaviest set weight, oldest first. Sessions where the exercise had no sets are skipped."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name as returned by list_exercises")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Lifetime totals: session count, set count, lifetime volume in kg, last workout date and sessions this week."),
)

var toolExportLedger = mcp.NewTool("export_ledger",
	mcp.WithDescription("The full log as a plain-text ledger, newest session first, one line of sets per exercise."),
)

var toolLastPerformance = mcp.NewTool("last_performance",
	mcp.WithDescription("The sets recorded the last time an exercise was performed."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name")),
)

// --- Tool handlers ---

func (h *handlers) sessions(ctx context.Context, tool string) ([]models.WorkoutSession, *mcp.CallToolResult) {
	sessions, err := h.ds.Sessions(ctx)
	if err != nil {
		h.log.Error("mcp "+tool, "error", err)
		return nil, mcp.NewToolResultError("loading sessions failed: " + err.Error())
	}
	return sessions, nil
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30, h.now())
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	sessions, errResult := h.sessions(ctx, "list_sessions")
	if errResult != nil {
		return errResult, nil
	}

	// Window is half-open; include sessions dated exactly at end.
	window := analytics.Window(sessions, start, end.Add(time.Nanosecond))
	models.SortByDate(window, false)
	if len(window) > limit {
		window = window[:limit]
	}

	result, err := mcp.NewToolResultJSON(window)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, errResult := h.sessions(ctx, "list_exercises")
	if errResult != nil {
		return errResult, nil
	}
	result, err := mcp.NewToolResultJSON(analytics.ExerciseNames(sessions))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	sessions, errResult := h.sessions(ctx, "get_progression")
	if errResult != nil {
		return errResult, nil
	}
	result, err := mcp.NewToolResultJSON(analytics.Progression(sessions, exercise))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// stats is the get_stats payload.
type stats struct {
	analytics.Summary
	SessionsThisWeek int `json:"sessions_this_week"`
}

func (h *handlers) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, errResult := h.sessions(ctx, "get_stats")
	if errResult != nil {
		return errResult, nil
	}
	result, err := mcp.NewToolResultJSON(stats{
		Summary:          analytics.Summarize(sessions),
		SessionsThisWeek: analytics.SessionsThisWeek(sessions, h.now().In(h.loc)),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) exportLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, errResult := h.sessions(ctx, "export_ledger")
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(transfer.Ledger(sessions, h.loc)), nil
}

func (h *handlers) lastPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	sessions, errResult := h.sessions(ctx, "last_performance")
	if errResult != nil {
		return errResult, nil
	}
	perf, ok := analytics.LastPerformance(sessions, exercise)
	if !ok {
		return mcp.NewToolResultError("no recorded sets for " + exercise), nil
	}
	result, err := mcp.NewToolResultJSON(perf)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
