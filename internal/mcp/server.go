package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered. Ledger
// and coach dates are rendered in loc (UTC when nil).
func New(ds DataSource, version string, loc *time.Location, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronProgress", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronProgress strength-training log. List logged sessions, exercise progression, lifetime totals and the last performance of an exercise. Weights are in kilograms; volume is reps times weight."),
	)

	if loc == nil {
		loc = time.UTC
	}
	h := &handlers{ds: ds, loc: loc, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
		server.ServerTool{Tool: toolExportLedger, Handler: h.exportLedger},
		server.ServerTool{Tool: toolLastPerformance, Handler: h.lastPerformance},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	loc *time.Location
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"ironprogress://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Sessions logged in the last 14 days, oldest first"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"ironprogress://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise name in the log with its muscle group when known"),
	mcp.WithMIMEType("application/json"),
)
