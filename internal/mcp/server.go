package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/freeplans/internal/ingest/program"
	"github.com/claude/freeplans/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return storage.DevUserID
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// Parsing always runs on the local engine; stored templates come from ds.
func New(ds DataSource, engine *program.Engine, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FreePlans", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FreePlans workout program server. Parse workout program text into structured templates and browse the templates imported by the user. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, engine: engine, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolParseWorkoutText, Handler: h.parseWorkoutText},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetTemplate, Handler: h.getTemplate},
		server.ServerTool{Tool: toolListImports, Handler: h.listImports},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentTemplates, Handler: h.recentTemplates},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds     DataSource
	engine *program.Engine
	log    *slog.Logger
}

// --- Resource definitions ---

var resRecentTemplates = mcp.NewResource(
	"freeplans://recent_templates",
	"Recent Templates",
	mcp.WithResourceDescription("The 20 most recently imported workout templates"),
	mcp.WithMIMEType("application/json"),
)
