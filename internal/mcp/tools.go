package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/freeplans/internal/storage"
)

// --- Tool definitions ---

var toolParseWorkoutText = mcp.NewTool("parse_workout_text",
	mcp.WithDescription("Parse the text of a workout program into a structured template: days, exercises with sets/reps/rest, inferred equipment, difficulty and goals. Always returns a template; low confidence or method 'fallback' means the text could not be read and a generic program was substituted. Nothing is stored."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Program text, one exercise per line (e.g. 'Day 1: Upper\\nBench Press 4x8 90s')")),
	mcp.WithString("title", mcp.Description("Document title or file name, used for the template name and the fallback program")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List the user's imported workout templates, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of templates. Defaults to 20."), mcp.Min(1), mcp.Max(200)),
)

var toolGetTemplate = mcp.NewTool("get_template",
	mcp.WithDescription("Get a full imported workout template including its schedule."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template ID (UUID) as returned by list_templates")),
)

var toolListImports = mcp.NewTool("list_imports",
	mcp.WithDescription("Recent document imports with status, exercise counts, confidence and errors."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of entries. Defaults to 20."), mcp.Min(1), mcp.Max(200)),
)

// --- Tool handlers ---

func (h *handlers) parseWorkoutText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	title := req.GetString("title", "")

	tpl := h.engine.Parse(text, title)
	h.log.Info("mcp parse_workout_text",
		"title", title,
		"method", tpl.Method,
		"confidence", tpl.Confidence,
		"warnings", len(tpl.Warnings),
	)

	result, err := mcp.NewToolResultJSON(tpl)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", 20))

	templates, err := h.ds.ListTemplates(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid template ID: " + raw), nil
	}

	tpl, err := h.ds.GetTemplate(ctx, UserIDFromContext(ctx), id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("template not found: " + raw), nil
	}
	if err != nil {
		h.log.Error("mcp get_template", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(tpl)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listImports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", 20))

	logs, err := h.ds.QueryImportLogs(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp list_imports", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func clampLimit(n int) int {
	switch {
	case n < 1:
		return 20
	case n > 200:
		return 200
	}
	return n
}
