package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListTemplates(ctx context.Context, userID, limit int) ([]models.TemplateSummary, error)
	GetTemplate(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutTemplate, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
