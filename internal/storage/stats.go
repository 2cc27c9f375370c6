package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's templates and imports.
type DataStats struct {
	TotalTemplates    int64        `json:"total_templates"`
	TotalExercises    int64        `json:"total_exercises"`
	TotalImports      int64        `json:"total_imports"`
	FailedImports     int64        `json:"failed_imports"`
	FirstImport       *time.Time   `json:"first_import"`
	LastImport        *time.Time   `json:"last_import"`
	TemplatesByMethod []MethodStat `json:"templates_by_method"`
}

// MethodStat summarizes the templates produced by one extraction method.
type MethodStat struct {
	Method        string  `json:"method"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{TemplatesByMethod: []MethodStat{}}

	// Templates and the exercises in their schedules
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(
			(SELECT COALESCE(SUM(jsonb_array_length(d->'exercises')), 0)
			 FROM jsonb_array_elements(schedule) d)
		), 0)::BIGINT
		 FROM workout_templates WHERE user_id = $1`, userID,
	).Scan(&stats.TotalTemplates, &stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting templates: %w", err)
	}

	// Imports and their date range
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'error'), MIN(created_at), MAX(created_at)
		 FROM import_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalImports, &stats.FailedImports, &stats.FirstImport, &stats.LastImport)
	if err != nil {
		return nil, fmt.Errorf("counting imports: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT method, COUNT(*), AVG(confidence)
		 FROM workout_templates
		 WHERE user_id = $1
		 GROUP BY method
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates by method: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s MethodStat
		if err := rows.Scan(&s.Method, &s.Count, &s.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scanning method stat: %w", err)
		}
		stats.TemplatesByMethod = append(stats.TemplatesByMethod, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
