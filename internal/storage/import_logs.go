package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportLog represents a single document import's outcome.
type ImportLog struct {
	ID             int64            `json:"id"`
	UserID         int              `json:"user_id"`
	CreatedAt      time.Time        `json:"created_at"`
	Source         string           `json:"source"`
	DocumentName   string           `json:"document_name"`
	Status         string           `json:"status"`
	TemplateID     *uuid.UUID       `json:"template_id"`
	DaysFound      int              `json:"days_found"`
	ExercisesFound int              `json:"exercises_found"`
	Confidence     float64          `json:"confidence"`
	Method         string           `json:"method"`
	DurationMs     *int             `json:"duration_ms"`
	ErrorMessage   *string          `json:"error_message"`
	Metadata       *json.RawMessage `json:"metadata"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (user_id, source, document_name, status, template_id,
		 days_found, exercises_found, confidence, method, duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING id`,
		log.UserID, log.Source, log.DocumentName, log.Status, log.TemplateID,
		log.DaysFound, log.ExercisesFound, log.Confidence, log.Method,
		log.DurationMs, log.ErrorMessage, log.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to "success" or "error").
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ImportLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET
		 status = $2, template_id = $3, days_found = $4, exercises_found = $5,
		 confidence = $6, method = $7, duration_ms = $8, error_message = $9, metadata = $10
		 WHERE id = $1`,
		id, log.Status, log.TemplateID, log.DaysFound, log.ExercisesFound,
		log.Confidence, log.Method, log.DurationMs, log.ErrorMessage, log.Metadata,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs for a user.
func (db *DB) QueryImportLogs(ctx context.Context, userID, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, source, document_name, status, template_id,
		 days_found, exercises_found, confidence, method, duration_ms, error_message, metadata
		 FROM import_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ImportLog{}
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.DocumentName, &l.Status,
			&l.TemplateID, &l.DaysFound, &l.ExercisesFound, &l.Confidence, &l.Method,
			&l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
