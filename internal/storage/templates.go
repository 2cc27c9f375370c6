package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/freeplans/internal/models"
)

// ErrNotFound is returned when a template does not exist for the user.
var ErrNotFound = errors.New("not found")

// InsertTemplate stores a template. Template IDs derive from the source
// document, so storing the same document twice is a no-op; the returned bool
// reports whether a row was written.
func (db *DB) InsertTemplate(ctx context.Context, userID int, tpl *models.WorkoutTemplate) (bool, error) {
	schedule, err := json.Marshal(tpl.Schedule)
	if err != nil {
		return false, fmt.Errorf("encoding schedule: %w", err)
	}
	warnings, err := json.Marshal(tpl.Warnings)
	if err != nil {
		return false, fmt.Errorf("encoding warnings: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_templates (id, user_id, name, description, source_title, equipment,
		 difficulty, goals, days_per_week, format, confidence, method, warnings, schedule)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 ON CONFLICT (user_id, id) DO NOTHING`,
		tpl.ID, userID, tpl.Name, tpl.Description, tpl.SourceTitle, tpl.Equipment,
		tpl.Difficulty, tpl.Goals, tpl.DaysPerWeek, string(tpl.Format), tpl.Confidence,
		tpl.Method, warnings, schedule,
	)
	if err != nil {
		return false, fmt.Errorf("inserting template %s: %w", tpl.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetTemplate loads a full template.
func (db *DB) GetTemplate(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutTemplate, error) {
	var (
		tpl      models.WorkoutTemplate
		format   string
		warnings []byte
		schedule []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, description, source_title, equipment, difficulty, goals,
		 days_per_week, format, confidence, method, warnings, schedule
		 FROM workout_templates
		 WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.SourceTitle, &tpl.Equipment,
		&tpl.Difficulty, &tpl.Goals, &tpl.DaysPerWeek, &format, &tpl.Confidence,
		&tpl.Method, &warnings, &schedule)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying template %s: %w", id, err)
	}
	tpl.Format = models.DocumentFormat(format)
	if err := json.Unmarshal(schedule, &tpl.Schedule); err != nil {
		return nil, fmt.Errorf("decoding schedule of %s: %w", id, err)
	}
	if err := json.Unmarshal(warnings, &tpl.Warnings); err != nil {
		return nil, fmt.Errorf("decoding warnings of %s: %w", id, err)
	}
	return &tpl, nil
}

// ListTemplates returns the most recent templates for a user.
func (db *DB) ListTemplates(ctx context.Context, userID, limit int) ([]models.TemplateSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, difficulty, days_per_week, confidence, method, source_title, created_at
		 FROM workout_templates
		 WHERE user_id = $1
		 ORDER BY created_at DESC, name ASC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	result := []models.TemplateSummary{}
	for rows.Next() {
		var s models.TemplateSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Difficulty, &s.DaysPerWeek, &s.Confidence,
			&s.Method, &s.SourceTitle, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteTemplate removes a template. It returns ErrNotFound if nothing was deleted.
func (db *DB) DeleteTemplate(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
