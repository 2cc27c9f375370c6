package ingest

import "github.com/google/uuid"

// Result holds the outcome of an ingest operation.
type Result struct {
	TemplateID     uuid.UUID `json:"template_id"`
	TemplateName   string    `json:"template_name"`
	Inserted       bool      `json:"inserted"`
	DaysFound      int       `json:"days_found"`
	ExercisesFound int       `json:"exercises_found"`
	Confidence     float64   `json:"confidence"`
	Method         string    `json:"method"`
	Format         string    `json:"format"`
	Warnings       []string  `json:"warnings,omitempty"`

	Message string `json:"message,omitempty"`
}
