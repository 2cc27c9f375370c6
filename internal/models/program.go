package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentFormat is the overall layout of a program document.
type DocumentFormat string

const (
	FormatTable             DocumentFormat = "table"
	FormatStructuredPattern DocumentFormat = "structured_pattern"
	FormatNumberedList      DocumentFormat = "numbered_list"
	FormatUnstructured      DocumentFormat = "unstructured"
)

// Extraction methods reported on ExtractionResult.Method.
const (
	MethodSectionParse = "section_parse"
	MethodKeywordScan  = "keyword_scan"
	MethodFallback     = "fallback"
)

// DaySection is a contiguous span of raw text hypothesized to be one training day.
type DaySection struct {
	Index int
	Lines []string
}

// Text returns the section lines joined with newlines.
func (s DaySection) Text() string {
	return strings.Join(s.Lines, "\n")
}

// ExerciseEntry is a single parsed exercise line.
type ExerciseEntry struct {
	Name          string `json:"name"`
	Sets          int    `json:"sets"`
	Reps          string `json:"reps"`
	RestSeconds   int    `json:"rest_seconds"`
	Notes         string `json:"notes,omitempty"`
	MatchStrategy string `json:"match_strategy"`
}

// WorkoutDay is one training day with the exercises extracted for it.
type WorkoutDay struct {
	Label      string          `json:"label"`
	IsOptional bool            `json:"is_optional"`
	Exercises  []ExerciseEntry `json:"exercises"`
}

// ExtractionResult is the engine output before template assembly.
type ExtractionResult struct {
	Days       []WorkoutDay   `json:"days"`
	Format     DocumentFormat `json:"format"`
	Confidence float64        `json:"confidence"`
	Method     string         `json:"method"`
	Warnings   []string       `json:"warnings"`
}

// ExerciseCount returns the number of exercises across all days.
func (r *ExtractionResult) ExerciseCount() int {
	n := 0
	for _, d := range r.Days {
		n += len(d.Exercises)
	}
	return n
}

// WorkoutTemplate is the final structured program.
type WorkoutTemplate struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	SourceTitle string         `json:"source_title,omitempty"`
	Equipment   []string       `json:"equipment"`
	Difficulty  string         `json:"difficulty"`
	Goals       []string       `json:"goals"`
	DaysPerWeek int            `json:"days_per_week"`
	Schedule    []TemplateDay  `json:"schedule"`
	Format      DocumentFormat `json:"format"`
	Confidence  float64        `json:"confidence"`
	Method      string         `json:"method"`
	Warnings    []string       `json:"warnings"`
}

// ExerciseCount returns the number of exercises across the schedule.
func (t *WorkoutTemplate) ExerciseCount() int {
	n := 0
	for _, d := range t.Schedule {
		n += len(d.Exercises)
	}
	return n
}

// TemplateDay is a WorkoutDay as stored on a template.
type TemplateDay struct {
	DayNumber  int                `json:"day_number"`
	Label      string             `json:"label"`
	IsOptional bool               `json:"is_optional"`
	Exercises  []TemplateExercise `json:"exercises"`
}

// TemplateExercise is an ExerciseEntry with a stable identifier and position.
type TemplateExercise struct {
	ID            uuid.UUID `json:"id"`
	Order         int       `json:"order"`
	Name          string    `json:"name"`
	Canonical     string    `json:"canonical,omitempty"`
	Sets          int       `json:"sets"`
	Reps          string    `json:"reps"`
	RestSeconds   int       `json:"rest_seconds"`
	Notes         string    `json:"notes,omitempty"`
	MatchStrategy string    `json:"match_strategy"`
}

// TemplateSummary is a list view of a stored template.
type TemplateSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Difficulty  string    `json:"difficulty"`
	DaysPerWeek int       `json:"days_per_week"`
	Confidence  float64   `json:"confidence"`
	Method      string    `json:"method"`
	SourceTitle string    `json:"source_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
