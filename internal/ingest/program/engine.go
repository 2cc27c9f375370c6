// Package program turns extracted workout-program text into a structured
// multi-day template.
//
// The Engine is a total function: every input, including the empty string,
// yields at least one day with at least one exercise. Extraction degrades from
// per-section parsing to a keyword scan and finally to a canned program chosen
// from the source title. An Engine holds only read-only data and is safe for
// concurrent use.
package program

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/vocab"
)

// Warnings attached to results.
const (
	WarnInputTooShort   = "input too short"
	WarnNoStructure     = "no structure detected"
	WarnNoTableHeader   = "no table header found"
	WarnKeywordScan     = "structured parse found no exercises, used keyword scan"
	WarnFallback        = "used fallback template"
	WarnExtractionError = "text extraction failed"
)

// Engine parses workout program text. Build one with New.
type Engine struct {
	opts         Options
	vocab        *vocab.Vocabulary
	canon        Canonicalizer
	lines        *lineParser
	workoutTypes map[string]bool
	weekdays     map[string]bool
}

// New returns an engine with the given thresholds and vocabulary. A nil
// vocabulary selects vocab.Default; a nil canonicalizer leaves
// TemplateExercise.Canonical empty.
func New(opts Options, v *vocab.Vocabulary, canon Canonicalizer) *Engine {
	opts = opts.withDefaults()
	if v == nil {
		v = vocab.Default()
	}
	e := &Engine{
		opts:         opts,
		vocab:        v,
		canon:        canon,
		lines:        newLineParser(opts, v),
		workoutTypes: wordSet(v.WorkoutTypes()),
		weekdays:     wordSet(v.Weekdays()),
	}
	return e
}

// Options returns the effective thresholds.
func (e *Engine) Options() Options {
	return e.opts
}

// ParseLine runs the line cascade on a single line.
func (e *Engine) ParseLine(line string) (models.ExerciseEntry, error) {
	return e.lines.parse(line)
}

// Extract runs classification, segmentation, section extraction and, when
// nothing was found, the keyword scan and fallback stages.
func (e *Engine) Extract(text, title string) *models.ExtractionResult {
	res := &models.ExtractionResult{
		Days:     []models.WorkoutDay{},
		Format:   models.FormatUnstructured,
		Warnings: []string{},
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < e.opts.MinTextLength {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s (%d characters)", WarnInputTooShort, n))
		e.applyFallback(res, title)
		return res
	}

	cls := e.Classify(text)
	res.Format = cls.Format
	if cls.Format == models.FormatUnstructured {
		res.Warnings = append(res.Warnings, WarnNoStructure)
	}

	headerSeen := false
	for _, sec := range e.Segment(text) {
		day, header := e.ExtractSection(sec)
		headerSeen = headerSeen || header
		if len(day.Exercises) > 0 {
			res.Days = append(res.Days, day)
		}
	}
	if cls.TableDetected() && !headerSeen {
		res.Warnings = append(res.Warnings, WarnNoTableHeader)
	}
	res.Method = models.MethodSectionParse

	if len(res.Days) == 0 {
		if found := e.KeywordScan(text); len(found) > 0 {
			res.Warnings = append(res.Warnings, WarnKeywordScan)
			whole := models.DaySection{Index: 1, Lines: strings.Split(text, "\n")}
			res.Days = append(res.Days, models.WorkoutDay{
				Label:      e.dayLabel(whole),
				IsOptional: e.isOptionalDay(whole),
				Exercises:  found,
			})
			res.Method = models.MethodKeywordScan
		}
	}

	if len(res.Days) == 0 {
		e.applyFallback(res, title)
		return res
	}
	res.Confidence = e.Score(res.Days, cls)
	return res
}

// ExtractFailed is the result for a document whose text could not be read.
// The collaborator error is recorded as a warning and the fallback applies.
func (e *Engine) ExtractFailed(title string, cause error) *models.ExtractionResult {
	res := &models.ExtractionResult{
		Days:     []models.WorkoutDay{},
		Format:   models.FormatUnstructured,
		Warnings: []string{fmt.Sprintf("%s: %v", WarnExtractionError, cause)},
	}
	e.applyFallback(res, title)
	return res
}

func (e *Engine) applyFallback(res *models.ExtractionResult, title string) {
	res.Days = e.Fallback(title)
	res.Method = models.MethodFallback
	res.Confidence = clamp01(e.opts.Confidence.Fallback)
	res.Warnings = append(res.Warnings, WarnFallback)
}

// Parse extracts and assembles a template in one call.
func (e *Engine) Parse(text, title string) *models.WorkoutTemplate {
	return e.Assemble(e.Extract(text, title), text, title)
}

func wordSet(entries []string) map[string]bool {
	set := map[string]bool{}
	for _, s := range entries {
		for _, w := range strings.Fields(vocab.Normalize(s)) {
			set[w] = true
		}
	}
	return set
}
