package program

import (
	"regexp"
	"strings"

	"github.com/claude/freeplans/internal/models"
)

// Signal names the evidence the classifier used.
type Signal string

const (
	SignalHeader         Signal = "header"
	SignalRowShape       Signal = "row_shape"
	SignalKeywordDensity Signal = "keyword_density"
	SignalPattern        Signal = "pattern"
	SignalList           Signal = "list"
	SignalNone           Signal = "none"
)

// Classification is the classifier output.
type Classification struct {
	Format models.DocumentFormat
	Signal Signal
}

// TableDetected reports whether real table structure was seen. Keyword
// density alone classifies as a table but does not count here.
func (c Classification) TableDetected() bool {
	return c.Signal == SignalHeader || c.Signal == SignalRowShape
}

var (
	// Exercise Sets Reps Rest, Exercise | Sets | Reps, Movement Name Sets x Reps ...
	tableHeaderRe = regexp.MustCompile(`(?i)\b(?:exercises?|movements?|lifts?)\b\W+(?:name\W+)?sets?\W+(?:x\W+)?(?:reps?|repetitions)\b`)

	rowShapeRe = regexp.MustCompile(`^\s*(?:[-*•]\s*)?\p{L}[\p{L}'’().,/\- ]*?\s+\d{1,3}\s+` + rangePat + `\s+` + rangePat + `\b`)

	setsPatternRe = regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:sets?\s*)?[x×]\s*\d{1,3}|\b\d{1,2}\s*sets?\s*(?:of\s*)?\d{1,3}\s*reps?\b`)

	listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•·▪●◦‣]|\d{1,2}[.)])\s+\S`)
)

// Classify labels the overall layout of text.
func (e *Engine) Classify(text string) Classification {
	lines := strings.Split(text, "\n")

	for _, l := range lines {
		if tableHeaderRe.MatchString(l) {
			return Classification{models.FormatTable, SignalHeader}
		}
	}

	rows, keywordLines := 0, 0
	for _, l := range lines {
		if rowShapeRe.MatchString(l) {
			rows++
		}
		if e.vocab.HasExerciseKeyword(l) {
			keywordLines++
		}
	}
	if rows >= e.opts.TableRowThreshold {
		return Classification{models.FormatTable, SignalRowShape}
	}
	if keywordLines >= e.opts.KeywordLineThreshold {
		return Classification{models.FormatTable, SignalKeywordDensity}
	}

	if setsPatternRe.MatchString(text) {
		return Classification{models.FormatStructuredPattern, SignalPattern}
	}
	for _, l := range lines {
		if listMarkerRe.MatchString(l) {
			return Classification{models.FormatNumberedList, SignalList}
		}
	}
	return Classification{models.FormatUnstructured, SignalNone}
}
