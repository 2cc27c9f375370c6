package program

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoMatch is returned by a line strategy whose pattern does not apply.
	ErrNoMatch = errors.New("no match")

	// ErrInvalidExercise is wrapped by a strategy that matched a line but
	// produced an implausible entry. The line is dropped.
	ErrInvalidExercise = errors.New("invalid exercise")
)

const (
	minSets       = 1
	maxSets       = 20
	minNameLength = 3
	maxNameLength = 50
)

var (
	// junkNameRe catches URLs, markup and PDF object syntax leaking out of text extraction.
	junkNameRe = regexp.MustCompile(`(?i)(https?://|www\.|\.(?:com|org|net|io|pdf)\b|<[^>]*>|&[a-z]+;|%pdf|\b(?:obj|endobj|stream|endstream|xref|startxref|trailer)\b|/(?:type|font|page|length|filter)\b)`)
	numericRe  = regexp.MustCompile(`^[\d\s.,:;/x×+\-–]+$`)
	lettersRe  = regexp.MustCompile(`\p{L}{2}`)

	// leadingMarkerRe strips bullets, list numbering ("1.", "2)") and superset labels ("A1)").
	leadingMarkerRe  = regexp.MustCompile(`^(?:[-*•·▪●◦‣–—>#]+\s*|\(?\d{1,2}[.)]\s*|\(?[A-Za-z]\d?[.)]\s+)+`)
	trailingSepRe    = regexp.MustCompile(`[\s:;,.|\-–—=@]+$`)
	innerSpaceRe     = regexp.MustCompile(`\s+`)
	restValueRe      = regexp.MustCompile(`(?i)^(\d{1,3}(?:\.\d+)?)(?:\s*[-–]\s*(\d{1,3}(?:\.\d+)?))?\s*(seconds?|secs?|s|minutes?|mins?|m|'|")?\.?$`)
	restClockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	repsRangeRe      = regexp.MustCompile(`^(\d{1,3})\s*[-–—]\s*(\d{1,3})$`)
	restPrefixWordRe = regexp.MustCompile(`(?i)^(?:rest(?:\s+time)?|pause)\s*[:=\-]?\s*`)
)

// CleanName strips list markers and trailing separators and collapses whitespace.
func CleanName(s string) string {
	s = strings.TrimSpace(s)
	s = leadingMarkerRe.ReplaceAllString(s, "")
	s = trailingSepRe.ReplaceAllString(s, "")
	s = innerSpaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, `"'*_`)
}

// ValidateName reports why name cannot be an exercise name, or nil.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	switch {
	case n < minNameLength:
		return fmt.Errorf("%w: name %q too short", ErrInvalidExercise, name)
	case n > maxNameLength:
		return fmt.Errorf("%w: name too long (%d characters)", ErrInvalidExercise, n)
	case junkNameRe.MatchString(name):
		return fmt.Errorf("%w: name %q looks like markup or metadata", ErrInvalidExercise, name)
	case numericRe.MatchString(name):
		return fmt.Errorf("%w: name %q is numeric", ErrInvalidExercise, name)
	case !lettersRe.MatchString(name):
		return fmt.Errorf("%w: name %q has no word", ErrInvalidExercise, name)
	}
	return nil
}

// parseSets converts a sets column and enforces the [1,20] bound.
func parseSets(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: sets %q: %v", ErrInvalidExercise, s, err)
	}
	if n < minSets || n > maxSets {
		return 0, fmt.Errorf("%w: sets %d out of range", ErrInvalidExercise, n)
	}
	return n, nil
}

// NormalizeReps collapses "8 – 12" into "8-12". Non-range values are trimmed only.
func NormalizeReps(s string) string {
	s = strings.TrimSpace(s)
	if m := repsRangeRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2]
	}
	return s
}

// NormalizeRest converts a rest column to seconds using the default of 90s
// for missing or unparseable values. See normalizeRest.
func NormalizeRest(raw string) int {
	return normalizeRest(raw, defaultRestSeconds)
}

// normalizeRest converts a rest value to seconds.
//
// A range is averaged and rounded first. A unitless result below 10 is read
// as minutes. An explicit unit always wins, and "m:ss" is a clock value.
func normalizeRest(raw string, def int) int {
	s := strings.TrimSpace(raw)
	s = restPrefixWordRe.ReplaceAllString(s, "")
	if s == "" {
		return def
	}
	if m := restClockRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		if secs >= 60 {
			return def
		}
		return mins*60 + secs
	}
	m := restValueRe.FindStringSubmatch(s)
	if m == nil {
		return def
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return def
	}
	if m[2] != "" {
		hi, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return def
		}
		v = (v + hi) / 2
	}

	switch unit := strings.ToLower(m[3]); {
	case unit == "":
		v = math.Round(v)
		if v < 10 {
			v *= 60
		}
	case strings.HasPrefix(unit, "m") || unit == "'":
		v = math.Round(v * 60)
	default:
		v = math.Round(v)
	}
	if v < 0 {
		return def
	}
	return int(v)
}
