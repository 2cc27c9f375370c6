package program

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/vocab"
)

// Match strategy identifiers stored on ExerciseEntry.MatchStrategy.
const (
	StrategyTableRow    = "table_row"
	StrategyCompact     = "compact"
	StrategyAnnotated   = "annotated"
	StrategyDelimited   = "delimited"
	StrategyBareName    = "bare_name"
	StrategyKeywordScan = "keyword_scan"
	StrategyFallback    = "fallback"
)

const (
	numPat   = `\d{1,3}(?:\.\d+)?`
	rangePat = `\d{1,3}(?:\s*[-–—]\s*\d{1,3})?`
	unitPat  = `seconds?|secs?|s|minutes?|mins?|m|'|"`

	// After "x" a spaced dash separates reps from rest: "4 x 10 - 2 min".
	tightRangePat = `\d{1,3}(?:[-–—]\d{1,3})?`
)

var (
	// Barbell Bench Press 5 1 - 4 90 - 120 Sec [notes]
	tableRowRe = regexp.MustCompile(`(?i)^(.+?)\s+(\d{1,3})\s+(` + rangePat + `)\s+(` + numPat + `(?:\s*[-–—]\s*` + numPat + `)?)\s*(` + unitPat + `)?\.?(?:\s+(.*?))?\s*$`)

	// Bench Press 4 8-10 (rest column missing)
	tableRowShortRe = regexp.MustCompile(`(?i)^(.+?)\s+(\d{1,2})\s+(` + rangePat + `)\s*$`)

	// Squat 3x8-10 90s [notes], Deadlift 3x5 2:00
	compactRe = regexp.MustCompile(`(?i)^(.+?)[\s:\-–—]+(\d{1,3})\s*[x×*]\s*(` + tightRangePat + `|amrap|max)(?:\s*reps?)?(?:\s*[,@/|\-–—]?\s*(?:rest\s*[:\-]?\s*)?(\d{1,2}:\d{2}|` + numPat + `(?:\s*[-–—]\s*` + numPat + `)?)\s*(` + unitPat + `)?)?\.?(?:\s+(.*?))?\s*$`)

	// Bench Press: 4 sets x 8-10 reps [rest 2 min]
	annotatedRe = regexp.MustCompile(`(?i)^(.+?)\s*[:\-–—]?\s+(\d{1,3})\s*sets?\s*(?:x|×|of|,)?\s*(` + rangePat + `)\s*(?:reps?|repetitions)\b\.?(.*)$`)

	// Bench Press (4x8) [rest 2 min]
	annotatedParenRe = regexp.MustCompile(`(?i)^(.+?)\s*\(\s*(\d{1,3})\s*[x×]\s*(` + rangePat + `)\s*(?:reps?)?\s*\)(.*)$`)

	restKeywordRe = regexp.MustCompile(`(?i)\b(?:rest|pause)(?:\s+time)?\s*[:=\-]?\s*(` + numPat + `(?:\s*[-–—]\s*` + numPat + `)?)\s*(seconds?|secs?|s|minutes?|mins?|m)?\b`)
	restUnitRe    = regexp.MustCompile(`(?i)\b(` + numPat + `(?:\s*[-–—]\s*` + numPat + `)?)\s*(seconds?|secs?|s|minutes?|mins?|m)\b`)

	cellSplitRe  = regexp.MustCompile(`\t|\s*\|\s*|\s{2,}`)
	intCellRe    = regexp.MustCompile(`^\d{1,3}$`)
	rangeCellRe  = regexp.MustCompile(`^` + rangePat + `$`)
	restCellRe   = regexp.MustCompile(`(?i)^` + numPat + `(?:\s*[-–—]\s*` + numPat + `)?\s*(?:` + unitPat + `)?\.?$|^\d{1,2}:\d{2}$`)
	setsRepsCell = regexp.MustCompile(`(?i)^(\d{1,3})\s*[x×]\s*(` + rangePat + `)$`)
)

// proseWords mark sentence fragments that happen to contain an exercise noun.
var proseWords = map[string]bool{
	"the": true, "your": true, "you": true, "and": true, "between": true,
	"each": true, "every": true, "should": true, "will": true, "is": true,
	"are": true, "focus": true, "then": true, "this": true, "for": true,
	"before": true, "after": true, "week": true, "weeks": true, "day": true,
}

// labelWords are column and calendar labels that never name an exercise on their own.
var labelWords = map[string]bool{
	"week": true, "day": true, "set": true, "sets": true, "rep": true, "reps": true,
	"rest": true, "page": true, "total": true, "exercise": true, "round": true,
	"rounds": true, "phase": true, "block": true, "load": true, "rpe": true,
}

func isColumnLabel(name string) bool {
	words := strings.Fields(vocab.Normalize(name))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !labelWords[w] {
			return false
		}
	}
	return true
}

// lineStrategy parses one line. It returns ErrNoMatch when its pattern does
// not apply, or an error wrapping ErrInvalidExercise when the line matched
// but the entry is implausible.
type lineStrategy struct {
	id    string
	parse func(line string) (models.ExerciseEntry, error)
}

// lineParser runs the fixed-priority strategy chain.
type lineParser struct {
	opts       Options
	vocab      *vocab.Vocabulary
	strategies []lineStrategy
}

func newLineParser(opts Options, v *vocab.Vocabulary) *lineParser {
	p := &lineParser{opts: opts, vocab: v}
	p.strategies = []lineStrategy{
		{StrategyTableRow, p.tableRow},
		{StrategyCompact, p.compact},
		{StrategyAnnotated, p.annotated},
		{StrategyDelimited, p.delimited},
		{StrategyBareName, p.bareName},
	}
	return p
}

// parse returns the entry of the first strategy that matches line. A matched
// but rejected line does not fall through to later strategies.
func (p *lineParser) parse(line string) (models.ExerciseEntry, error) {
	line = strings.TrimSpace(line)
	n := utf8.RuneCountInString(line)
	if n < p.opts.MinLineLength || n > p.opts.MaxLineLength {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	for _, s := range p.strategies {
		entry, err := s.parse(line)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			return models.ExerciseEntry{}, err
		}
		entry.MatchStrategy = s.id
		return entry, nil
	}
	return models.ExerciseEntry{}, ErrNoMatch
}

// build validates the pieces common to every strategy.
func (p *lineParser) build(rawName, sets, reps, rest, unit, notes string) (models.ExerciseEntry, error) {
	name := CleanName(rawName)
	if err := ValidateName(name); err != nil {
		return models.ExerciseEntry{}, err
	}
	if isColumnLabel(name) {
		return models.ExerciseEntry{}, fmt.Errorf("%w: %q is a column label", ErrInvalidExercise, name)
	}
	n := p.opts.DefaultSets
	if sets != "" {
		var err error
		if n, err = parseSets(sets); err != nil {
			return models.ExerciseEntry{}, err
		}
	}
	if reps = NormalizeReps(reps); reps == "" {
		reps = p.opts.DefaultReps
	}
	return models.ExerciseEntry{
		Name:        name,
		Sets:        n,
		Reps:        reps,
		RestSeconds: normalizeRest(strings.TrimSpace(rest+" "+unit), p.opts.DefaultRestSeconds),
		Notes:       strings.TrimSpace(notes),
	}, nil
}

func (p *lineParser) tableRow(line string) (models.ExerciseEntry, error) {
	if m := tableRowRe.FindStringSubmatch(line); m != nil {
		return p.build(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	// Without a rest column the shape is too loose to trust on its own.
	if m := tableRowShortRe.FindStringSubmatch(line); m != nil && p.vocab.HasExerciseNoun(m[1]) {
		return p.build(m[1], m[2], m[3], "", "", "")
	}
	return models.ExerciseEntry{}, ErrNoMatch
}

func (p *lineParser) compact(line string) (models.ExerciseEntry, error) {
	m := compactRe.FindStringSubmatch(line)
	if m == nil {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	notes := m[6]
	if strings.EqualFold(notes, "rest") {
		notes = ""
	}
	return p.build(m[1], m[2], m[3], m[4], m[5], notes)
}

func (p *lineParser) annotated(line string) (models.ExerciseEntry, error) {
	m := annotatedRe.FindStringSubmatch(line)
	if m == nil {
		m = annotatedParenRe.FindStringSubmatch(line)
	}
	if m == nil {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	rest, unit, notes := splitRest(m[4])
	return p.build(m[1], m[2], m[3], rest, unit, notes)
}

// splitRest pulls a rest value out of trailing text and returns the remainder as notes.
func splitRest(s string) (rest, unit, notes string) {
	loc := restKeywordRe.FindStringSubmatchIndex(s)
	if loc == nil {
		loc = restUnitRe.FindStringSubmatchIndex(s)
	}
	if loc == nil {
		return "", "", trimNotes(s)
	}
	rest = s[loc[2]:loc[3]]
	if loc[4] >= 0 {
		unit = s[loc[4]:loc[5]]
	}
	return rest, unit, trimNotes(s[:loc[0]] + " " + s[loc[1]:])
}

func trimNotes(s string) string {
	s = innerSpaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " ,;:-–—|()")
}

func (p *lineParser) delimited(line string) (models.ExerciseEntry, error) {
	var cells []string
	for _, c := range cellSplitRe.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	if len(cells) < 3 {
		return models.ExerciseEntry{}, ErrNoMatch
	}

	var sets, reps, rest string
	var notes []string
	for _, c := range cells[1:] {
		switch {
		case sets == "" && setsRepsCell.MatchString(c):
			m := setsRepsCell.FindStringSubmatch(c)
			sets, reps = m[1], m[2]
		case sets == "" && intCellRe.MatchString(c):
			sets = c
		case sets != "" && reps == "" && rangeCellRe.MatchString(c):
			reps = c
		case sets != "" && reps != "" && rest == "" && restCellRe.MatchString(c):
			rest = c
		default:
			notes = append(notes, c)
		}
	}
	if sets == "" {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	return p.build(cells[0], sets, reps, rest, "", strings.Join(notes, "; "))
}

func (p *lineParser) bareName(line string) (models.ExerciseEntry, error) {
	if strings.HasSuffix(line, ":") || strings.IndexFunc(line, unicode.IsDigit) >= 0 {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	name := CleanName(line)
	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 4 {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	for _, w := range words {
		if proseWords[strings.ToLower(w)] {
			return models.ExerciseEntry{}, ErrNoMatch
		}
	}
	if !p.vocab.HasExerciseNoun(name) {
		return models.ExerciseEntry{}, ErrNoMatch
	}
	return p.build(name, "", "", "", "", "")
}
