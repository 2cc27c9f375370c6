package program

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/vocab"
)

var (
	// Day 1, DAY 2: Upper, Week 1 Day 3 - Legs, Day One
	dayMarkerRe = regexp.MustCompile(`(?i)^[\s#*_>•\-]*(?:week\s*\d{1,2}\s*[,:\-–—]?\s*)?day\s*(\d{1,2}|one|two|three|four|five|six|seven)\b\s*[:.)\-–—]?\s*(.*?)[\s*_:]*$`)

	optionalRe   = regexp.MustCompile(`(?i)\b(?:optional|rest|off)\b`)
	headerTrimRe = regexp.MustCompile(`^[\s#*_>•\-]+|[\s*_:.\-–—]+$`)
	setsRepsRe   = regexp.MustCompile(`\d\s*[x×]\s*\d`)
	oneNumberRe  = regexp.MustCompile(`^\D*\d\D*$`)
)

var dayWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
}

// workoutTypeFiller may accompany a workout type in a header line.
var workoutTypeFiller = map[string]bool{
	"body": true, "day": true, "workout": true, "session": true, "training": true,
	"a": true, "b": true, "c": true, "and": true, "focus": true, "focused": true,
}

type splitFunc func(lines []string) []models.DaySection

// Segment splits text into day sections, trying day markers, workout-type
// headers, repeated table headers, weekday headers and blank-line paragraphs
// in that order. The first strategy producing at least two sections of
// MinSectionLength characters wins; otherwise the whole text is one section.
func (e *Engine) Segment(text string) []models.DaySection {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	strategies := []splitFunc{
		func(ls []string) []models.DaySection { return e.splitAt(ls, e.isDayMarker) },
		func(ls []string) []models.DaySection { return e.splitAt(ls, e.isWorkoutTypeHeader) },
		e.splitAtTableHeaders,
		func(ls []string) []models.DaySection { return e.splitAt(ls, e.isWeekdayHeader) },
		e.splitParagraphs,
	}
	for _, split := range strategies {
		sections := split(lines)
		if e.qualifies(sections) {
			return reindex(sections)
		}
	}
	return []models.DaySection{{Index: 1, Lines: trimBlank(lines)}}
}

func (e *Engine) qualifies(sections []models.DaySection) bool {
	long := 0
	for _, s := range sections {
		if len(strings.TrimSpace(s.Text())) >= e.opts.MinSectionLength {
			long++
		}
	}
	return long >= 2
}

// splitAt starts a new section at every line for which isHeader is true.
// Text before the first header is kept only when it is long enough to
// plausibly hold exercises.
func (e *Engine) splitAt(lines []string, isHeader func(string) bool) []models.DaySection {
	var starts []int
	for i, l := range lines {
		if isHeader(l) {
			starts = append(starts, i)
		}
	}
	return e.cut(lines, starts)
}

func (e *Engine) cut(lines []string, starts []int) []models.DaySection {
	if len(starts) == 0 {
		return nil
	}
	var sections []models.DaySection
	if pre := trimBlank(lines[:starts[0]]); len(strings.Join(pre, "\n")) >= e.opts.MinSectionLength {
		sections = append(sections, models.DaySection{Lines: pre})
	}
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sections = append(sections, models.DaySection{Lines: trimBlank(lines[start:end])})
	}
	return sections
}

// splitAtTableHeaders splits on repeated table headers. A short title line
// right above a header belongs to the section it introduces.
func (e *Engine) splitAtTableHeaders(lines []string) []models.DaySection {
	var starts []int
	for i, l := range lines {
		if !tableHeaderRe.MatchString(l) {
			continue
		}
		start := i
		for j := i - 1; j >= 0; j-- {
			prev := strings.TrimSpace(lines[j])
			if prev == "" {
				continue
			}
			if len(prev) <= 50 && strings.IndexFunc(prev, unicode.IsDigit) < 0 && !tableHeaderRe.MatchString(prev) {
				start = j
			}
			break
		}
		if len(starts) > 0 && start <= starts[len(starts)-1] {
			start = i
		}
		starts = append(starts, start)
	}
	if len(starts) < 2 {
		return nil
	}
	return e.cut(lines, starts)
}

// splitParagraphs splits on blank lines. Paragraphs shorter than
// MinSectionLength are merged into the preceding one so that a spaced-out
// list does not turn into one day per line.
func (e *Engine) splitParagraphs(lines []string) []models.DaySection {
	var paras [][]string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, cur)
			cur = nil
		}
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		cur = append(cur, l)
	}
	flush()

	var sections []models.DaySection
	for _, p := range paras {
		short := len(strings.Join(p, "\n")) < e.opts.MinSectionLength
		if short && len(sections) > 0 {
			last := &sections[len(sections)-1]
			last.Lines = append(last.Lines, p...)
			continue
		}
		sections = append(sections, models.DaySection{Lines: p})
	}
	// A short leading paragraph absorbs the next one instead.
	if len(sections) > 1 && len(sections[0].Text()) < e.opts.MinSectionLength {
		sections[1].Lines = append(sections[0].Lines, sections[1].Lines...)
		sections = sections[1:]
	}
	return sections
}

func reindex(sections []models.DaySection) []models.DaySection {
	for i := range sections {
		sections[i].Index = i + 1
	}
	return sections
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return append([]string(nil), lines[start:end]...)
}

func (e *Engine) isDayMarker(line string) bool {
	return dayMarkerRe.MatchString(line) && !setsRepsRe.MatchString(line)
}

// isWorkoutTypeHeader matches short lines made only of workout types and
// filler words ("Upper Body A", "Push Day", "Chest & Back:").
func (e *Engine) isWorkoutTypeHeader(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 40 || setsRepsRe.MatchString(line) {
		return false
	}
	if strings.IndexFunc(line, unicode.IsDigit) >= 0 && !oneNumberRe.MatchString(line) {
		return false
	}
	words := strings.Fields(vocab.Normalize(line))
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	typed := false
	for _, w := range words {
		switch {
		case e.workoutTypes[w]:
			typed = true
		case workoutTypeFiller[w]:
		default:
			return false
		}
	}
	return typed
}

// isWeekdayHeader matches lines that start with a weekday ("Monday - Upper").
func (e *Engine) isWeekdayHeader(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 60 || setsRepsRe.MatchString(line) {
		return false
	}
	words := strings.Fields(vocab.Normalize(line))
	if len(words) == 0 || len(words) > 6 {
		return false
	}
	return e.weekdays[words[0]]
}

// isSectionHeader reports whether a line is structural and never an exercise.
func (e *Engine) isSectionHeader(line string) bool {
	return e.isDayMarker(line) || tableHeaderRe.MatchString(line) ||
		e.isWorkoutTypeHeader(line) || e.isWeekdayHeader(line)
}

// dayLabel names a section from its first lines, defaulting to "Day <index>".
func (e *Engine) dayLabel(sec models.DaySection) string {
	seen := 0
	for _, l := range sec.Lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if seen++; seen > 3 {
			break
		}
		if m := dayMarkerRe.FindStringSubmatch(l); m != nil && !setsRepsRe.MatchString(l) {
			n, ok := dayWords[strings.ToLower(m[1])]
			if !ok {
				n, _ = strconv.Atoi(m[1])
			}
			label := fmt.Sprintf("Day %d", n)
			if desc := cleanHeader(m[2]); desc != "" {
				label += ": " + desc
			}
			return label
		}
		if e.isWeekdayHeader(l) || e.isWorkoutTypeHeader(l) {
			return cleanHeader(l)
		}
	}
	return fmt.Sprintf("Day %d", sec.Index)
}

// isOptionalDay flags a section whose heading mentions optional, rest or off.
func (e *Engine) isOptionalDay(sec models.DaySection) bool {
	for _, l := range sec.Lines {
		l = strings.TrimSpace(l)
		if l == "" || tableHeaderRe.MatchString(l) {
			continue
		}
		heading := e.isDayMarker(l) || e.isWeekdayHeader(l) || e.isWorkoutTypeHeader(l) ||
			(len(l) <= 40 && strings.IndexFunc(l, unicode.IsDigit) < 0 && !strings.ContainsAny(l, "|\t"))
		return heading && optionalRe.MatchString(l)
	}
	return false
}

func cleanHeader(s string) string {
	s = headerTrimRe.ReplaceAllString(strings.TrimSpace(s), "")
	return innerSpaceRe.ReplaceAllString(s, " ")
}
