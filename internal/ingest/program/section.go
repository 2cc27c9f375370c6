package program

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/claude/freeplans/internal/models"
)

var (
	intRe = regexp.MustCompile(`\d{1,3}`)
	// numberRunRe removes numeric tokens and their units when recovering a name from a noisy line.
	numberRunRe = regexp.MustCompile(`(?i)\d+(?:\s*[-–x×:]\s*\d+)*\s*(?:sets?|reps?|x|seconds?|secs?|s|minutes?|mins?|m|kg|lbs?)?\b`)
)

// ExtractSection runs the line cascade over a section. When the section holds
// a table header only the lines after it are parsed. The second return value
// reports whether a header was found.
func (e *Engine) ExtractSection(sec models.DaySection) (models.WorkoutDay, bool) {
	day := models.WorkoutDay{
		Label:      e.dayLabel(sec),
		IsOptional: e.isOptionalDay(sec),
		Exercises:  []models.ExerciseEntry{},
	}

	lines := sec.Lines
	header := false
	for i, l := range lines {
		if tableHeaderRe.MatchString(l) {
			lines = lines[i+1:]
			header = true
			break
		}
	}

	for _, l := range lines {
		if strings.TrimSpace(l) == "" || e.isSectionHeader(l) {
			continue
		}
		entry, err := e.lines.parse(l)
		if err != nil {
			// ErrNoMatch and rejected entries both just reduce yield.
			continue
		}
		day.Exercises = append(day.Exercises, entry)
	}
	return day, header
}

// KeywordScan is the last resort before the fallback program: every line that
// mentions an exercise keyword becomes an entry, using the first numeric
// triplet on the line for sets, reps and rest when present.
func (e *Engine) KeywordScan(text string) []models.ExerciseEntry {
	entries := []models.ExerciseEntry{}
	seen := map[string]bool{}
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if n := utf8.RuneCountInString(l); n < e.opts.MinLineLength || n > e.opts.MaxLineLength {
			continue
		}
		if !e.vocab.HasExerciseKeyword(l) {
			continue
		}
		entry, ok := e.scanLine(l)
		if !ok {
			continue
		}
		key := strings.ToLower(entry.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
		if len(entries) >= maxKeywordScanEntries {
			break
		}
	}
	return entries
}

func (e *Engine) scanLine(line string) (models.ExerciseEntry, bool) {
	name := CleanName(numberRunRe.ReplaceAllString(line, " "))
	if ValidateName(name) != nil || isColumnLabel(name) {
		return models.ExerciseEntry{}, false
	}
	entry := models.ExerciseEntry{
		Name:          name,
		Sets:          e.opts.DefaultSets,
		Reps:          e.opts.DefaultReps,
		RestSeconds:   e.opts.DefaultRestSeconds,
		MatchStrategy: StrategyKeywordScan,
	}
	nums := intRe.FindAllString(line, 3)
	if len(nums) >= 2 {
		sets, err := parseSets(nums[0])
		if err != nil {
			return models.ExerciseEntry{}, false
		}
		entry.Sets = sets
		entry.Reps = nums[1]
		if reps, _ := strconv.Atoi(nums[1]); reps == 0 {
			entry.Reps = e.opts.DefaultReps
		}
	}
	if len(nums) == 3 {
		entry.RestSeconds = normalizeRest(nums[2], e.opts.DefaultRestSeconds)
	}
	return entry, true
}
