// Package vocab holds the read-only exercise vocabulary shared by the
// classifier, the line parser, the fallback generator and the template
// assembler. A Vocabulary is immutable after New and safe for concurrent use.
package vocab

import (
	"strings"
	"sync"
	"unicode"

	"github.com/cloudflare/ahocorasick"
)

// EquipmentRule maps a keyword found in an exercise name to an equipment tag.
type EquipmentRule struct {
	Keyword string
	Tag     string
}

// Tables is the raw vocabulary data. Tests substitute their own.
type Tables struct {
	// ExerciseKeywords drive structure classification and the keyword scan.
	ExerciseKeywords []string
	// ExerciseNouns is the wider list accepted by the bare-name strategy.
	ExerciseNouns []string
	// WorkoutTypes name split days (upper, push, legs, ...).
	WorkoutTypes []string
	// Weekdays includes the common abbreviations.
	Weekdays []string
	// Equipment rules are applied in order.
	Equipment []EquipmentRule
	// GenericEquipment is used when no rule matches.
	GenericEquipment string
	// CanonicalExercises is the target list for name canonicalization.
	CanonicalExercises []string
}

// DefaultTables returns the built-in vocabulary.
func DefaultTables() Tables {
	return Tables{
		ExerciseKeywords: []string{
			"bench", "press", "squat", "deadlift", "row", "curl", "extension",
			"raise", "pull", "push", "dip", "lunge", "crunch", "plank", "fly", "lift",
		},
		ExerciseNouns: []string{
			"bench", "press", "squat", "deadlift", "row", "curl", "extension",
			"raise", "pull", "push", "dip", "lunge", "crunch", "plank", "fly", "flye", "lift",
			"pulldown", "pushdown", "pullover", "pullup", "chin", "shrug", "calf",
			"thrust", "bridge", "kickback", "burpee", "swing", "clean", "snatch",
			"jerk", "carry", "step up", "hyperextension", "good morning", "rollout",
			"situp", "sit up", "twist", "facepull", "face pull", "skullcrusher",
			"hip hinge", "split squat", "leg press", "rdl", "ohp",
		},
		WorkoutTypes: []string{
			"upper", "lower", "push", "pull", "legs", "leg", "chest", "back",
			"arms", "shoulders", "full body",
		},
		Weekdays: []string{
			"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
			"mon", "tue", "tues", "wed", "thu", "thur", "thurs", "fri", "sat", "sun",
		},
		Equipment: []EquipmentRule{
			{Keyword: "barbell", Tag: "barbell"},
			{Keyword: "bb", Tag: "barbell"},
			{Keyword: "dumbbell", Tag: "dumbbell"},
			{Keyword: "db", Tag: "dumbbell"},
			{Keyword: "bench", Tag: "bench"},
			{Keyword: "incline", Tag: "bench"},
			{Keyword: "pull up", Tag: "pull-up bar"},
			{Keyword: "pullup", Tag: "pull-up bar"},
			{Keyword: "chin up", Tag: "pull-up bar"},
			{Keyword: "chinup", Tag: "pull-up bar"},
			{Keyword: "hanging", Tag: "pull-up bar"},
			{Keyword: "cable", Tag: "cable machine"},
			{Keyword: "machine", Tag: "cable machine"},
			{Keyword: "pulldown", Tag: "cable machine"},
			{Keyword: "pushdown", Tag: "cable machine"},
			{Keyword: "leg press", Tag: "cable machine"},
			{Keyword: "face pull", Tag: "cable machine"},
			{Keyword: "kettlebell", Tag: "kettlebell"},
			{Keyword: "kb", Tag: "kettlebell"},
		},
		GenericEquipment: "general gym",
		CanonicalExercises: []string{
			"Bench Press", "Incline Bench Press", "Close-Grip Bench Press",
			"Dumbbell Bench Press", "Incline Dumbbell Press", "Overhead Press",
			"Push Press", "Back Squat", "Front Squat", "Squat", "Split Squat",
			"Deadlift", "Romanian Deadlift", "Sumo Deadlift", "Barbell Row",
			"Dumbbell Row", "Seated Cable Row", "Pull-Up", "Chin-Up", "Lat Pulldown",
			"Bicep Curl", "Hammer Curl", "Triceps Extension", "Triceps Pushdown",
			"Lateral Raise", "Leg Press", "Leg Extension", "Leg Curl", "Lunge",
			"Calf Raise", "Hip Thrust", "Dip", "Push-Up", "Plank", "Crunch",
			"Face Pull", "Chest Fly", "Shrug", "Good Morning", "Power Clean",
			"Kettlebell Swing", "Hanging Leg Raise",
		},
	}
}

// Vocabulary is the compiled, read-only form of Tables.
type Vocabulary struct {
	tables    Tables
	keywords  []string
	nouns     []string
	kwMatch   *ahocorasick.Matcher
	nounMatch *ahocorasick.Matcher
}

// New compiles the given tables.
func New(t Tables) *Vocabulary {
	v := &Vocabulary{
		tables:   t,
		keywords: normalizeAll(t.ExerciseKeywords),
		nouns:    normalizeAll(t.ExerciseNouns),
	}
	if len(v.keywords) > 0 {
		v.kwMatch = ahocorasick.NewStringMatcher(v.keywords)
	}
	if len(v.nouns) > 0 {
		v.nounMatch = ahocorasick.NewStringMatcher(v.nouns)
	}
	return v
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	return New(DefaultTables())
})

// Default returns the shared built-in vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary()
}

// HasExerciseKeyword reports whether s contains an exercise keyword at a word start.
func (v *Vocabulary) HasExerciseKeyword(s string) bool {
	return len(v.ExerciseKeywords(s)) > 0
}

// ExerciseKeywords returns the exercise keywords found in s, in dictionary order.
func (v *Vocabulary) ExerciseKeywords(s string) []string {
	return hits(v.kwMatch, v.keywords, s)
}

// HasExerciseNoun reports whether s contains any exercise noun at a word start.
func (v *Vocabulary) HasExerciseNoun(s string) bool {
	return len(hits(v.nounMatch, v.nouns, s)) > 0
}

// EquipmentTags returns the equipment tags implied by an exercise name, in rule order.
func (v *Vocabulary) EquipmentTags(name string) []string {
	norm := Normalize(name)
	var tags []string
	seen := map[string]bool{}
	for _, r := range v.tables.Equipment {
		if seen[r.Tag] {
			continue
		}
		if containsWord(norm, Normalize(r.Keyword)) {
			seen[r.Tag] = true
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

// GenericEquipment is the tag used when no equipment rule matches.
func (v *Vocabulary) GenericEquipment() string {
	return v.tables.GenericEquipment
}

// EquipmentOrder returns the distinct equipment tags in rule order.
func (v *Vocabulary) EquipmentOrder() []string {
	var order []string
	seen := map[string]bool{}
	for _, r := range v.tables.Equipment {
		if !seen[r.Tag] {
			seen[r.Tag] = true
			order = append(order, r.Tag)
		}
	}
	return order
}

// WorkoutTypes returns a copy of the workout-type keywords.
func (v *Vocabulary) WorkoutTypes() []string {
	return append([]string(nil), v.tables.WorkoutTypes...)
}

// Weekdays returns a copy of the weekday names.
func (v *Vocabulary) Weekdays() []string {
	return append([]string(nil), v.tables.Weekdays...)
}

// CanonicalExercises returns a copy of the canonical exercise names.
func (v *Vocabulary) CanonicalExercises() []string {
	return append([]string(nil), v.tables.CanonicalExercises...)
}

// hits runs the matcher as a prefilter and keeps only matches that start a word.
func hits(m *ahocorasick.Matcher, dict []string, s string) []string {
	if m == nil {
		return nil
	}
	norm := Normalize(s)
	if norm == "" {
		return nil
	}
	idx := m.MatchThreadSafe([]byte(norm))
	if len(idx) == 0 {
		return nil
	}
	found := make([]bool, len(dict))
	for _, i := range idx {
		if i >= 0 && i < len(dict) && containsWord(norm, dict[i]) {
			found[i] = true
		}
	}
	var out []string
	for i, ok := range found {
		if ok {
			out = append(out, dict[i])
		}
	}
	return out
}

// Normalize lowercases s and replaces every non-letter run with a single space.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// containsWord reports whether kw occurs in norm starting at a word boundary.
// Suffixes are allowed so plurals ("curls", "rows") still match.
func containsWord(norm, kw string) bool {
	if kw == "" {
		return false
	}
	return strings.HasPrefix(norm, kw) || strings.Contains(norm, " "+kw)
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		n := Normalize(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
