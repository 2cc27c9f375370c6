package program

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/claude/freeplans/internal/models"
)

const twoDayText = `Day 1: Upper
Bench Press 4x8 90s
Barbell Row 4x8 90s
Overhead Press 3x10 60s

Day 2: Lower
Back Squat 4x6 120s
Romanian Deadlift 3x8 90s
Leg Press 3x12 60s`

const tableText = `Strength Program
Exercise Sets Reps Rest
Barbell Bench Press 5 1 - 4 90 - 120 Sec
Incline Dumbbell Press 4 8 - 10 90 Sec
Cable Row 3 10 - 12 60 Sec`

func hasWarning(warnings []string, prefix string) bool {
	for _, w := range warnings {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

func TestExtractTotality(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	inputs := []string{
		"",
		"   \n\n\t",
		"hi there",
		"This document talks about nutrition and sleep and has no exercises whatsoever in it at all.",
		"ÄÖÜ ß 日本語 🏋️ " + strings.Repeat("x", 80),
		strings.Repeat("Squat 0x5 90s\n", 20),
		tableText,
		twoDayText,
	}
	for _, in := range inputs {
		res := e.Extract(in, "")
		if len(res.Days) == 0 {
			t.Errorf("Extract(%.20q): no days", in)
			continue
		}
		for _, d := range res.Days {
			if len(d.Exercises) == 0 {
				t.Errorf("Extract(%.20q): day %q has no exercises", in, d.Label)
			}
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("Extract(%.20q): confidence = %v, want within [0,1]", in, res.Confidence)
		}
		if res.Warnings == nil {
			t.Errorf("Extract(%.20q): warnings is nil", in)
		}
	}
}

func TestExtractTableScenario(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	res := e.Extract(tableText, "strength.pdf")

	if res.Format != models.FormatTable {
		t.Errorf("format = %s, want table", res.Format)
	}
	if res.Method != models.MethodSectionParse {
		t.Errorf("method = %s, want section_parse", res.Method)
	}
	if len(res.Days) != 1 || len(res.Days[0].Exercises) != 3 {
		t.Fatalf("days = %+v, want 1 day with 3 exercises", res.Days)
	}
	got := res.Days[0].Exercises[0]
	want := models.ExerciseEntry{Name: "Barbell Bench Press", Sets: 5, Reps: "1-4", RestSeconds: 105, MatchStrategy: StrategyTableRow}
	if got != want {
		t.Errorf("exercise = %+v, want %+v", got, want)
	}
	if hasWarning(res.Warnings, WarnNoTableHeader) {
		t.Errorf("unexpected warning %q", WarnNoTableHeader)
	}
	// 0.3 base + 3*0.05 + 0.2 table + 3*0.02 names
	if res.Confidence != 0.71 {
		t.Errorf("confidence = %v, want 0.71", res.Confidence)
	}
}

func TestExtractCompactScenario(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	got, err := e.ParseLine("Squat 3x8-10 90s")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Squat" || got.Sets != 3 || got.Reps != "8-10" || got.RestSeconds != 90 {
		t.Errorf("entry = %+v", got)
	}
}

func TestExtractDaySegmentation(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	res := e.Extract(twoDayText, "upper-lower.txt")

	if len(res.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(res.Days))
	}
	labels := []string{res.Days[0].Label, res.Days[1].Label}
	if labels[0] != "Day 1: Upper" || labels[1] != "Day 2: Lower" {
		t.Errorf("labels = %q", labels)
	}
	for i, d := range res.Days {
		if len(d.Exercises) != 3 {
			t.Errorf("day %d exercises = %d, want 3", i+1, len(d.Exercises))
		}
	}
	if res.Days[1].Exercises[0].Name != "Back Squat" {
		t.Errorf("day 2 first exercise = %q, want Back Squat", res.Days[1].Exercises[0].Name)
	}
	// Keyword density classifies as a table, but without the table bonus
	// and without a missing-header warning.
	if res.Format != models.FormatTable || hasWarning(res.Warnings, WarnNoTableHeader) {
		t.Errorf("format = %s warnings = %q", res.Format, res.Warnings)
	}
	if res.Confidence != 0.72 {
		t.Errorf("confidence = %v, want 0.72", res.Confidence)
	}
}

func TestExtractFallbackScenario(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	tpl := e.Parse("hi there", "bench-program.pdf")

	if tpl.Method != models.MethodFallback {
		t.Fatalf("method = %s, want fallback", tpl.Method)
	}
	if tpl.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", tpl.Confidence)
	}
	if tpl.Name != "Bench Program" {
		t.Errorf("name = %q, want Bench Program", tpl.Name)
	}
	benchPress := false
	for _, d := range tpl.Schedule {
		if !strings.Contains(strings.ToLower(d.Label), "bench") {
			t.Errorf("label %q does not mention bench", d.Label)
		}
		if !strings.Contains(d.Label, "(from bench-program.pdf)") {
			t.Errorf("label %q does not name the source", d.Label)
		}
		for _, x := range d.Exercises {
			if strings.Contains(x.Name, "Bench Press") {
				benchPress = true
			}
			if x.MatchStrategy != StrategyFallback {
				t.Errorf("strategy = %s, want fallback", x.MatchStrategy)
			}
		}
	}
	if !benchPress {
		t.Error("fallback program has no bench press")
	}
	if !hasWarning(tpl.Warnings, WarnInputTooShort) || !hasWarning(tpl.Warnings, WarnFallback) {
		t.Errorf("warnings = %q", tpl.Warnings)
	}
}

func TestExtractRowShapedTableWithoutHeader(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	text := `Push Day
Barbell Bench Press 5 1 - 4 90 - 120 Sec
Incline Dumbbell Press 4 8 - 10 90 Sec
Cable Fly 3 10 - 12 60 Sec`
	res := e.Extract(text, "push.txt")

	if res.Format != models.FormatTable {
		t.Fatalf("format = %s, want table", res.Format)
	}
	if !hasWarning(res.Warnings, WarnNoTableHeader) {
		t.Errorf("warnings = %q, want %q", res.Warnings, WarnNoTableHeader)
	}
}

func TestFallbackConfidenceIsFixed(t *testing.T) {
	// Fallback results carry confidence.fallback, not the section score,
	// however many canned exercises the fallback program has.
	tests := []struct {
		name     string
		fallback float64
		want     float64
	}{
		{"default", 0, 0.1},
		{"configured", 0.25, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.fallback != 0 {
				opts.Confidence.Fallback = tt.fallback
			}
			e := New(opts, nil, nil)

			res := e.Extract("nothing to see", "leg-day.pdf")
			if res.Method != models.MethodFallback {
				t.Fatalf("method = %s, want fallback", res.Method)
			}
			if res.Confidence != tt.want {
				t.Errorf("confidence = %v, want %v", res.Confidence, tt.want)
			}
			if scored := e.Score(res.Days, e.Classify("nothing to see")); scored == tt.want {
				t.Errorf("section score %v equals the fixed fallback value", scored)
			}

			failed := e.ExtractFailed("leg-day.pdf", errors.New("corrupt"))
			if failed.Confidence != tt.want {
				t.Errorf("ExtractFailed confidence = %v, want %v", failed.Confidence, tt.want)
			}
		})
	}
}

func TestExtractKeywordScan(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	text := "Notes from coach about this block of training:\nheavy bench work on mondays\nsquats whenever you feel fresh"
	res := e.Extract(text, "")

	if res.Method != models.MethodKeywordScan {
		t.Fatalf("method = %s, want keyword_scan (days %+v)", res.Method, res.Days)
	}
	if len(res.Days) != 1 || len(res.Days[0].Exercises) != 2 {
		t.Fatalf("days = %+v", res.Days)
	}
	if !hasWarning(res.Warnings, WarnKeywordScan) || !hasWarning(res.Warnings, WarnNoStructure) {
		t.Errorf("warnings = %q", res.Warnings)
	}
	if res.Confidence != 0.44 {
		t.Errorf("confidence = %v, want 0.44", res.Confidence)
	}
}

func TestExtractProseFallsBack(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	res := e.Extract("This document talks about nutrition and sleep and has no exercises whatsoever in it at all.", "")
	if res.Method != models.MethodFallback {
		t.Fatalf("method = %s, want fallback", res.Method)
	}
	if !strings.HasSuffix(res.Days[0].Label, "(from untitled document)") {
		t.Errorf("label = %q", res.Days[0].Label)
	}
	if res.Days[0].Label != "Push (from untitled document)" {
		t.Errorf("label = %q, want push day", res.Days[0].Label)
	}
}

func TestExtractFailed(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	res := e.ExtractFailed("legs.pdf", errors.New("boom"))
	if res.Method != models.MethodFallback {
		t.Errorf("method = %s, want fallback", res.Method)
	}
	if len(res.Warnings) == 0 || res.Warnings[0] != WarnExtractionError+": boom" {
		t.Errorf("warnings = %q", res.Warnings)
	}
	if !strings.HasPrefix(res.Days[0].Label, "Leg Day 1") {
		t.Errorf("label = %q, want leg program", res.Days[0].Label)
	}
}

func TestFallbackKind(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"bench-program.pdf", FallbackBench},
		{"Press Program", FallbackBench},
		{"Leg_Day.docx", FallbackLegs},
		{"squats.txt", FallbackLegs},
		{"my plan.pdf", FallbackPushPullLegs},
		{"", FallbackPushPullLegs},
		{"legendary.pdf", FallbackPushPullLegs},
	}
	for _, tt := range tests {
		if got := FallbackKind(tt.title); got != tt.want {
			t.Errorf("FallbackKind(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestFallbackReturnsCopies(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	a := e.Fallback("bench.pdf")
	a[0].Exercises[0].Sets = 99
	b := e.Fallback("bench.pdf")
	if b[0].Exercises[0].Sets == 99 {
		t.Error("fallback program was mutated through a previous result")
	}
}

func TestOptionsOverride(t *testing.T) {
	text := "Squat 3x5 120s"

	def := New(DefaultOptions(), nil, nil).Extract(text, "")
	if def.Method != models.MethodFallback {
		t.Errorf("default method = %s, want fallback for short input", def.Method)
	}

	e := New(Options{MinTextLength: 5}, nil, nil)
	if got := e.Options().MinSectionLength; got != defaultMinSectionLength {
		t.Errorf("MinSectionLength = %d, want default %d", got, defaultMinSectionLength)
	}
	res := e.Extract(text, "")
	if res.Method != models.MethodSectionParse {
		t.Fatalf("method = %s, want section_parse", res.Method)
	}
	if x := res.Days[0].Exercises[0]; x.Name != "Squat" || x.RestSeconds != 120 {
		t.Errorf("exercise = %+v", x)
	}
}

func TestParseIdempotent(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	first, err := json.Marshal(e.Parse(twoDayText, "upper-lower.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, _ := json.Marshal(e.Parse(twoDayText, "upper-lower.txt"))
		if string(again) != string(first) {
			t.Fatalf("run %d differs:\n%s\n%s", i, again, first)
		}
	}
	other, _ := json.Marshal(New(DefaultOptions(), nil, nil).Parse(twoDayText, "upper-lower.txt"))
	if string(other) != string(first) {
		t.Error("a second engine produced different output")
	}
}

func TestParseConcurrent(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	inputs := []string{twoDayText, tableText, "hi there", ""}
	want := make([]string, len(inputs))
	for i, in := range inputs {
		b, _ := json.Marshal(e.Parse(in, "plan.txt"))
		want[i] = string(b)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				b, _ := json.Marshal(e.Parse(in, "plan.txt"))
				if string(b) != want[i] {
					errs <- in
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for in := range errs {
		t.Errorf("concurrent parse of %.20q differs", in)
	}
}
