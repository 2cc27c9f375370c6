package program

import (
	"errors"
	"testing"

	"github.com/claude/freeplans/internal/models"
)

func TestParseLine(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)

	tests := []struct {
		line string
		want models.ExerciseEntry
	}{
		{
			"Barbell Bench Press 5 1 - 4 90 - 120 Sec",
			models.ExerciseEntry{Name: "Barbell Bench Press", Sets: 5, Reps: "1-4", RestSeconds: 105, MatchStrategy: StrategyTableRow},
		},
		{
			"Incline Dumbbell Press 4 8 - 10 2 min",
			models.ExerciseEntry{Name: "Incline Dumbbell Press", Sets: 4, Reps: "8-10", RestSeconds: 120, MatchStrategy: StrategyTableRow},
		},
		{
			"Squat 3x8-10 90s",
			models.ExerciseEntry{Name: "Squat", Sets: 3, Reps: "8-10", RestSeconds: 90, MatchStrategy: StrategyCompact},
		},
		{
			"Leg Press 4 x 10 - 2 min rest",
			models.ExerciseEntry{Name: "Leg Press", Sets: 4, Reps: "10", RestSeconds: 120, MatchStrategy: StrategyCompact},
		},
		{
			"Walking Lunge 3 x 12-15 - 60s",
			models.ExerciseEntry{Name: "Walking Lunge", Sets: 3, Reps: "12-15", RestSeconds: 60, MatchStrategy: StrategyCompact},
		},
		{
			"1. Romanian Deadlift 3x8 2:00",
			models.ExerciseEntry{Name: "Romanian Deadlift", Sets: 3, Reps: "8", RestSeconds: 120, MatchStrategy: StrategyCompact},
		},
		{
			"Bench Press: 4 sets x 8-10 reps, rest 2 min",
			models.ExerciseEntry{Name: "Bench Press", Sets: 4, Reps: "8-10", RestSeconds: 120, MatchStrategy: StrategyAnnotated},
		},
		{
			"Bench Press (4x8) rest 90 sec",
			models.ExerciseEntry{Name: "Bench Press", Sets: 4, Reps: "8", RestSeconds: 90, MatchStrategy: StrategyAnnotated},
		},
		{
			"Lat Pulldown | 3 | 10-12 | 60s | squeeze at the bottom",
			models.ExerciseEntry{Name: "Lat Pulldown", Sets: 3, Reps: "10-12", RestSeconds: 60, Notes: "squeeze at the bottom", MatchStrategy: StrategyDelimited},
		},
		{
			"Face Pulls",
			models.ExerciseEntry{Name: "Face Pulls", Sets: 3, Reps: "8-12", RestSeconds: 90, MatchStrategy: StrategyBareName},
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := e.ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLine = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLineRejectsSetsOutOfRange(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	for _, line := range []string{
		"Bench Press 0x5 90s",
		"Squat 25x5 60s",
		"Barbell Row 25 8 90",
	} {
		_, err := e.ParseLine(line)
		if !errors.Is(err, ErrInvalidExercise) {
			t.Errorf("ParseLine(%q) error = %v, want ErrInvalidExercise", line, err)
		}
	}
}

func TestParseLineNoMatch(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	for _, line := range []string{
		"",
		"ab",
		"Rest between the sets",
		"Exercise Sets Reps Rest",
		"|---|---|---|",
		"Remember to warm up properly before lifting heavy",
	} {
		_, err := e.ParseLine(line)
		if !errors.Is(err, ErrNoMatch) {
			t.Errorf("ParseLine(%q) error = %v, want ErrNoMatch", line, err)
		}
	}
}

func TestParseLineRejectsJunkNames(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	for _, line := range []string{
		"www.example.com 3x10 60s",
		"Sets 3x10 60s",
	} {
		_, err := e.ParseLine(line)
		if !errors.Is(err, ErrInvalidExercise) {
			t.Errorf("ParseLine(%q) error = %v, want ErrInvalidExercise", line, err)
		}
	}
}

// A matched but rejected line is not retried by later strategies.
func TestParseLineNoBacktracking(t *testing.T) {
	e := New(DefaultOptions(), nil, nil)
	_, err := e.ParseLine("Deadlift 30x5 90s")
	if !errors.Is(err, ErrInvalidExercise) {
		t.Fatalf("error = %v, want ErrInvalidExercise", err)
	}
}
