package program

import (
	"strings"

	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/vocab"
)

// Fallback program kinds selected from the source title.
const (
	FallbackBench         = "bench"
	FallbackLegs          = "legs"
	FallbackPushPullLegs  = "push_pull_legs"
	fallbackUntitledLabel = "untitled document"
)

type cannedExercise struct {
	name  string
	sets  int
	reps  string
	rest  int
	notes string
}

type cannedDay struct {
	label     string
	exercises []cannedExercise
}

// FallbackKind picks the canned program matching the intent of a title.
func FallbackKind(title string) string {
	for _, w := range strings.Fields(vocab.Normalize(title)) {
		if strings.HasPrefix(w, "bench") || strings.HasPrefix(w, "press") {
			return FallbackBench
		}
	}
	for _, w := range strings.Fields(vocab.Normalize(title)) {
		if w == "leg" || w == "legs" || strings.HasPrefix(w, "squat") {
			return FallbackLegs
		}
	}
	return FallbackPushPullLegs
}

// Fallback returns a fresh copy of the canned program for title. Each day
// label names the source so the result can be traced back to its document.
func (e *Engine) Fallback(title string) []models.WorkoutDay {
	var program []cannedDay
	switch FallbackKind(title) {
	case FallbackBench:
		program = benchProgram()
	case FallbackLegs:
		program = legProgram()
	default:
		program = pushPullLegsProgram()
	}

	source := strings.TrimSpace(title)
	if source == "" {
		source = fallbackUntitledLabel
	}
	days := make([]models.WorkoutDay, 0, len(program))
	for _, d := range program {
		day := models.WorkoutDay{
			Label:     d.label + " (from " + source + ")",
			Exercises: make([]models.ExerciseEntry, 0, len(d.exercises)),
		}
		for _, x := range d.exercises {
			day.Exercises = append(day.Exercises, models.ExerciseEntry{
				Name:          x.name,
				Sets:          x.sets,
				Reps:          x.reps,
				RestSeconds:   x.rest,
				Notes:         x.notes,
				MatchStrategy: StrategyFallback,
			})
		}
		days = append(days, day)
	}
	return days
}

func benchProgram() []cannedDay {
	return []cannedDay{
		{"Bench Day 1 - Heavy", []cannedExercise{
			{"Barbell Bench Press", 5, "3-5", 180, "work up to a top set at RPE 8"},
			{"Incline Dumbbell Press", 3, "8-10", 120, ""},
			{"Barbell Row", 4, "6-8", 120, ""},
			{"Triceps Pushdown", 3, "10-12", 60, ""},
		}},
		{"Bench Day 2 - Volume", []cannedExercise{
			{"Barbell Bench Press", 4, "8-10", 120, "pause each rep on the chest"},
			{"Close-Grip Bench Press", 3, "8", 120, ""},
			{"Overhead Press", 3, "8-10", 90, ""},
			{"Face Pull", 3, "12-15", 60, ""},
		}},
		{"Bench Day 3 - Support", []cannedExercise{
			{"Back Squat", 4, "6-8", 150, ""},
			{"Romanian Deadlift", 3, "8-10", 120, ""},
			{"Pull-Up", 3, "6-10", 120, ""},
			{"Hanging Leg Raise", 3, "10-15", 60, ""},
		}},
	}
}

func legProgram() []cannedDay {
	return []cannedDay{
		{"Leg Day 1 - Squat", []cannedExercise{
			{"Back Squat", 5, "5", 180, ""},
			{"Leg Press", 3, "10-12", 120, ""},
			{"Walking Lunge", 3, "10-12", 90, "reps per leg"},
			{"Calf Raise", 4, "12-15", 60, ""},
		}},
		{"Leg Day 2 - Hinge", []cannedExercise{
			{"Romanian Deadlift", 4, "6-8", 150, ""},
			{"Bulgarian Split Squat", 3, "8-10", 90, "reps per leg"},
			{"Leg Curl", 3, "10-12", 60, ""},
			{"Hip Thrust", 3, "8-12", 90, ""},
		}},
		{"Leg Day 3 - Upper", []cannedExercise{
			{"Bench Press", 4, "6-8", 120, ""},
			{"Barbell Row", 4, "8-10", 90, ""},
			{"Overhead Press", 3, "8-10", 90, ""},
			{"Lat Pulldown", 3, "10-12", 60, ""},
		}},
	}
}

func pushPullLegsProgram() []cannedDay {
	return []cannedDay{
		{"Push", []cannedExercise{
			{"Bench Press", 4, "6-8", 120, ""},
			{"Overhead Press", 3, "8-10", 90, ""},
			{"Incline Dumbbell Press", 3, "10-12", 90, ""},
			{"Triceps Pushdown", 3, "12-15", 60, ""},
		}},
		{"Pull", []cannedExercise{
			{"Deadlift", 3, "5", 180, ""},
			{"Pull-Up", 4, "6-10", 120, ""},
			{"Barbell Row", 3, "8-10", 90, ""},
			{"Bicep Curl", 3, "10-12", 60, ""},
		}},
		{"Legs", []cannedExercise{
			{"Back Squat", 4, "6-8", 150, ""},
			{"Romanian Deadlift", 3, "8-10", 120, ""},
			{"Leg Press", 3, "10-12", 90, ""},
			{"Calf Raise", 4, "12-15", 60, ""},
		}},
	}
}
