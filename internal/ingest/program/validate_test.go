package program

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeRest(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5", 300},
		{"90", 90},
		{"90 - 120", 105},
		{"90-120 sec", 105},
		{"5-8", 420},
		{"2 min", 120},
		{"1.5 min", 90},
		{"3'", 180},
		{"45 sec", 45},
		{"45s", 45},
		{"rest: 60s", 60},
		{"Rest 2-3 min", 150},
		{"1:30", 90},
		{"2:00", 120},
		{"", 90},
		{"as needed", 90},
		{"1:75", 90},
	}
	for _, tt := range tests {
		if got := NormalizeRest(tt.in); got != tt.want {
			t.Errorf("NormalizeRest(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeReps(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"8 – 12", "8-12"},
		{"8-12", "8-12"},
		{" 5 ", "5"},
		{"AMRAP", "AMRAP"},
	}
	for _, tt := range tests {
		if got := NormalizeReps(tt.in); got != tt.want {
			t.Errorf("NormalizeReps(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1. Bench Press:", "Bench Press"},
		{"A1) Back Squat", "Back Squat"},
		{"- **Deadlift**", "Deadlift"},
		{"  Lat    Pulldown -", "Lat Pulldown"},
		{"• Face Pull", "Face Pull"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"Squat", "Barbell Bench Press", "Pull-Up", "Kniebeuge"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"ab",
		strings.Repeat("Press ", 10),
		"http://example.com/plan",
		"www.gym.io",
		"12 obj",
		"3 x 5",
		"!!!",
		"<b>Squat</b>",
	}
	for _, name := range invalid {
		err := ValidateName(name)
		if !errors.Is(err, ErrInvalidExercise) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidExercise", name, err)
		}
	}
}

func TestParseSetsBounds(t *testing.T) {
	for _, in := range []string{"1", "20"} {
		if _, err := parseSets(in); err != nil {
			t.Errorf("parseSets(%q) = %v, want nil", in, err)
		}
	}
	for _, in := range []string{"0", "21", "25", "x"} {
		if _, err := parseSets(in); !errors.Is(err, ErrInvalidExercise) {
			t.Errorf("parseSets(%q) = %v, want ErrInvalidExercise", in, err)
		}
	}
}
