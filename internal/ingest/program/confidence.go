package program

import (
	"math"

	"github.com/claude/freeplans/internal/models"
)

// Score estimates extraction quality in [0,1]. It is a heuristic signal,
// not a probability; acting on it is up to the caller.
func (e *Engine) Score(days []models.WorkoutDay, cls Classification) float64 {
	w := e.opts.Confidence
	total, valid := 0, 0
	for _, d := range days {
		for _, x := range d.Exercises {
			total++
			if ValidateName(x.Name) == nil {
				valid++
			}
		}
	}

	score := w.Base + math.Min(w.ExerciseCap, w.PerExercise*float64(total))
	if cls.TableDetected() {
		score += w.TableBonus
	}
	score += math.Min(w.ValidNameCap, w.PerValidName*float64(valid))
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return math.Round(v*1000) / 1000
}
