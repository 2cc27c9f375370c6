package program

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claude/freeplans/internal/models"
)

// DefaultProgramName is used when the source title yields no usable name.
const DefaultProgramName = "Imported Workout Program"

// Difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Goals inferred from rep ranges.
const (
	GoalStrength    = "strength"
	GoalHypertrophy = "hypertrophy"
	GoalEndurance   = "endurance"
	GoalGeneral     = "general fitness"
)

var (
	templateNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("freeplans.workout_template"))

	nameSepRe = regexp.MustCompile(`[\s_\-.+]+`)
	extRe     = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)
	repsNumRe = regexp.MustCompile(`\d+`)
)

// Canonicalizer maps an exercise name to a canonical name, or "" when unsure.
type Canonicalizer interface {
	Canonicalize(name string) string
}

// TemplateID derives the template ID from its source so that the same
// document always maps to the same template.
func TemplateID(text, title string) uuid.UUID {
	return uuid.NewSHA1(templateNamespace, []byte(title+"\x00"+text))
}

// Assemble builds the final template from an extraction result.
func (e *Engine) Assemble(res *models.ExtractionResult, text, title string) *models.WorkoutTemplate {
	id := TemplateID(text, title)
	tpl := &models.WorkoutTemplate{
		ID:          id,
		Name:        ProgramName(title),
		SourceTitle: title,
		DaysPerWeek: len(res.Days),
		Schedule:    make([]models.TemplateDay, 0, len(res.Days)),
		Format:      res.Format,
		Confidence:  res.Confidence,
		Method:      res.Method,
		Warnings:    append([]string{}, res.Warnings...),
	}

	exercises := 0
	for i, d := range res.Days {
		day := models.TemplateDay{
			DayNumber:  i + 1,
			Label:      d.Label,
			IsOptional: d.IsOptional,
			Exercises:  make([]models.TemplateExercise, 0, len(d.Exercises)),
		}
		for j, x := range d.Exercises {
			te := models.TemplateExercise{
				ID:            uuid.NewSHA1(id, []byte(fmt.Sprintf("%d/%d", i+1, j+1))),
				Order:         j + 1,
				Name:          x.Name,
				Sets:          x.Sets,
				Reps:          x.Reps,
				RestSeconds:   x.RestSeconds,
				Notes:         x.Notes,
				MatchStrategy: x.MatchStrategy,
			}
			if e.canon != nil {
				te.Canonical = e.canon.Canonicalize(x.Name)
			}
			day.Exercises = append(day.Exercises, te)
		}
		exercises += len(d.Exercises)
		tpl.Schedule = append(tpl.Schedule, day)
	}

	tpl.Equipment = e.inferEquipment(res.Days)
	tpl.Difficulty = inferDifficulty(res.Days)
	tpl.Goals = inferGoals(res.Days)
	tpl.Description = describe(tpl.DaysPerWeek, exercises, title, res.Method)
	return tpl
}

// ProgramName turns a file name or title into a display name:
// "ppl_program-v2.pdf" becomes "Ppl Program V2".
func ProgramName(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		return DefaultProgramName
	}
	name = filepath.Base(filepath.ToSlash(name))
	if ext := filepath.Ext(name); extRe.MatchString(ext) {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.TrimSpace(nameSepRe.ReplaceAllString(name, " "))
	if name == "" || name == "/" || name == "." {
		return DefaultProgramName
	}
	return cases.Title(language.English).String(name)
}

func describe(days, exercises int, title, method string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d-day program with %d exercises", days, exercises)
	if title != "" {
		fmt.Fprintf(&sb, ", imported from %s", title)
	}
	if method == models.MethodFallback {
		sb.WriteString(". No exercises could be read from the document; this is a generic starter program")
	}
	sb.WriteString(".")
	return sb.String()
}

func (e *Engine) inferEquipment(days []models.WorkoutDay) []string {
	found := map[string]bool{}
	for _, d := range days {
		for _, x := range d.Exercises {
			for _, tag := range e.vocab.EquipmentTags(x.Name) {
				found[tag] = true
			}
		}
	}
	var out []string
	for _, tag := range e.vocab.EquipmentOrder() {
		if found[tag] {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		out = []string{e.vocab.GenericEquipment()}
	}
	return out
}

// inferDifficulty rates a program from its frequency and average working sets per day.
func inferDifficulty(days []models.WorkoutDay) string {
	if len(days) == 0 {
		return DifficultyBeginner
	}
	sets := 0
	for _, d := range days {
		for _, x := range d.Exercises {
			sets += x.Sets
		}
	}
	avg := float64(sets) / float64(len(days))
	switch {
	case len(days) >= 5 || avg >= 24:
		return DifficultyAdvanced
	case len(days) <= 3 && avg <= 12:
		return DifficultyBeginner
	default:
		return DifficultyIntermediate
	}
}

// inferGoals maps rep targets to training goals: up to 5 reps is strength,
// 6 to 12 hypertrophy, 13 and above endurance.
func inferGoals(days []models.WorkoutDay) []string {
	var strength, hypertrophy, endurance bool
	for _, d := range days {
		for _, x := range d.Exercises {
			reps, ok := repTarget(x.Reps)
			if !ok {
				continue
			}
			switch {
			case reps <= 5:
				strength = true
			case reps <= 12:
				hypertrophy = true
			default:
				endurance = true
			}
		}
	}
	var goals []string
	if strength {
		goals = append(goals, GoalStrength)
	}
	if hypertrophy {
		goals = append(goals, GoalHypertrophy)
	}
	if endurance {
		goals = append(goals, GoalEndurance)
	}
	if len(goals) == 0 {
		goals = []string{GoalGeneral}
	}
	return goals
}

// repTarget returns the midpoint of a reps value ("8-12" is 10).
func repTarget(reps string) (int, bool) {
	nums := repsNumRe.FindAllString(reps, 2)
	if len(nums) == 0 {
		return 0, false
	}
	lo, _ := strconv.Atoi(nums[0])
	hi := lo
	if len(nums) == 2 {
		hi, _ = strconv.Atoi(nums[1])
	}
	if lo <= 0 && hi <= 0 {
		return 0, false
	}
	return (lo + hi) / 2, true
}
