package program

// ConfidenceWeights are the heuristic weights of the confidence score.
// They were picked empirically; there is no labeled corpus behind them.
type ConfidenceWeights struct {
	Base         float64 `yaml:"base"`
	PerExercise  float64 `yaml:"per_exercise"`
	ExerciseCap  float64 `yaml:"exercise_cap"`
	TableBonus   float64 `yaml:"table_bonus"`
	PerValidName float64 `yaml:"per_valid_name"`
	ValidNameCap float64 `yaml:"valid_name_cap"`
	Fallback     float64 `yaml:"fallback"`
}

// Options holds the engine thresholds. Zero fields take the defaults.
type Options struct {
	MinTextLength        int               `yaml:"min_text_length"`
	MinSectionLength     int               `yaml:"min_section_length"`
	TableRowThreshold    int               `yaml:"table_row_threshold"`
	KeywordLineThreshold int               `yaml:"keyword_line_threshold"`
	MinLineLength        int               `yaml:"min_line_length"`
	MaxLineLength        int               `yaml:"max_line_length"`
	DefaultSets          int               `yaml:"default_sets"`
	DefaultReps          string            `yaml:"default_reps"`
	DefaultRestSeconds   int               `yaml:"default_rest_seconds"`
	Confidence           ConfidenceWeights `yaml:"confidence"`
}

const (
	defaultMinTextLength        = 50
	defaultMinSectionLength     = 30
	defaultTableRowThreshold    = 3
	defaultKeywordLineThreshold = 3
	defaultMinLineLength        = 3
	defaultMaxLineLength        = 200
	defaultSets                 = 3
	defaultReps                 = "8-12"
	defaultRestSeconds          = 90

	// maxKeywordScanEntries bounds the last-resort scan on very noisy input.
	maxKeywordScanEntries = 40
)

// DefaultOptions returns the built-in thresholds.
func DefaultOptions() Options {
	return Options{
		MinTextLength:        defaultMinTextLength,
		MinSectionLength:     defaultMinSectionLength,
		TableRowThreshold:    defaultTableRowThreshold,
		KeywordLineThreshold: defaultKeywordLineThreshold,
		MinLineLength:        defaultMinLineLength,
		MaxLineLength:        defaultMaxLineLength,
		DefaultSets:          defaultSets,
		DefaultReps:          defaultReps,
		DefaultRestSeconds:   defaultRestSeconds,
		Confidence: ConfidenceWeights{
			Base:         0.3,
			PerExercise:  0.05,
			ExerciseCap:  0.4,
			TableBonus:   0.2,
			PerValidName: 0.02,
			ValidNameCap: 0.3,
			Fallback:     0.1,
		},
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinTextLength <= 0 {
		o.MinTextLength = d.MinTextLength
	}
	if o.MinSectionLength <= 0 {
		o.MinSectionLength = d.MinSectionLength
	}
	if o.TableRowThreshold <= 0 {
		o.TableRowThreshold = d.TableRowThreshold
	}
	if o.KeywordLineThreshold <= 0 {
		o.KeywordLineThreshold = d.KeywordLineThreshold
	}
	if o.MinLineLength <= 0 {
		o.MinLineLength = d.MinLineLength
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = d.MaxLineLength
	}
	if o.DefaultSets < minSets || o.DefaultSets > maxSets {
		o.DefaultSets = d.DefaultSets
	}
	if o.DefaultReps == "" {
		o.DefaultReps = d.DefaultReps
	}
	if o.DefaultRestSeconds <= 0 {
		o.DefaultRestSeconds = d.DefaultRestSeconds
	}
	if o.Confidence == (ConfidenceWeights{}) {
		o.Confidence = d.Confidence
	}
	return o
}
