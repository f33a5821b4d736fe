package scoring

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// WeightTolerance is the allowed deviation of a weight group's sum from 1.
const WeightTolerance = 1e-6

// DimensionWeights weighs the three dimension scores into the final score.
type DimensionWeights struct {
	Sentence float64 `koanf:"sentence"`
	Keyword  float64 `koanf:"keyword"`
	Numeric  float64 `koanf:"numeric"`
}

// SentenceWeights weighs the free-text fields.
type SentenceWeights struct {
	Intro1    float64 `koanf:"intro1"`
	Intro2    float64 `koanf:"intro2"`
	Intro3    float64 `koanf:"intro3"`
	Portfolio float64 `koanf:"portfolio"`
}

// KeywordWeights weighs the categorical fields.
type KeywordWeights struct {
	Major         float64 `koanf:"major"`
	Certification float64 `koanf:"certification"`
	Award         float64 `koanf:"award"`
	TechStack     float64 `koanf:"tech_stack"`
}

// NumericWeights weighs the scalar and ordinal fields.
type NumericWeights struct {
	Language    float64 `koanf:"language"`
	Proficiency float64 `koanf:"proficiency"`
	GPA         float64 `koanf:"gpa"`
}

// Options holds the per-strategy parameters.
type Options struct {
	Intro2KeywordWeight    float64 `koanf:"intro2_keyword_weight" validate:"gte=0,lte=1"`
	PortfolioChunkSize     int     `koanf:"portfolio_chunk_size" validate:"gte=16,lte=8192"`
	TechJaccardWeight      float64 `koanf:"tech_jaccard_weight" validate:"gte=0,lte=1"`
	TechEmbeddingWeight    float64 `koanf:"tech_embedding_weight" validate:"gte=0,lte=1"`
	LanguageThreshold      float64 `koanf:"language_threshold" validate:"gt=0,lte=990"`
	OPIcRequirement        string  `koanf:"opic_requirement" validate:"oneof=AL IH IM3 IM2 IM1 IL NH NM NL"`
	ProficiencyRequirement string  `koanf:"proficiency_requirement" validate:"required"`
	ExpectedGPA            float64 `koanf:"expected_gpa" validate:"gte=0,lte=4.5"`
	MaxGPAGap              float64 `koanf:"max_gpa_gap" validate:"gt=0,lte=4.5"`
	MinScore               float64 `koanf:"min_score" validate:"gte=0,lte=1"`
}

// Config is a complete scoring configuration. Use NewConfig or Profile to
// obtain a validated Config.
type Config struct {
	Name     string           `koanf:"name"`
	Weights  DimensionWeights `koanf:"weights"`
	Sentence SentenceWeights  `koanf:"sentence"`
	Keyword  KeywordWeights   `koanf:"keyword"`
	Numeric  NumericWeights   `koanf:"numeric"`
	Options  Options          `koanf:"options"`
}

var validate = validator.New()

// NewConfig validates cfg and returns a copy. Invalid configurations are
// rejected with a *ConfigError, never corrected.
func NewConfig(cfg Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every weight group is non-negative and sums to 1,
// and that every option is in range.
func (c *Config) Validate() error {
	groups := []struct {
		name    string
		weights []float64
	}{
		{"weights", []float64{c.Weights.Sentence, c.Weights.Keyword, c.Weights.Numeric}},
		{"sentence", []float64{c.Sentence.Intro1, c.Sentence.Intro2, c.Sentence.Intro3, c.Sentence.Portfolio}},
		{"keyword", []float64{c.Keyword.Major, c.Keyword.Certification, c.Keyword.Award, c.Keyword.TechStack}},
		{"numeric", []float64{c.Numeric.Language, c.Numeric.Proficiency, c.Numeric.GPA}},
		{"tech", []float64{c.Options.TechJaccardWeight, c.Options.TechEmbeddingWeight}},
	}
	for _, g := range groups {
		if err := checkGroup(g.name, g.weights); err != nil {
			return err
		}
	}
	if err := validate.Struct(c.Options); err != nil {
		return &ConfigError{Group: "options", Detail: err.Error()}
	}
	return nil
}

func checkGroup(name string, weights []float64) error {
	var sum float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return &ConfigError{Group: name, Detail: fmt.Sprintf("negative or invalid weight %v", w)}
		}
		sum += w
	}
	if math.Abs(sum-1) > WeightTolerance {
		return &ConfigError{Group: name, Detail: fmt.Sprintf("weights sum to %.6f, want 1", sum)}
	}
	return nil
}
