package similarity

import (
	"context"
	"strconv"
	"strings"
)

// Numeric defaults.
const (
	DefaultLanguageThreshold = 800.0
	DefaultProficiency       = "중"
	DefaultExpectedGPA       = 3.5
	DefaultMaxGPAGap         = 0.5
	MaxGPA                   = 4.5
)

// languageFloorRatio is the score/threshold ratio at and below which a
// language score is worth nothing.
const languageFloorRatio = 0.7

// LanguageScore compares a student's test score (number or OPIc grade)
// with a required score. A blank requirement uses Threshold. Meeting the
// requirement scores 1; a ratio below 0.7 scores 0; ratios in between are
// linear. An unparseable student score is a mismatch and scores 0.
type LanguageScore struct {
	Threshold float64
}

var _ Strategy = LanguageScore{}

func (LanguageScore) Name() string { return "threshold_linear" }

func (l LanguageScore) Similarity(_ context.Context, a, b string) (float64, error) {
	if blank(a) {
		return Neutral, nil
	}
	student, ok := ParseLanguageScore(a)
	if !ok {
		return 0, nil
	}
	required := l.Threshold
	if !blank(b) {
		if v, ok := ParseLanguageScore(b); ok {
			required = v
		}
	}
	if required <= 0 {
		required = DefaultLanguageThreshold
	}
	return LanguageRatioScore(student / required), nil
}

// LanguageRatioScore maps a score/threshold ratio onto [0, 1].
func LanguageRatioScore(ratio float64) float64 {
	switch {
	case ratio >= 1:
		return 1
	case ratio < languageFloorRatio:
		return 0
	default:
		return clamp01((ratio - languageFloorRatio) / (1 - languageFloorRatio))
	}
}

// Proficiency compares ordinal proficiency levels. A blank requirement uses
// Required. Meeting the requirement scores 1; shortfalls are bucketed by
// gap. Unknown levels score 0.
type Proficiency struct {
	Required string
}

var _ Strategy = Proficiency{}

func (Proficiency) Name() string { return "ordinal_gap" }

func (p Proficiency) Similarity(_ context.Context, a, b string) (float64, error) {
	if blank(a) {
		return Neutral, nil
	}
	required := b
	if blank(required) {
		required = p.Required
	}
	if blank(required) {
		required = DefaultProficiency
	}
	student, ok := ProficiencyLevel(a)
	if !ok {
		return 0, nil
	}
	want, ok := ProficiencyLevel(required)
	if !ok {
		return 0, nil
	}
	return ProficiencyGapScore(want - student), nil
}

// ProficiencyGapScore buckets the shortfall between required and actual
// level values.
func ProficiencyGapScore(gap float64) float64 {
	const eps = 1e-9
	switch {
	case gap <= 0:
		return 1
	case gap <= 0.15+eps:
		return 0.9
	case gap <= 0.30+eps:
		return 0.7
	case gap <= 0.45+eps:
		return 0.4
	default:
		return 0
	}
}

// GPA compares a student's GPA with an expectation. A blank expectation
// uses Expected. Meeting it scores 1; shortfalls decay linearly to 0 at
// MaxGap and never go negative.
type GPA struct {
	Expected float64
	MaxGap   float64
}

var _ Strategy = GPA{}

func (GPA) Name() string { return "linear_decay" }

func (g GPA) Similarity(_ context.Context, a, b string) (float64, error) {
	if blank(a) {
		return Neutral, nil
	}
	student, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil || student < 0 || student > MaxGPA {
		return 0, nil
	}
	expected := g.Expected
	if !blank(b) {
		if v, err := strconv.ParseFloat(strings.TrimSpace(b), 64); err == nil {
			expected = v
		}
	}
	return GPAScore(student, expected, g.MaxGap), nil
}

// GPAScore returns 1 when gpa meets expected and decays linearly to 0 at
// expected-maxGap.
func GPAScore(gpa, expected, maxGap float64) float64 {
	if gpa >= expected {
		return 1
	}
	if maxGap <= 0 {
		return 0
	}
	return clamp01(1 - (expected-gpa)/maxGap)
}

// FormatGPA renders a GPA for Strategy comparison.
func FormatGPA(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
