package similarity

import (
	"context"
	"strings"
)

// Neutral is returned when there is nothing to compare. A neutral score
// treats missing data as average rather than as a mismatch.
const Neutral = 0.5

// Strategy compares two values and returns a similarity in [0, 1].
type Strategy interface {
	// Name identifies the strategy in score breakdowns.
	Name() string

	// Similarity compares a (the student side) with b (the lab side).
	Similarity(ctx context.Context, a, b string) (float64, error)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
