package tokenize

// Set is a set of tokens.
type Set map[string]struct{}

// NewSet builds a set from tokens.
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Either set being empty yields 0.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for t := range small {
		if _, ok := large[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// TermJaccard is Jaccard over the stop-word filtered terms of two texts.
func TermJaccard(a, b string) float64 {
	return Jaccard(NewSet(Terms(a)), NewSet(Terms(b)))
}
