package similarity

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/tokenize"
)

// Major compares a student's major with a lab's department using tiers
// checked in order: exact match 1.0, same group 0.8, substring either way
// 0.6, both engineering 0.5, otherwise 0.
type Major struct{}

var _ Strategy = Major{}

func (Major) Name() string { return "major_rule" }

func (Major) Similarity(_ context.Context, a, b string) (float64, error) {
	if blank(a) || blank(b) {
		return Neutral, nil
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return 1, nil
	}
	groupA, okA := MajorGroup(a)
	groupB, okB := MajorGroup(b)
	if okA && okB && groupA == groupB {
		return 0.8, nil
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.6, nil
	}
	if okA && okB && engineeringGroups[groupA] && engineeringGroups[groupB] {
		return 0.5, nil
	}
	return 0, nil
}

// Certification matches a comma separated list of student certifications
// against a lab's requirements. Each student certification takes its best
// match (exact 1.0, substring 0.7, otherwise token Jaccard) scaled by its
// type weight; the result is the mean over student certifications.
//
// An empty student list scores 0. An empty lab list scores Neutral.
type Certification struct{}

var _ Strategy = Certification{}

func (Certification) Name() string { return "weighted_jaccard" }

func (Certification) Similarity(_ context.Context, a, b string) (float64, error) {
	student := tokenize.SplitList(a)
	required := tokenize.SplitList(b)
	if len(student) == 0 {
		return 0, nil
	}
	if len(required) == 0 {
		return Neutral, nil
	}

	var total float64
	for _, cert := range student {
		weight := CertificationWeight(cert)
		best := 0.0
		for _, req := range required {
			best = max(best, certificationMatch(cert, req)*weight)
		}
		total += best
	}
	return clamp01(total / float64(len(student))), nil
}

func certificationMatch(cert, req string) float64 {
	cert, req = strings.ToLower(cert), strings.ToLower(req)
	switch {
	case cert == req:
		return 1
	case strings.Contains(cert, req) || strings.Contains(req, cert):
		return 0.7
	default:
		return tokenize.Jaccard(tokenize.NewSet(tokenize.Tokenize(cert)), tokenize.NewSet(tokenize.Tokenize(req)))
	}
}

// AwardLengthThreshold is the mean rune length above which Award uses
// TF-IDF instead of token Jaccard.
const AwardLengthThreshold = 20

// Award compares award descriptions. Longer texts use TF-IDF cosine; short
// ones use token Jaccard because TF-IDF is unstable on a few words.
type Award struct{}

var _ Strategy = Award{}

func (Award) Name() string { return "tfidf_or_jaccard" }

func (Award) Similarity(_ context.Context, a, b string) (float64, error) {
	if blank(a) || blank(b) {
		return Neutral, nil
	}
	meanLen := float64(utf8.RuneCountInString(a)+utf8.RuneCountInString(b)) / 2
	tokensA, tokensB := tokenize.Tokenize(a), tokenize.Tokenize(b)
	if meanLen > AwardLengthThreshold {
		return TFIDFCosine(tokensA, tokensB), nil
	}
	return tokenize.Jaccard(tokenize.NewSet(tokensA), tokenize.NewSet(tokensB)), nil
}

// Default weights for TechStack.
const (
	DefaultTechJaccardWeight   = 0.6
	DefaultTechEmbeddingWeight = 0.4
)

// TechStack compares technology lists by blending entry Jaccard with the
// cosine of the mean entry embeddings, so related tools that do not match
// literally still earn credit.
type TechStack struct {
	Embedder        ai.Embedder
	JaccardWeight   float64
	EmbeddingWeight float64
}

var _ Strategy = (*TechStack)(nil)

func (t *TechStack) Name() string { return "jaccard_embedding_hybrid" }

func (t *TechStack) Similarity(ctx context.Context, a, b string) (float64, error) {
	techA := techTerms(a)
	techB := techTerms(b)
	if len(techA) == 0 || len(techB) == 0 {
		return Neutral, nil
	}
	jaccard := tokenize.Jaccard(tokenize.NewSet(techA), tokenize.NewSet(techB))

	vectors, err := embed(ctx, t.Embedder, append(append([]string{}, techA...), techB...))
	if err != nil {
		return 0, err
	}
	cosine := CosineVectors(MeanVector(vectors[:len(techA)]), MeanVector(vectors[len(techA):]))
	return clamp01(t.JaccardWeight*jaccard + t.EmbeddingWeight*cosine), nil
}

// techTerms splits a technology list into distinct normalized entries in
// first-seen order.
func techTerms(s string) []string {
	entries := tokenize.SplitList(s)
	seen := make(map[string]bool, len(entries))
	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		e = tokenize.Normalize(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		terms = append(terms, e)
	}
	return terms
}
