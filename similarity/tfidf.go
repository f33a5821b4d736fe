package similarity

import "math"

// TFIDFCosine returns the cosine between the TF-IDF vectors of two token
// lists, treating the pair as a two-document corpus. Raw term counts are
// weighted by the smoothed idf ln((1+n)/(1+df)) + 1.
func TFIDFCosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	tfA, tfB := termCounts(a), termCounts(b)

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if tfA[term] > 0 {
			df++
		}
		if tfB[term] > 0 {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	var dot, normA, normB float64
	for term, count := range tfA {
		w := count * idf(term)
		normA += w * w
		if other, ok := tfB[term]; ok {
			dot += w * other * idf(term)
		}
	}
	for term, count := range tfB {
		w := count * idf(term)
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func termCounts(tokens []string) map[string]float64 {
	counts := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
