package corpus

import "math"

// BM25 parameters.
const (
	BM25K1 = 1.2
	BM25B  = 0.75
)

// bm25 is an Okapi BM25 index over tokenized documents.
type bm25 struct {
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgLen    float64
}

func newBM25(docs [][]string) *bm25 {
	idx := &bm25{
		termFreqs: make([]map[string]int, len(docs)),
		docLens:   make([]int, len(docs)),
		docFreq:   make(map[string]int),
	}
	total := 0
	for i, tokens := range docs {
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			idx.docFreq[t]++
		}
		idx.termFreqs[i] = tf
		idx.docLens[i] = len(tokens)
		total += len(tokens)
	}
	if len(docs) > 0 {
		idx.avgLen = float64(total) / float64(len(docs))
	}
	return idx
}

// idf is ln(1 + (N-n+0.5)/(n+0.5)), which stays positive for terms that
// appear in most documents.
func (b *bm25) idf(term string) float64 {
	n := float64(b.docFreq[term])
	N := float64(len(b.termFreqs))
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// scores returns the BM25 score of every document for the query, in
// document order. Repeated query terms count once per occurrence.
func (b *bm25) scores(query []string) []float64 {
	out := make([]float64, len(b.termFreqs))
	if b.avgLen == 0 {
		return out
	}
	for _, term := range query {
		if b.docFreq[term] == 0 {
			continue
		}
		idf := b.idf(term)
		for i, tf := range b.termFreqs {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			norm := BM25K1 * (1 - BM25B + BM25B*float64(b.docLens[i])/b.avgLen)
			out[i] += idf * f * (BM25K1 + 1) / (f + norm)
		}
	}
	return out
}
