package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Corpus index
	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labmatch_index_builds_total",
			Help: "Total number of corpus index builds",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labmatch_index_build_duration_seconds",
			Help:    "Duration of corpus index builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)

	IndexedLabs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "labmatch_indexed_labs",
			Help: "Number of labs in the published corpus index",
		},
	)

	// Candidate generation
	CandidateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labmatch_candidate_requests_total",
			Help: "Total number of candidate generation requests",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	CandidateCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labmatch_candidates",
			Help:    "Number of candidates produced per request",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 30, 50, 100},
		},
	)

	// Reranking
	RerankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labmatch_rerank_duration_seconds",
			Help:    "Duration of reranking requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScoredLabs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labmatch_scored_labs_total",
			Help: "Total number of labs scored by the reranker",
		},
		[]string{"result"}, // "kept", "filtered"
	)

	// Embeddings
	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labmatch_embedding_cache_lookups_total",
			Help: "Total number of embedding cache lookups",
		},
		[]string{"tier", "result"}, // tier: "memory", "store"; result: "hit", "miss"
	)

	EmbeddingErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labmatch_embedding_errors_total",
			Help: "Total number of failed embedding backend calls",
		},
	)

	EmbeddedTexts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labmatch_embedded_texts_total",
			Help: "Total number of texts sent to the embedding backend",
		},
	)
)

// RecordIndexBuild records a corpus index build.
func RecordIndexBuild(labs int, duration time.Duration, err error) {
	IndexBuildDuration.Observe(duration.Seconds())
	if err != nil {
		IndexBuilds.WithLabelValues("error").Inc()
		return
	}
	IndexBuilds.WithLabelValues("ok").Inc()
	IndexedLabs.Set(float64(labs))
}

// RecordCandidates records the outcome of a candidate generation request.
func RecordCandidates(count int, err error) {
	switch {
	case err != nil:
		CandidateRequests.WithLabelValues("error").Inc()
		return
	case count == 0:
		CandidateRequests.WithLabelValues("empty").Inc()
	default:
		CandidateRequests.WithLabelValues("ok").Inc()
	}
	CandidateCount.Observe(float64(count))
}

// RecordRerank records a reranking request.
func RecordRerank(kept, filtered int, duration time.Duration) {
	RerankDuration.Observe(duration.Seconds())
	ScoredLabs.WithLabelValues("kept").Add(float64(kept))
	ScoredLabs.WithLabelValues("filtered").Add(float64(filtered))
}

// RecordCacheLookup records embedding cache hits and misses for a tier.
func RecordCacheLookup(tier string, hits, misses int) {
	if hits > 0 {
		EmbeddingCacheLookups.WithLabelValues(tier, "hit").Add(float64(hits))
	}
	if misses > 0 {
		EmbeddingCacheLookups.WithLabelValues(tier, "miss").Add(float64(misses))
	}
}

// RecordEmbedding records a call to the embedding backend.
func RecordEmbedding(texts int, err error) {
	if err != nil {
		EmbeddingErrors.Inc()
		return
	}
	EmbeddedTexts.Add(float64(texts))
}
