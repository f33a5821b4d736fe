package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordIndexBuild(t *testing.T) {
	okBefore := testutil.ToFloat64(IndexBuilds.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(IndexBuilds.WithLabelValues("error"))

	RecordIndexBuild(12, 50*time.Millisecond, nil)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(IndexBuilds.WithLabelValues("ok")))
	assert.Equal(t, 12.0, testutil.ToFloat64(IndexedLabs))

	RecordIndexBuild(0, time.Millisecond, errors.New("boom"))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(IndexBuilds.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(IndexedLabs), "failed builds keep the published size")
}

func TestRecordCandidates(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		err     error
		outcome string
	}{
		{"candidates found", 14, nil, "ok"},
		{"no candidates", 0, nil, "empty"},
		{"failure", 0, errors.New("backend down"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CandidateRequests.WithLabelValues(tt.outcome))
			RecordCandidates(tt.count, tt.err)
			assert.Equal(t, before+1, testutil.ToFloat64(CandidateRequests.WithLabelValues(tt.outcome)))
		})
	}
}

func TestRecordRerank(t *testing.T) {
	kept := testutil.ToFloat64(ScoredLabs.WithLabelValues("kept"))
	filtered := testutil.ToFloat64(ScoredLabs.WithLabelValues("filtered"))

	RecordRerank(5, 2, 3*time.Millisecond)

	assert.Equal(t, kept+5, testutil.ToFloat64(ScoredLabs.WithLabelValues("kept")))
	assert.Equal(t, filtered+2, testutil.ToFloat64(ScoredLabs.WithLabelValues("filtered")))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(EmbeddingCacheLookups.WithLabelValues("memory", "hit"))
	misses := testutil.ToFloat64(EmbeddingCacheLookups.WithLabelValues("memory", "miss"))

	RecordCacheLookup("memory", 3, 1)
	RecordCacheLookup("memory", 0, 0)

	assert.Equal(t, hits+3, testutil.ToFloat64(EmbeddingCacheLookups.WithLabelValues("memory", "hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(EmbeddingCacheLookups.WithLabelValues("memory", "miss")))
}

func TestRecordEmbedding(t *testing.T) {
	texts := testutil.ToFloat64(EmbeddedTexts)
	errs := testutil.ToFloat64(EmbeddingErrors)

	RecordEmbedding(8, nil)
	RecordEmbedding(4, errors.New("timeout"))

	assert.Equal(t, texts+8, testutil.ToFloat64(EmbeddedTexts))
	assert.Equal(t, errs+1, testutil.ToFloat64(EmbeddingErrors))
}

func TestMetricGathering(t *testing.T) {
	RecordIndexBuild(1, time.Millisecond, nil)
	RecordCandidates(1, nil)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	assert.NoError(t, err)
	for _, p := range problems {
		t.Logf("metric lint problem: %s %s", p.Metric, p.Text)
	}
}
