package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/labmatch/ai/mock"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/embedcache"
	"github.com/poiesic/labmatch/storage"
	"github.com/poiesic/labmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	embeddings storage.EmbeddingRepository
	manifests  storage.ManifestRepository
}

func setupTestStore(t *testing.T) *testStore {
	t.Helper()
	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embeddings, err := badger.NewEmbeddingRepository(backend, "mock")
	require.NoError(t, err)
	manifests, err := badger.NewManifestRepository(backend, "mock")
	require.NoError(t, err)
	return &testStore{embeddings: embeddings, manifests: manifests}
}

func testLabs(n int) []core.Lab {
	labs := make([]core.Lab, n)
	for i := range labs {
		labs[i] = core.Lab{
			ID:       fmt.Sprintf("lab-%02d", i),
			Sections: map[core.Section]string{core.SectionResearch: fmt.Sprintf("topic number %d", i)},
		}
	}
	return labs
}

func testConfig() *Config {
	return &Config{
		Model:          "mock",
		PassagePrefix:  "passage: ",
		BatchSize:      3,
		Workers:        2,
		ReportInterval: 3,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func newCached(t *testing.T, inner *mock.MockEmbedder, store *testStore) *embedcache.Embedder {
	t.Helper()
	cached, err := embedcache.New(inner, embedcache.WithStore(store.embeddings))
	require.NoError(t, err)
	return cached
}

func TestNewReembedder_Validation(t *testing.T) {
	store := setupTestStore(t)

	_, err := NewReembedder(nil, store.manifests, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewReembedder(mock.NewMockEmbedder(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrManifestRequired)

	r, err := NewReembedder(mock.NewMockEmbedder(), store.manifests, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), r.config)
}

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	inner := mock.NewMockEmbedder()
	labs := testLabs(10)

	var buf bytes.Buffer
	r, err := NewReembedder(newCached(t, inner, store), store.manifests, testConfig(), &buf)
	require.NoError(t, err)

	result, err := r.Run(ctx, labs)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 10, result.Passages)
	assert.Equal(t, 4, result.Batches)
	assert.Equal(t, 10, inner.TextCount())

	count, err := store.embeddings.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	stored, err := store.embeddings.GetEmbeddings(ctx, core.KeyFromContent("passage: topic number 3"))
	require.NoError(t, err)
	assert.Len(t, stored, 1, "keys match the prefixed passages the index embeds")

	manifest, err := store.manifests.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, "mock", manifest.Model)
	assert.Equal(t, 10, manifest.Labs)
	assert.Equal(t, result.Digest, manifest.Digest)

	output := buf.String()
	assert.Contains(t, output, "10/10 passages")
	assert.Contains(t, output, "Warm-up complete")
}

func TestReembedder_SkipsWarmCorpus(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	labs := testLabs(5)

	first, err := NewReembedder(newCached(t, mock.NewMockEmbedder(), store), store.manifests, testConfig(), nil)
	require.NoError(t, err)
	_, err = first.Run(ctx, labs)
	require.NoError(t, err)

	inner := mock.NewMockEmbedder()
	var buf bytes.Buffer
	second, err := NewReembedder(newCached(t, inner, store), store.manifests, testConfig(), &buf)
	require.NoError(t, err)

	result, err := second.Run(ctx, labs)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Zero(t, inner.CallCount())
	assert.Contains(t, buf.String(), "up to date")

	// A changed corpus is warmed again, but only new passages reach the backend.
	labs = append(labs, testLabs(6)[5])
	result, err = second.Run(ctx, labs)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 1, inner.TextCount())
}

func TestReembedder_Force(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	labs := testLabs(4)

	inner := mock.NewMockEmbedder()
	cfg := testConfig()
	r, err := NewReembedder(inner, store.manifests, cfg, nil)
	require.NoError(t, err)
	_, err = r.Run(ctx, labs)
	require.NoError(t, err)

	cfg.Force = true
	result, err := r.Run(ctx, labs)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 8, inner.TextCount())
}

func TestReembedder_ModelChangeInvalidates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	labs := testLabs(3)

	assert.NotEqual(t, Digest("a", Passages(labs, "")), Digest("b", Passages(labs, "")))

	inner := mock.NewMockEmbedder()
	cfg := testConfig()
	r, err := NewReembedder(inner, store.manifests, cfg, nil)
	require.NoError(t, err)
	_, err = r.Run(ctx, labs)
	require.NoError(t, err)

	cfg.Model = "other"
	result, err := r.Run(ctx, labs)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
}

func TestReembedder_EmptyCorpus(t *testing.T) {
	store := setupTestStore(t)
	inner := mock.NewMockEmbedder()
	r, err := NewReembedder(inner, store.manifests, testConfig(), nil)
	require.NoError(t, err)

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Passages)
	assert.Zero(t, inner.CallCount())
}

func TestReembedder_FailureKeepsManifest(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	inner := mock.NewMockEmbedder()
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("backend down")
	}

	r, err := NewReembedder(inner, store.manifests, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(ctx, testLabs(7))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")

	manifest, err := store.manifests.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, manifest, "a failed run does not record a manifest")
}
