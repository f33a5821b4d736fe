package ai

import (
	"context"
	"errors"
)

// ErrEmbeddingBackend wraps every failure reported by an embedding backend.
// A request that hits it cannot be scored and must be abandoned.
var ErrEmbeddingBackend = errors.New("embedding backend failure")

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use and deterministic
// for identical input within one process lifetime.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Prefixed returns an embedder that prepends prefix to every text before
// delegating. E5-family models expect "query: " and "passage: " prefixes.
// An empty prefix returns e unchanged.
func Prefixed(e Embedder, prefix string) Embedder {
	if prefix == "" {
		return e
	}
	return &prefixedEmbedder{inner: e, prefix: prefix}
}

type prefixedEmbedder struct {
	inner  Embedder
	prefix string
}

func (p *prefixedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return p.inner.EmbedText(ctx, p.prefix+text)
}

func (p *prefixedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = p.prefix + t
	}
	return p.inner.EmbedTexts(ctx, prefixed)
}
