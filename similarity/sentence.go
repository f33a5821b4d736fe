package similarity

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/tokenize"
)

// DefaultBlendKeywordWeight is the share of token overlap in Blend.
const DefaultBlendKeywordWeight = 0.3

// Cosine compares two texts by the cosine of their embeddings.
// The student text is embedded with QueryPrefix and the lab text with
// PassagePrefix. Negative cosines are floored to 0.
type Cosine struct {
	Embedder      ai.Embedder
	QueryPrefix   string
	PassagePrefix string
}

var _ Strategy = (*Cosine)(nil)

func (c *Cosine) Name() string { return "cosine" }

func (c *Cosine) Similarity(ctx context.Context, a, b string) (float64, error) {
	if blank(a) || blank(b) {
		return Neutral, nil
	}
	if sameText(a, b) {
		return 1, nil
	}
	vectors, err := embed(ctx, c.Embedder, []string{c.QueryPrefix + a, c.PassagePrefix + b})
	if err != nil {
		return 0, err
	}
	return CosineVectors(vectors[0], vectors[1]), nil
}

// Blend mixes embedding cosine with token Jaccard:
// (1-KeywordWeight)*cosine + KeywordWeight*jaccard.
// It rewards literal term overlap in addition to meaning.
type Blend struct {
	Cosine
	KeywordWeight float64
}

var _ Strategy = (*Blend)(nil)

func (b *Blend) Name() string { return "cosine_keyword_blend" }

func (b *Blend) Similarity(ctx context.Context, x, y string) (float64, error) {
	if blank(x) || blank(y) {
		return Neutral, nil
	}
	if sameText(x, y) {
		return 1, nil
	}
	cosine, err := b.Cosine.Similarity(ctx, x, y)
	if err != nil {
		return 0, err
	}
	jaccard := tokenize.TermJaccard(x, y)
	return clamp01((1-b.KeywordWeight)*cosine + b.KeywordWeight*jaccard), nil
}

// MeanPooled compares long texts that would be truncated by a single
// embedding call. Both sides are split into windows of ChunkSize runes, all
// windows are embedded in one batch, and the per-side mean vectors are
// compared by cosine.
type MeanPooled struct {
	Cosine
	ChunkSize int
}

var _ Strategy = (*MeanPooled)(nil)

func (m *MeanPooled) Name() string { return "mean_pooled_cosine" }

func (m *MeanPooled) Similarity(ctx context.Context, a, b string) (float64, error) {
	if blank(a) || blank(b) {
		return Neutral, nil
	}
	if sameText(a, b) {
		return 1, nil
	}
	size := m.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunksA := Chunk(a, size)
	chunksB := Chunk(b, size)

	texts := make([]string, 0, len(chunksA)+len(chunksB))
	for _, chunk := range chunksA {
		texts = append(texts, m.QueryPrefix+chunk)
	}
	for _, chunk := range chunksB {
		texts = append(texts, m.PassagePrefix+chunk)
	}
	vectors, err := embed(ctx, m.Embedder, texts)
	if err != nil {
		return 0, err
	}
	meanA := MeanVector(vectors[:len(chunksA)])
	meanB := MeanVector(vectors[len(chunksA):])
	return CosineVectors(meanA, meanB), nil
}

func sameText(a, b string) bool {
	return tokenize.Normalize(a) == tokenize.Normalize(b)
}

// embed embeds texts in one batch. Backend failures are wrapped in
// ai.ErrEmbeddingBackend unless the embedder already did so.
func embed(ctx context.Context, embedder ai.Embedder, texts []string) ([][]float32, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", ai.ErrEmbeddingBackend)
	}
	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		if errors.Is(err, ai.ErrEmbeddingBackend) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingBackend, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ai.ErrEmbeddingBackend, len(texts), len(vectors))
	}
	return vectors, nil
}
