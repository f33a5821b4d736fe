package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/labmatch/ai"
)

// BatchProcessor embeds batches of passages with retries. The embedder is
// expected to be cache-through, so a successful batch is persisted as a
// side effect.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds one batch.
func (bp *BatchProcessor) Process(ctx context.Context, passages []string) error {
	if len(passages) == 0 {
		return nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, passages)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("embedding %d passages: %w", len(passages), err)
	}

	if len(embeddings) != len(passages) {
		return fmt.Errorf("%w: expected %d embeddings, got %d", ai.ErrEmbeddingBackend, len(passages), len(embeddings))
	}
	return nil
}
