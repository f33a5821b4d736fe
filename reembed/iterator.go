package reembed

import (
	"context"
	"strings"

	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/corpus"
)

// DefaultBatchSize is the default number of passages per embedding call.
const DefaultBatchSize = corpus.DefaultBatchSize

// Passages returns the prefixed retrieval passages of labs in lab order,
// exactly as corpus.Build embeds them. Labs with a blank passage are left
// out because the index never embeds them.
func Passages(labs []core.Lab, prefix string) []string {
	passages := make([]string, 0, len(labs))
	for i := range labs {
		if p := corpus.Passage(&labs[i]); strings.TrimSpace(p) != "" {
			passages = append(passages, prefix+p)
		}
	}
	return passages
}

// PassageIterator splits passages into batches.
type PassageIterator struct {
	passages  []string
	batchSize int
}

// NewPassageIterator creates an iterator. A non-positive batchSize uses
// DefaultBatchSize.
func NewPassageIterator(passages []string, batchSize int) *PassageIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &PassageIterator{passages: passages, batchSize: batchSize}
}

// Batches returns the number of batches ForEach will produce.
func (it *PassageIterator) Batches() int {
	return (len(it.passages) + it.batchSize - 1) / it.batchSize
}

// ForEach calls fn for each batch in order. Iteration stops on the first
// error from fn. Context cancellation is checked before every batch.
func (it *PassageIterator) ForEach(ctx context.Context, fn func(batch []string) error) error {
	for start := 0; start < len(it.passages); start += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+it.batchSize, len(it.passages))
		if err := fn(it.passages[start:end]); err != nil {
			return err
		}
	}
	return nil
}
