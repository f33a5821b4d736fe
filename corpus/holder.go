package corpus

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
)

// Holder publishes the current Index to concurrent readers.
// Readers call Load once per request and keep using that snapshot; a
// concurrent Publish never affects an index that is already loaded.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder returns a Holder publishing idx. A nil idx publishes an empty
// index.
func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	h.Publish(idx)
	return h
}

// Load returns the currently published index.
func (h *Holder) Load() *Index {
	return h.current.Load()
}

// Publish atomically replaces the current index.
func (h *Holder) Publish(idx *Index) {
	if idx == nil {
		idx = &Index{positions: map[string]int{}, lexical: newBM25(nil)}
	}
	h.current.Store(idx)
}

// Rebuild builds a new index off to the side and publishes it only when
// the build succeeds. On failure the previous index stays in place.
func (h *Holder) Rebuild(ctx context.Context, labs []core.Lab, embedder ai.Embedder, opts ...Option) (*Index, error) {
	idx, err := Build(ctx, labs, embedder, opts...)
	if err != nil {
		return nil, err
	}
	h.Publish(idx)
	return idx, nil
}
