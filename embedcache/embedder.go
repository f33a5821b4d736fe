package embedcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/metrics"
	"github.com/poiesic/labmatch/storage"
)

// Cache tiers reported to metrics.
const (
	TierMemory = "memory"
	TierStore  = "store"
)

// Embedder is an ai.Embedder that memoizes vectors by content key.
// Lookups go to process memory first, then to an optional persistent
// store, and only the remaining texts reach the wrapped embedder.
//
// Returned vectors are shared with the cache and must not be modified.
type Embedder struct {
	inner  ai.Embedder
	store  storage.EmbeddingRepository
	logger *slog.Logger

	mu     sync.RWMutex
	memory map[core.Key][]float32
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder) error

// WithStore adds a persistent tier behind the memory cache.
func WithStore(store storage.EmbeddingRepository) Option {
	return func(e *Embedder) error {
		e.store = store
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New wraps inner with a cache.
func New(inner ai.Embedder, opts ...Option) (*Embedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	e := &Embedder{
		inner:  inner,
		logger: slog.Default(),
		memory: make(map[core.Key][]float32),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "embedding-cache")
	return e, nil
}

// Len returns the number of vectors held in memory.
func (e *Embedder) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.memory)
}

// EmbedText embeds a single text through the cache.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds texts through the cache. Duplicate texts are embedded
// once. A store that cannot be read or written is logged and bypassed;
// failures of the wrapped embedder are returned wrapped in
// ai.ErrEmbeddingBackend and nothing is cached for them.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]core.Key, len(texts))
	found := make(map[core.Key][]float32, len(texts))
	pending := make(map[core.Key]string)

	e.mu.RLock()
	for i, text := range texts {
		key := core.KeyFromContent(text)
		keys[i] = key
		if v, ok := e.memory[key]; ok {
			found[key] = v
		} else {
			pending[key] = text
		}
	}
	e.mu.RUnlock()
	misses := countMisses(keys, pending)
	metrics.RecordCacheLookup(TierMemory, len(texts)-misses, misses)

	if len(pending) > 0 && e.store != nil {
		e.loadFromStore(ctx, found, pending)
	}

	if len(pending) > 0 {
		if err := e.embedPending(ctx, found, pending); err != nil {
			return nil, err
		}
	}

	vectors := make([][]float32, len(texts))
	for i, key := range keys {
		vectors[i] = found[key]
	}
	return vectors, nil
}

func (e *Embedder) loadFromStore(ctx context.Context, found map[core.Key][]float32, pending map[core.Key]string) {
	lookup := make([]core.Key, 0, len(pending))
	for key := range pending {
		lookup = append(lookup, key)
	}

	stored, err := e.store.GetEmbeddings(ctx, lookup...)
	if err != nil {
		e.logger.Warn("error reading embedding store", "keys", len(lookup), "err", err)
		metrics.RecordCacheLookup(TierStore, 0, len(lookup))
		return
	}
	metrics.RecordCacheLookup(TierStore, len(stored), len(lookup)-len(stored))

	if len(stored) == 0 {
		return
	}
	e.mu.Lock()
	for key, v := range stored {
		e.memory[key] = v
		found[key] = v
		delete(pending, key)
	}
	e.mu.Unlock()
}

func (e *Embedder) embedPending(ctx context.Context, found map[core.Key][]float32, pending map[core.Key]string) error {
	keys := make([]core.Key, 0, len(pending))
	texts := make([]string, 0, len(pending))
	for key, text := range pending {
		keys = append(keys, key)
		texts = append(texts, text)
	}

	vectors, err := e.inner.EmbedTexts(ctx, texts)
	if err == nil && len(vectors) != len(texts) {
		err = fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	metrics.RecordEmbedding(len(texts), err)
	if err != nil {
		if !errors.Is(err, ai.ErrEmbeddingBackend) {
			err = fmt.Errorf("%w: %w", ai.ErrEmbeddingBackend, err)
		}
		return err
	}

	fresh := make(map[core.Key][]float32, len(keys))
	e.mu.Lock()
	for i, key := range keys {
		e.memory[key] = vectors[i]
		found[key] = vectors[i]
		fresh[key] = vectors[i]
	}
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.PutEmbeddings(ctx, fresh); err != nil {
			e.logger.Warn("error writing embedding store", "keys", len(fresh), "err", err)
		}
	}
	return nil
}

// countMisses counts the positions in keys that are still pending.
func countMisses(keys []core.Key, pending map[core.Key]string) int {
	misses := 0
	for _, key := range keys {
		if _, ok := pending[key]; ok {
			misses++
		}
	}
	return misses
}
