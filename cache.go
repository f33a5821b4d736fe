// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package labmatch

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/embedcache"
	"github.com/poiesic/labmatch/reembed"
	"github.com/poiesic/labmatch/storage"
	"github.com/poiesic/labmatch/storage/badger"
)

// Cache is the persistent embedding store of one embedding model. Vectors
// and the warm-up manifest live in a namespace named after the model, so
// switching models never mixes vectors.
type Cache struct {
	backend    *badger.Backend
	embeddings storage.EmbeddingRepository
	manifests  storage.ManifestRepository
	logger     *slog.Logger
}

// OpenCache opens the cache stored under dir. An empty dir keeps the cache
// in memory for the lifetime of the process.
func OpenCache(dir, model string) (*Cache, error) {
	backend, err := badger.OpenBackend(dir, dir == "")
	if err != nil {
		return nil, err
	}

	embeddings, err := badger.NewEmbeddingRepository(backend, model)
	if err != nil {
		backend.Close()
		return nil, err
	}

	manifests, err := badger.NewManifestRepository(backend, model)
	if err != nil {
		embeddings.Close()
		backend.Close()
		return nil, err
	}

	return &Cache{
		backend:    backend,
		embeddings: embeddings,
		manifests:  manifests,
		logger:     slog.Default().With("component", "cache"),
	}, nil
}

// Close releases the store.
func (c *Cache) Close() error {
	if err := c.embeddings.Close(); err != nil {
		c.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// EmbeddingRepository returns the vector store.
func (c *Cache) EmbeddingRepository() storage.EmbeddingRepository {
	return c.embeddings
}

// ManifestRepository returns the warm-up manifest store.
func (c *Cache) ManifestRepository() storage.ManifestRepository {
	return c.manifests
}

// Wrap returns embedder backed by this cache.
func (c *Cache) Wrap(embedder ai.Embedder, opts ...embedcache.Option) (*embedcache.Embedder, error) {
	return embedcache.New(embedder, append([]embedcache.Option{embedcache.WithStore(c.embeddings)}, opts...)...)
}

// NewReembedder returns a warmer that fills this cache through embedder,
// which should come from Wrap.
func (c *Cache) NewReembedder(embedder ai.Embedder, config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(embedder, c.manifests, config, progress)
}

// Prune deletes stored vectors whose text is not among passages and returns
// how many were removed. Passages must carry the same prefix they were
// embedded with.
func (c *Cache) Prune(ctx context.Context, passages []string) (int, error) {
	live := make(map[core.Key]struct{}, len(passages))
	for _, p := range passages {
		live[core.KeyFromContent(p)] = struct{}{}
	}

	keys, err := c.embeddings.ListKeys(ctx)
	if err != nil {
		return 0, err
	}

	var stale []core.Key
	for _, k := range keys {
		if _, ok := live[k]; !ok {
			stale = append(stale, k)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := c.embeddings.DeleteEmbeddings(ctx, stale...); err != nil {
		return 0, err
	}
	c.logger.Info("pruned stale embeddings", "removed", len(stale), "kept", len(keys)-len(stale))
	return len(stale), nil
}
