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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/storage"
)

// Config holds configuration for a warm-up run.
type Config struct {
	// Model names the embedding model. It is part of the corpus digest.
	Model string

	// PassagePrefix is prepended to every passage, as corpus.Build does.
	PassagePrefix string

	// BatchSize is the number of passages per embedding call.
	BatchSize int

	// Workers is the number of batches embedded concurrently.
	Workers int

	// ReportInterval is how often to report progress (number of passages).
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// Force re-embeds even when the manifest matches the corpus.
	Force bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		Workers:        2,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Result summarizes a warm-up run.
type Result struct {
	Passages int
	Batches  int
	Digest   core.Key
	Skipped  bool // the manifest already matched the corpus
	Elapsed  time.Duration
}

// Reembedder warms a persistent embedding cache with every passage of a
// lab corpus so later index builds never reach the backend. A manifest
// records the digest of the last warmed corpus; an unchanged corpus is
// skipped unless Config.Force is set.
type Reembedder struct {
	embedder  ai.Embedder
	manifests storage.ManifestRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder. embedder should be cache-through
// (see package embedcache); progress receives human readable output.
func NewReembedder(embedder ai.Embedder, manifests storage.ManifestRepository, config *Config, progress io.Writer) (*Reembedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if manifests == nil {
		return nil, ErrManifestRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reembedder{
		embedder:  embedder,
		manifests: manifests,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay),
		logger:    slog.Default().With("component", "reembed"),
	}, nil
}

// Digest identifies a corpus as embedded by a model.
func Digest(model string, passages []string) core.Key {
	return core.KeyFromContent(model + "\x00" + strings.Join(passages, "\x00"))
}

// Run embeds every passage of labs and saves the manifest on success.
func (r *Reembedder) Run(ctx context.Context, labs []core.Lab) (*Result, error) {
	passages := Passages(labs, r.config.PassagePrefix)
	result := &Result{Passages: len(passages), Digest: Digest(r.config.Model, passages)}

	manifest, err := r.manifests.LoadManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if !r.config.Force && manifest != nil && manifest.Digest == result.Digest && manifest.Model == r.config.Model {
		fmt.Fprintf(r.progress, "Embedding cache is up to date (%d passages, warmed %s)\n",
			len(passages), manifest.UpdatedAt.Format(time.RFC3339))
		result.Skipped = true
		return result, nil
	}

	iterator := NewPassageIterator(passages, r.config.BatchSize)
	result.Batches = iterator.Batches()
	fmt.Fprintf(r.progress, "Warming embeddings for %d labs, %d passages (batch size: %d, workers: %d)\n",
		len(labs), len(passages), iterator.batchSize, max(r.config.Workers, 1))

	tracker := NewProgressTracker(r.progress, "passages", len(passages), r.config.ReportInterval)
	tracker.Start()
	err = r.embedAll(ctx, iterator, tracker)
	tracker.Finish()
	result.Elapsed = tracker.Elapsed()
	if err != nil {
		r.logger.Error("error warming embedding cache", "done", tracker.Current(), "total", len(passages), "err", err)
		return nil, err
	}

	if err := r.manifests.SaveManifest(ctx, &storage.Manifest{
		Model:  r.config.Model,
		Labs:   len(labs),
		Digest: result.Digest,
	}); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	fmt.Fprintf(r.progress, "Warm-up complete. Embedded %d passages in %v\n",
		len(passages), result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// embedAll runs batches on an ants pool. The first failure cancels the
// remaining batches.
func (r *Reembedder) embedAll(ctx context.Context, iterator *PassageIterator, tracker *ProgressTracker) error {
	pool, err := ants.NewPool(max(r.config.Workers, 1))
	if err != nil {
		return err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	iterErr := iterator.ForEach(ctx, func(batch []string) error {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := r.processor.Process(ctx, batch); err != nil {
				fail(err)
				return
			}
			tracker.Add(len(batch))
		})
		if err != nil {
			wg.Done()
			return err
		}
		return nil
	})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	return iterErr
}
