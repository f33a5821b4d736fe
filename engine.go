package labmatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/candidate"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/corpus"
	"github.com/poiesic/labmatch/embedcache"
	"github.com/poiesic/labmatch/scoring"
)

// Engine recommends labs to students: candidate generation over a corpus
// index followed by multi-criteria reranking. It is safe for concurrent
// use, including concurrent Reload.
type Engine struct {
	holder    *corpus.Holder
	embedder  ai.Embedder
	generator *candidate.Generator
	scorer    *scoring.Scorer
	buildOpts []corpus.Option
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions) error

type engineOptions struct {
	logger        *slog.Logger
	queryPrefix   string
	passagePrefix string
	batchSize     int
	concurrency   int
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithPrefixes sets the query and passage prefixes applied before
// embedding, such as "query: " and "passage: " for E5 models.
func WithPrefixes(query, passage string) Option {
	return func(o *engineOptions) error {
		o.queryPrefix = query
		o.passagePrefix = passage
		return nil
	}
}

// WithAIConfig takes the prefixes from an embedding backend configuration.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) error {
		if cfg != nil {
			o.queryPrefix = cfg.QueryPrefix
			o.passagePrefix = cfg.PassagePrefix
		}
		return nil
	}
}

// WithBatchSize sets the number of lab passages embedded per backend call
// when building the index.
func WithBatchSize(size int) Option {
	return func(o *engineOptions) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", corpus.ErrInvalidBatchSize, size)
		}
		o.batchSize = size
		return nil
	}
}

// WithConcurrency sets how many candidates are scored in parallel.
func WithConcurrency(n int) Option {
	return func(o *engineOptions) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		o.concurrency = n
		return nil
	}
}

// NewEngine builds the corpus index for labs and wires the candidate
// generator and scorer. A nil cfg uses the default scoring profile.
// Embeddings are memoized in process; pass an embedder from Cache.Wrap to
// persist them as well.
func NewEngine(ctx context.Context, labs []core.Lab, embedder ai.Embedder, cfg *scoring.Config, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cfg == nil {
		var err error
		if cfg, err = scoring.Profile(scoring.DefaultProfile); err != nil {
			return nil, err
		}
	}

	options := &engineOptions{
		logger:      slog.Default(),
		batchSize:   corpus.DefaultBatchSize,
		concurrency: scoring.DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	// Lab field texts repeat across requests; memoize them unless the caller
	// already supplied a cache.
	if _, ok := embedder.(*embedcache.Embedder); !ok {
		cached, err := embedcache.New(embedder, embedcache.WithLogger(options.logger))
		if err != nil {
			return nil, err
		}
		embedder = cached
	}

	scorer, err := scoring.NewScorer(cfg, embedder,
		scoring.WithLogger(options.logger),
		scoring.WithPrefixes(options.queryPrefix, options.passagePrefix),
		scoring.WithConcurrency(options.concurrency))
	if err != nil {
		return nil, err
	}

	buildOpts := []corpus.Option{
		corpus.WithBatchSize(options.batchSize),
		corpus.WithPassagePrefix(options.passagePrefix),
		corpus.WithLogger(options.logger),
	}
	idx, err := corpus.Build(ctx, labs, embedder, buildOpts...)
	if err != nil {
		return nil, err
	}
	holder := corpus.NewHolder(idx)

	generator, err := candidate.NewGenerator(holder, embedder,
		candidate.WithLogger(options.logger),
		candidate.WithQueryPrefix(options.queryPrefix))
	if err != nil {
		return nil, err
	}

	return &Engine{
		holder:    holder,
		embedder:  embedder,
		generator: generator,
		scorer:    scorer,
		buildOpts: buildOpts,
		logger:    options.logger.With("component", "engine"),
	}, nil
}

// RecommendOptions bounds a recommendation. Zero values use the defaults of
// the candidate and scoring packages.
type RecommendOptions struct {
	LexicalTopK  int
	SemanticTopK int
	TopK         int
}

// Recommendation is the outcome of one request.
type Recommendation struct {
	Candidates []core.CandidateEntry
	Results    []core.ScoredResult
}

// Recommend shortlists labs for the profile and reranks the shortlist.
// No candidates is a valid, empty recommendation. The whole request runs
// against a single index snapshot.
func (e *Engine) Recommend(ctx context.Context, profile *core.StudentProfile, opts RecommendOptions) (*Recommendation, error) {
	if err := core.ValidateProfile(profile); err != nil {
		return nil, err
	}
	start := time.Now()
	idx := e.holder.Load()

	candidates, err := e.generator.GenerateFrom(ctx, idx, profile, opts.LexicalTopK, opts.SemanticTopK, nil)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Recommendation{Candidates: []core.CandidateEntry{}, Results: []core.ScoredResult{}}, nil
	}

	labs := make([]core.Lab, 0, len(candidates))
	for _, c := range candidates {
		lab, ok := idx.Lab(c.LabID)
		if !ok {
			return nil, fmt.Errorf("candidate %q is not in the index", c.LabID)
		}
		labs = append(labs, lab)
	}

	results, err := e.scorer.Rerank(ctx, profile, labs, opts.TopK)
	if err != nil {
		return nil, err
	}

	e.logger.Info("recommendation complete",
		"profile", profile.ID, "candidates", len(candidates), "results", len(results), "elapsed", time.Since(start))
	return &Recommendation{Candidates: candidates, Results: results}, nil
}

// Reload rebuilds the index for labs and publishes it atomically. Requests
// already running finish on the previous index; on failure the previous
// index stays in place.
func (e *Engine) Reload(ctx context.Context, labs []core.Lab) error {
	if _, err := e.holder.Rebuild(ctx, labs, e.embedder, e.buildOpts...); err != nil {
		e.logger.Error("error reloading corpus", "labs", len(labs), "err", err)
		return err
	}
	return nil
}

// Len returns the number of labs in the current index.
func (e *Engine) Len() int {
	return e.holder.Load().Len()
}

// Config returns the scoring configuration.
func (e *Engine) Config() scoring.Config {
	return e.scorer.Config()
}
