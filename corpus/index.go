package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/metrics"
	"github.com/poiesic/labmatch/similarity"
	"github.com/poiesic/labmatch/tokenize"
)

// DefaultBatchSize is the number of passages embedded per backend call.
const DefaultBatchSize = 32

// SearchSections are the lab sections that make up the search passage.
var SearchSections = []core.Section{
	core.SectionAbout,
	core.SectionResearch,
	core.SectionMethods,
	core.SectionProjects,
	core.SectionPublications,
}

// Passage returns the representative text of a lab used for retrieval.
// Labs without any search section fall back to their name and department.
func Passage(lab *core.Lab) string {
	if text := lab.Text(SearchSections...); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimSpace(lab.Name) + " " + strings.TrimSpace(lab.Department))
}

// Index holds the lexical statistics and dense embeddings of a lab corpus.
// It is immutable after Build and safe for concurrent readers.
type Index struct {
	labs       []core.Lab
	positions  map[string]int
	lexical    *bm25
	embeddings [][]float32
}

type buildOptions struct {
	batchSize     int
	passagePrefix string
	logger        *slog.Logger
}

// Option configures Build.
type Option func(*buildOptions) error

// WithBatchSize sets the number of passages embedded per backend call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(o *buildOptions) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		o.batchSize = size
		return nil
	}
}

// WithPassagePrefix sets a prefix prepended to every passage before
// embedding, such as "passage: " for E5 models.
func WithPassagePrefix(prefix string) Option {
	return func(o *buildOptions) error {
		o.passagePrefix = prefix
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// Build validates labs, builds the BM25 index and embeds every lab passage
// once. An empty corpus builds an empty index. Embedding failures abort the
// build and are wrapped in ai.ErrEmbeddingBackend.
func Build(ctx context.Context, labs []core.Lab, embedder ai.Embedder, opts ...Option) (idx *Index, err error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	options := &buildOptions{
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	logger := options.logger.With("component", "corpus")

	start := time.Now()
	defer func() {
		metrics.RecordIndexBuild(len(labs), time.Since(start), err)
	}()

	idx = &Index{
		labs:      make([]core.Lab, 0, len(labs)),
		positions: make(map[string]int, len(labs)),
	}
	passages := make([]string, 0, len(labs))
	docs := make([][]string, 0, len(labs))
	for i := range labs {
		lab := labs[i]
		if err := core.ValidateLab(&lab); err != nil {
			return nil, err
		}
		if _, dup := idx.positions[lab.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLab, lab.ID)
		}
		lab.Sections = maps.Clone(lab.Sections)
		idx.positions[lab.ID] = len(idx.labs)
		idx.labs = append(idx.labs, lab)

		passage := Passage(&lab)
		passages = append(passages, passage)
		docs = append(docs, tokenize.Terms(passage))
	}
	idx.lexical = newBM25(docs)

	idx.embeddings, err = embedPassages(ctx, embedder, passages, options, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("corpus index built", "labs", len(idx.labs), "elapsed", time.Since(start))
	return idx, nil
}

func embedPassages(ctx context.Context, embedder ai.Embedder, passages []string, options *buildOptions, logger *slog.Logger) ([][]float32, error) {
	embeddings := make([][]float32, len(passages))

	// Blank passages get a zero vector and never reach the backend.
	pending := make([]int, 0, len(passages))
	for i, p := range passages {
		if p != "" {
			pending = append(pending, i)
		}
	}

	for start := 0; start < len(pending); start += options.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+options.batchSize, len(pending))
		batch := pending[start:end]
		texts := make([]string, len(batch))
		for j, i := range batch {
			texts[j] = options.passagePrefix + passages[i]
		}

		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			logger.Error("error embedding lab passages", "batch", start/options.batchSize, "err", err)
			if errors.Is(err, ai.ErrEmbeddingBackend) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingBackend, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ai.ErrEmbeddingBackend, len(batch), len(vectors))
		}
		for j, i := range batch {
			embeddings[i] = similarity.Normalize(vectors[j])
		}
		logger.Debug("embedded lab passages", "done", end, "total", len(pending))
	}

	var dims int
	for _, e := range embeddings {
		if e != nil {
			dims = len(e)
			break
		}
	}
	for i := range embeddings {
		if embeddings[i] == nil {
			embeddings[i] = make([]float32, dims)
		}
	}
	return embeddings, nil
}

// Len returns the number of labs in the index.
func (idx *Index) Len() int {
	return len(idx.labs)
}

// Labs returns the indexed labs in corpus order.
func (idx *Index) Labs() []core.Lab {
	out := make([]core.Lab, len(idx.labs))
	copy(out, idx.labs)
	return out
}

// Lab returns the lab with the given identifier.
func (idx *Index) Lab(id string) (core.Lab, bool) {
	pos, ok := idx.positions[id]
	if !ok {
		return core.Lab{}, false
	}
	return idx.labs[pos], true
}

// EmbeddingOf returns the unit-normalized passage embedding of a lab.
// The returned slice must not be modified.
func (idx *Index) EmbeddingOf(id string) ([]float32, bool) {
	pos, ok := idx.positions[id]
	if !ok {
		return nil, false
	}
	return idx.embeddings[pos], true
}

// ScoreLexical returns the BM25 score of every lab for the query tokens.
// Labs that share no term with the query are present with score 0.
func (idx *Index) ScoreLexical(queryTokens []string) map[string]float64 {
	scores := idx.lexical.scores(queryTokens)
	out := make(map[string]float64, len(idx.labs))
	for i, lab := range idx.labs {
		out[lab.ID] = scores[i]
	}
	return out
}

// ScoreSemantic returns the cosine similarity, floored at 0, between query
// and every lab embedding.
func (idx *Index) ScoreSemantic(query []float32) map[string]float64 {
	normalized := similarity.Normalize(query)
	out := make(map[string]float64, len(idx.labs))
	for i, lab := range idx.labs {
		out[lab.ID] = similarity.CosineVectors(normalized, idx.embeddings[i])
	}
	return out
}
