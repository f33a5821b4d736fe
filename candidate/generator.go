package candidate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/corpus"
	"github.com/poiesic/labmatch/metrics"
	"github.com/poiesic/labmatch/tokenize"
	"golang.org/x/sync/errgroup"
)

// Default shortlist sizes.
const (
	DefaultLexicalTopK  = 10
	DefaultSemanticTopK = 10
)

// Generator narrows the lab corpus to a shortlist by combining BM25 and
// dense retrieval over the student's research interests.
type Generator struct {
	holder      *corpus.Holder
	embedder    ai.Embedder
	queryPrefix string
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// WithQueryPrefix sets a prefix prepended to the research interests before
// embedding, such as "query: " for E5 models.
func WithQueryPrefix(prefix string) Option {
	return func(g *Generator) error {
		g.queryPrefix = prefix
		return nil
	}
}

// NewGenerator creates a new candidate generator reading the index
// published by holder.
func NewGenerator(holder *corpus.Holder, embedder ai.Embedder, opts ...Option) (*Generator, error) {
	if holder == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	g := &Generator{
		holder:   holder,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "candidate")

	return g, nil
}

// Generate returns the union of the lexical and semantic shortlists for
// the profile, sorted by lab ID. Non-positive k values use the defaults.
// Blank research interests yield no candidates and no error.
func (g *Generator) Generate(ctx context.Context, profile *core.StudentProfile, lexicalTopK, semanticTopK int) ([]core.CandidateEntry, error) {
	return g.GenerateWithMonitor(ctx, profile, lexicalTopK, semanticTopK, nil)
}

// GenerateWithMonitor is Generate with callbacks at each stage.
func (g *Generator) GenerateWithMonitor(ctx context.Context, profile *core.StudentProfile, lexicalTopK, semanticTopK int, monitor Monitor) ([]core.CandidateEntry, error) {
	return g.GenerateFrom(ctx, g.holder.Load(), profile, lexicalTopK, semanticTopK, monitor)
}

// GenerateFrom runs candidate generation against a specific index snapshot.
// Callers that resolve candidate IDs afterwards pass the snapshot they
// resolve against.
func (g *Generator) GenerateFrom(ctx context.Context, idx *corpus.Index, profile *core.StudentProfile, lexicalTopK, semanticTopK int, monitor Monitor) (candidates []core.CandidateEntry, err error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if lexicalTopK <= 0 {
		lexicalTopK = DefaultLexicalTopK
	}
	if semanticTopK <= 0 {
		semanticTopK = DefaultSemanticTopK
	}
	defer func() {
		metrics.RecordCandidates(len(candidates), err)
	}()

	query := ""
	if profile != nil {
		query = profile.ResearchInterests
	}
	monitor.Start(query)

	if tokenize.IsBlank(query) {
		g.logger.Info("research interests are empty, no candidates generated")
		monitor.Finish(nil)
		return []core.CandidateEntry{}, nil
	}

	var lexical, semantic []ranked
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		lexical = topK(idx.ScoreLexical(tokenize.Terms(query)), lexicalTopK)
		return nil
	})
	group.Go(func() error {
		embedding, err := g.embedder.EmbedText(groupCtx, g.queryPrefix+query)
		if err != nil {
			g.logger.Error("error generating embedding for research interests", "err", err)
			if errors.Is(err, ai.ErrEmbeddingBackend) {
				return err
			}
			return fmt.Errorf("%w: %w", ai.ErrEmbeddingBackend, err)
		}
		semantic = topK(idx.ScoreSemantic(embedding), semanticTopK)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	monitor.AfterLexical(labIDs(lexical))
	monitor.AfterSemantic(labIDs(semantic))

	candidates = merge(lexical, semantic)
	g.logger.Debug("candidates generated",
		"lexical", len(lexical), "semantic", len(semantic), "candidates", len(candidates))
	monitor.Finish(candidates)
	return candidates, nil
}

type ranked struct {
	labID string
	score float64
}

// topK orders scores descending with ties broken by ascending lab ID and
// keeps the first k.
func topK(scores map[string]float64, k int) []ranked {
	all := make([]ranked, 0, len(scores))
	for id, s := range scores {
		all = append(all, ranked{labID: id, score: s})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].labID < all[j].labID
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// merge unions both lists by lab ID, keeping each method's score.
func merge(lexical, semantic []ranked) []core.CandidateEntry {
	byID := make(map[string]*core.CandidateEntry, len(lexical)+len(semantic))
	entry := func(id string) *core.CandidateEntry {
		e, ok := byID[id]
		if !ok {
			e = &core.CandidateEntry{LabID: id}
			byID[id] = e
		}
		return e
	}
	for _, r := range lexical {
		e := entry(r.labID)
		score := r.score
		e.LexicalScore = &score
		e.Provenance |= core.ProvenanceLexical
	}
	for _, r := range semantic {
		e := entry(r.labID)
		score := r.score
		e.SemanticScore = &score
		e.Provenance |= core.ProvenanceSemantic
	}

	out := make([]core.CandidateEntry, 0, len(byID))
	for _, e := range byID {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LabID < out[j].LabID
	})
	return out
}

func labIDs(list []ranked) []string {
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.labID
	}
	return ids
}
