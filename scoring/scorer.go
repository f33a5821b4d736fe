package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/metrics"
	"github.com/poiesic/labmatch/similarity"
	"golang.org/x/sync/errgroup"
)

// DefaultTopK is the number of results Rerank keeps by default.
const DefaultTopK = 5

// DefaultConcurrency is the number of labs scored in parallel.
const DefaultConcurrency = 4

// Scorer reranks labs against a student profile using a validated Config.
// It holds no per-request state and is safe for concurrent use.
type Scorer struct {
	cfg         Config
	strategies  map[string]similarity.Strategy
	concurrency int
	logger      *slog.Logger

	queryPrefix   string
	passagePrefix string
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPrefixes sets the prefixes applied to student (query) and lab
// (passage) texts before embedding.
func WithPrefixes(query, passage string) Option {
	return func(s *Scorer) error {
		s.queryPrefix = query
		s.passagePrefix = passage
		return nil
	}
}

// WithConcurrency sets how many labs are scored in parallel.
// Default is DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(s *Scorer) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		s.concurrency = n
		return nil
	}
}

// NewScorer creates a scorer. The configuration is validated again so a
// hand-built Config cannot bypass NewConfig.
func NewScorer(cfg *Config, embedder ai.Embedder, opts ...Option) (*Scorer, error) {
	if cfg == nil {
		return nil, &ConfigError{Group: "config", Detail: "nil config"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Scorer{
		cfg:         *cfg,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "scorer")

	cosine := similarity.Cosine{Embedder: embedder, QueryPrefix: s.queryPrefix, PassagePrefix: s.passagePrefix}
	o := cfg.Options
	s.strategies = map[string]similarity.Strategy{
		FieldIntro1:        &cosine,
		FieldIntro2:        &similarity.Blend{Cosine: cosine, KeywordWeight: o.Intro2KeywordWeight},
		FieldIntro3:        &cosine,
		FieldPortfolio:     &similarity.MeanPooled{Cosine: cosine, ChunkSize: o.PortfolioChunkSize},
		FieldMajor:         similarity.Major{},
		FieldCertification: similarity.Certification{},
		FieldAward:         similarity.Award{},
		FieldTechStack:     &similarity.TechStack{Embedder: embedder, JaccardWeight: o.TechJaccardWeight, EmbeddingWeight: o.TechEmbeddingWeight},
		FieldLanguage:      similarity.LanguageScore{Threshold: o.LanguageThreshold},
		FieldProficiency:   similarity.Proficiency{Required: o.ProficiencyRequirement},
		FieldGPA:           similarity.GPA{Expected: o.ExpectedGPA, MaxGap: o.MaxGPAGap},
	}
	return s, nil
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// ScoreLab scores one lab. The result always carries a breakdown entry for
// every field, including fields that had no data.
func (s *Scorer) ScoreLab(ctx context.Context, profile *core.StudentProfile, lab *core.Lab) (core.ScoredResult, error) {
	if err := core.ValidateProfile(profile); err != nil {
		return core.ScoredResult{}, err
	}
	if lab == nil {
		return core.ScoredResult{}, fmt.Errorf("%w: lab is nil", core.ErrInvalidLab)
	}
	return s.scoreLab(ctx, profile, lab)
}

func (s *Scorer) scoreLab(ctx context.Context, profile *core.StudentProfile, lab *core.Lab) (core.ScoredResult, error) {
	breakdown := make(map[core.Dimension][]core.FieldScore, 3)
	for _, f := range fields {
		fs, err := s.scoreField(ctx, f, profile, lab)
		if err != nil {
			return core.ScoredResult{}, fmt.Errorf("scoring %s for lab %s: %w", f.name, lab.ID, err)
		}
		breakdown[f.dimension] = append(breakdown[f.dimension], fs)
	}

	result := core.ScoredResult{
		LabID:     lab.ID,
		LabName:   lab.Name,
		Sentence:  combine(breakdown[core.DimensionSentence]),
		Keyword:   combine(breakdown[core.DimensionKeyword]),
		Numeric:   combine(breakdown[core.DimensionNumeric]),
		Breakdown: breakdown,
	}
	w := s.cfg.Weights
	result.FinalScore = w.Sentence*result.Sentence + w.Keyword*result.Keyword + w.Numeric*result.Numeric
	return result, nil
}

func (s *Scorer) scoreField(ctx context.Context, f field, profile *core.StudentProfile, lab *core.Lab) (core.FieldScore, error) {
	fs := core.FieldScore{Field: f.name, Weight: f.weight(&s.cfg)}

	studentValue := f.student(profile)
	labValue := f.lab(profile, lab, &s.cfg)
	if strings.TrimSpace(studentValue) == "" || (f.labRequired && strings.TrimSpace(labValue) == "") {
		fs.Absent = true
		fs.Method = MethodAbsent
		fs.Score = similarity.Neutral
		fs.Weight = 0
		return fs, nil
	}

	strategy := s.strategies[f.name]
	score, err := strategy.Similarity(ctx, studentValue, labValue)
	if err != nil {
		return fs, err
	}
	fs.Score = score
	fs.Method = strategy.Name()
	return fs, nil
}

// combine returns the weighted mean of the entries, renormalizing over
// the weights that remain after exclusions. Each entry's Weight is rewritten
// to its effective share. With nothing left the result is Neutral.
func combine(entries []core.FieldScore) float64 {
	var total float64
	for _, e := range entries {
		total += e.Weight
	}
	if total == 0 {
		return similarity.Neutral
	}
	var score float64
	for i := range entries {
		entries[i].Weight /= total
		score += entries[i].Weight * entries[i].Score
	}
	return score
}

// Rerank scores every lab, drops results below the configured MinScore,
// sorts by final score descending with ties broken by ascending lab ID and
// keeps the first topK. A non-positive topK uses DefaultTopK. The output
// does not depend on the order of labs.
func (s *Scorer) Rerank(ctx context.Context, profile *core.StudentProfile, labs []core.Lab, topK int) ([]core.ScoredResult, error) {
	if err := core.ValidateProfile(profile); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	start := time.Now()

	scored := make([]core.ScoredResult, len(labs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i := range labs {
		group.Go(func() error {
			result, err := s.scoreLab(groupCtx, profile, &labs[i])
			if err != nil {
				return err
			}
			scored[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		s.logger.Error("error reranking labs", "labs", len(labs), "err", err)
		return nil, err
	}

	results := make([]core.ScoredResult, 0, len(scored))
	for _, r := range scored {
		if r.FinalScore >= s.cfg.Options.MinScore {
			results = append(results, r)
		}
	}
	filtered := len(scored) - len(results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].LabID < results[j].LabID
	})
	if len(results) > topK {
		results = results[:topK]
	}

	metrics.RecordRerank(len(results), filtered, time.Since(start))
	s.logger.Debug("labs reranked", "labs", len(labs), "filtered", filtered, "returned", len(results))
	return results, nil
}
