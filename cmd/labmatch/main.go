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

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/labmatch"
	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/ai/mock"
	"github.com/poiesic/labmatch/ai/openai"
	"github.com/poiesic/labmatch/candidate"
	"github.com/poiesic/labmatch/catalog"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/embedcache"
	"github.com/poiesic/labmatch/reembed"
	"github.com/poiesic/labmatch/scoring"
	"github.com/urfave/cli/v2"
)

// mockModel names the cache namespace of the deterministic embedder.
const mockModel = "mock"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "labmatch",
		Usage: "Recommend research labs to students",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "recommend",
				Usage:  "Recommend labs for a student profile",
				Action: recommendCommand,
				Flags: append(catalogFlags(), append(embeddingFlags(),
					&cli.StringFlag{
						Name:     "profile",
						Aliases:  []string{"p"},
						Usage:    "Path to the student profile JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "config-profile",
						Usage: "Built-in scoring profile (" + strings.Join(scoring.ProfileNames(), ", ") + ")",
						Value: scoring.DefaultProfile,
					},
					&cli.StringFlag{
						Name:  "profile-file",
						Usage: "YAML scoring profile; overrides --config-profile",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of labs to recommend",
						Value: scoring.DefaultTopK,
					},
					&cli.IntFlag{
						Name:  "lexical-top-k",
						Usage: "Shortlist size of lexical retrieval",
						Value: candidate.DefaultLexicalTopK,
					},
					&cli.IntFlag{
						Name:  "semantic-top-k",
						Usage: "Shortlist size of semantic retrieval",
						Value: candidate.DefaultSemanticTopK,
					},
				)...),
			},
			{
				Name:   "index",
				Usage:  "Embed every lab passage into the persistent cache",
				Action: indexCommand,
				Flags: append(catalogFlags(), append(embeddingFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of passages to embed per call",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N passages",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Embed again even when the cache is up to date",
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Delete cached vectors that are not passages of the current catalog",
					},
				)...),
			},
			{
				Name:   "export",
				Usage:  "Write the lab catalog as a flat JSON array",
				Action: exportCommand,
				Flags:  catalogFlags(),
			},
			{
				Name:   "profiles",
				Usage:  "List the built-in scoring profiles",
				Action: profilesCommand,
			},
		},
	}
}

func catalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "labs",
			Usage:    "Path to the lab catalog (flat array, or crawler labs.json with --documents)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "documents",
			Usage: "Path to crawler documents.json",
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "intfloat/multilingual-e5-small",
		},
		&cli.BoolFlag{
			Name:  "e5-prefixes",
			Usage: "Prefix queries with \"query: \" and passages with \"passage: \"",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Path to the BadgerDB embedding cache",
		},
		&cli.BoolFlag{
			Name:  "mock-embedder",
			Usage: "Use the deterministic offline embedder",
		},
	}
}

func recommendCommand(c *cli.Context) error {
	ctx := c.Context

	labs, err := loadLabs(c)
	if err != nil {
		return err
	}
	profile, err := catalog.LoadProfile(c.String("profile"))
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	cfg, err := loadScoringConfig(c)
	if err != nil {
		return err
	}

	embedder, _, aiConfig, cleanup, err := openEmbedder(c)
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := labmatch.NewEngine(ctx, labs, embedder, cfg, labmatch.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	rec, err := engine.Recommend(ctx, profile, labmatch.RecommendOptions{
		LexicalTopK:  c.Int("lexical-top-k"),
		SemanticTopK: c.Int("semantic-top-k"),
		TopK:         c.Int("top-k"),
	})
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	return writeJSON(c.App.Writer, newReport(cfg.Name, rec))
}

func indexCommand(c *cli.Context) error {
	ctx := c.Context
	if c.String("cache-dir") == "" {
		return fmt.Errorf("cache-dir is required")
	}

	labs, err := loadLabs(c)
	if err != nil {
		return err
	}

	aiConfig := newAIConfig(c)
	model := aiConfig.EmbeddingModel
	if c.Bool("mock-embedder") {
		model = mockModel
	}

	reembedConfig := &reembed.Config{
		Model:          model,
		PassagePrefix:  aiConfig.PassagePrefix,
		BatchSize:      c.Int("batch-size"),
		Workers:        c.Int("workers"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Force:          c.Bool("force"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	embedder, cache, _, cleanup, err := openEmbedder(c)
	if err != nil {
		return err
	}
	defer cleanup()

	reembedder, err := cache.NewReembedder(embedder, reembedConfig, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Cache: %s\n", c.String("cache-dir"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", model)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := reembedder.Run(ctx, labs); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if c.Bool("prune") {
		removed, err := cache.Prune(ctx, reembed.Passages(labs, reembedConfig.PassagePrefix))
		if err != nil {
			return fmt.Errorf("pruning failed: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "Pruned %d stale vectors\n", removed)
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	labs, err := loadLabs(c)
	if err != nil {
		return err
	}
	return catalog.EncodeLabs(c.App.Writer, labs)
}

func profilesCommand(c *cli.Context) error {
	for _, name := range scoring.ProfileNames() {
		cfg, err := scoring.Profile(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s\n", name)
		fmt.Fprintf(c.App.Writer, "  dimensions  sentence=%.2f keyword=%.2f numeric=%.2f\n",
			cfg.Weights.Sentence, cfg.Weights.Keyword, cfg.Weights.Numeric)
		fmt.Fprintf(c.App.Writer, "  sentence    intro1=%.2f intro2=%.2f intro3=%.2f portfolio=%.2f\n",
			cfg.Sentence.Intro1, cfg.Sentence.Intro2, cfg.Sentence.Intro3, cfg.Sentence.Portfolio)
		fmt.Fprintf(c.App.Writer, "  keyword     major=%.2f certification=%.2f award=%.2f tech_stack=%.2f\n",
			cfg.Keyword.Major, cfg.Keyword.Certification, cfg.Keyword.Award, cfg.Keyword.TechStack)
		fmt.Fprintf(c.App.Writer, "  numeric     language=%.2f proficiency=%.2f gpa=%.2f\n",
			cfg.Numeric.Language, cfg.Numeric.Proficiency, cfg.Numeric.GPA)
	}
	return nil
}

func loadLabs(c *cli.Context) ([]core.Lab, error) {
	var (
		labs []core.Lab
		err  error
	)
	if docs := c.String("documents"); docs != "" {
		labs, err = catalog.NewCrawlLoader().LoadFiles(c.String("labs"), docs)
	} else {
		labs, err = catalog.LoadLabs(c.String("labs"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load labs: %w", err)
	}
	slog.Info("loaded lab catalog", "labs", len(labs))
	return labs, nil
}

func loadScoringConfig(c *cli.Context) (*scoring.Config, error) {
	if path := c.String("profile-file"); path != "" {
		cfg, err := scoring.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load scoring profile: %w", err)
		}
		return cfg, nil
	}
	return scoring.Profile(c.String("config-profile"))
}

func newAIConfig(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	}
	if c.Bool("e5-prefixes") {
		opts = append(opts, ai.WithE5Prefixes())
	}
	return ai.NewConfig(opts...)
}

// openEmbedder builds the embedding backend named by the flags behind a
// cache-through layer. The persistent cache is nil without --cache-dir; the
// returned cleanup closes it.
func openEmbedder(c *cli.Context) (*embedcache.Embedder, *labmatch.Cache, *ai.Config, func(), error) {
	aiConfig := newAIConfig(c)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	var (
		inner ai.Embedder
		model = aiConfig.EmbeddingModel
	)
	if c.Bool("mock-embedder") {
		inner = mock.NewMockEmbedder()
		model = mockModel
	} else {
		var err error
		if inner, err = openai.NewEmbedder(aiConfig); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
	}

	dir := c.String("cache-dir")
	if dir == "" {
		embedder, err := embedcache.New(inner)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return embedder, nil, aiConfig, func() {}, nil
	}

	cache, err := labmatch.OpenCache(dir, model)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	embedder, err := cache.Wrap(inner)
	if err != nil {
		cache.Close()
		return nil, nil, nil, nil, err
	}
	cleanup := func() {
		if err := cache.Close(); err != nil {
			slog.Error("error closing cache", "err", err)
		}
	}
	return embedder, cache, aiConfig, cleanup, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
