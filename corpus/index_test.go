package corpus

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/ai/mock"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/tokenize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLabs() []core.Lab {
	return []core.Lab{
		{
			ID:         "vision",
			Name:       "Vision Lab",
			Department: "컴퓨터공학",
			Sections: map[core.Section]string{
				core.SectionResearch: "computer vision and medical image segmentation with deep learning",
				core.SectionMethods:  "convolutional networks, transformers",
			},
		},
		{
			ID:         "nlp",
			Name:       "Language Lab",
			Department: "인공지능",
			Sections: map[core.Section]string{
				core.SectionResearch: "natural language processing and large language models",
				core.SectionAbout:    "we build question answering systems",
			},
		},
		{
			ID:         "robotics",
			Name:       "Robotics Lab",
			Department: "기계공학",
			Sections: map[core.Section]string{
				core.SectionResearch: "robot manipulation and control",
				core.SectionVision:   "autonomous robots in every factory",
			},
		},
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()

	idx, err := Build(ctx, testLabs(), embedder)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, embedder.CallCount(), "three passages fit one batch")

	lab, ok := idx.Lab("nlp")
	require.True(t, ok)
	assert.Equal(t, "Language Lab", lab.Name)

	_, ok = idx.Lab("missing")
	assert.False(t, ok)

	for _, lab := range idx.Labs() {
		emb, ok := idx.EmbeddingOf(lab.ID)
		require.True(t, ok)
		var norm float64
		for _, v := range emb {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5, "embedding of %s is unit length", lab.ID)
	}
}

func TestBuild_Batches(t *testing.T) {
	embedder := mock.NewMockEmbedder()

	_, err := Build(context.Background(), testLabs(), embedder, WithBatchSize(2))
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount())
	assert.Equal(t, 3, embedder.TextCount())

	_, err = Build(context.Background(), testLabs(), embedder, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestBuild_PassagePrefix(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		mu.Lock()
		seen = append(seen, texts...)
		mu.Unlock()
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.Vector(text)
		}
		return out, nil
	}

	_, err := Build(context.Background(), testLabs(), embedder, WithPassagePrefix("passage: "))
	require.NoError(t, err)
	require.Len(t, seen, 3)
	for _, text := range seen {
		assert.Regexp(t, "^passage: ", text)
	}
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate lab", func(t *testing.T) {
		labs := append(testLabs(), core.Lab{ID: "nlp", Name: "Copy"})
		_, err := Build(ctx, labs, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrDuplicateLab)
	})

	t.Run("invalid lab", func(t *testing.T) {
		_, err := Build(ctx, []core.Lab{{ID: " "}}, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, core.ErrEmptyLabID)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := Build(ctx, testLabs(), nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("backend failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("model not loaded")
		}
		_, err := Build(ctx, testLabs(), embedder)
		assert.ErrorIs(t, err, ai.ErrEmbeddingBackend)
	})
}

func TestBuild_EmptyCorpus(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx, err := Build(context.Background(), nil, embedder)
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.ScoreLexical([]string{"vision"}))
	assert.Zero(t, embedder.CallCount())
}

func TestBuild_CopiesSections(t *testing.T) {
	labs := testLabs()
	idx, err := Build(context.Background(), labs, mock.NewMockEmbedder())
	require.NoError(t, err)

	labs[0].Sections[core.SectionResearch] = "changed"
	lab, _ := idx.Lab("vision")
	assert.Contains(t, lab.Sections[core.SectionResearch], "segmentation")
}

func TestScoreLexical(t *testing.T) {
	idx, err := Build(context.Background(), testLabs(), mock.NewMockEmbedder())
	require.NoError(t, err)

	scores := idx.ScoreLexical(tokenize.Terms("medical image segmentation"))
	require.Len(t, scores, 3, "every lab is present")
	assert.Greater(t, scores["vision"], 0.0)
	assert.Zero(t, scores["nlp"])
	assert.Zero(t, scores["robotics"])

	// Passage fallback: the robotics passage has no vision section.
	scores = idx.ScoreLexical(tokenize.Terms("factory"))
	assert.Zero(t, scores["robotics"])
}

func TestBM25(t *testing.T) {
	docs := [][]string{
		{"graph", "neural", "network"},
		{"graph", "database", "graph", "query"},
		{"image", "network"},
	}
	b := newBM25(docs)

	t.Run("idf is positive for common terms", func(t *testing.T) {
		assert.Greater(t, b.idf("graph"), 0.0)
		assert.Greater(t, b.idf("image"), b.idf("graph"))
	})

	t.Run("term frequency saturates", func(t *testing.T) {
		scores := b.scores([]string{"graph"})
		assert.Greater(t, scores[1], scores[0])
		assert.Less(t, scores[1], 2*scores[0])
		assert.Zero(t, scores[2])
	})

	t.Run("matches the closed form", func(t *testing.T) {
		scores := b.scores([]string{"image"})
		avg := 9.0 / 3.0
		idf := math.Log(1 + (3-1+0.5)/(1+0.5))
		want := idf * 1 * (BM25K1 + 1) / (1 + BM25K1*(1-BM25B+BM25B*2/avg))
		assert.InDelta(t, want, scores[2], 1e-12)
	})

	t.Run("unknown terms score zero", func(t *testing.T) {
		assert.Equal(t, []float64{0, 0, 0}, b.scores([]string{"quantum"}))
	})
}

func TestScoreSemantic(t *testing.T) {
	idx, err := Build(context.Background(), testLabs(), mock.NewMockEmbedder())
	require.NoError(t, err)

	scores := idx.ScoreSemantic(mock.Vector("natural language processing and large language models"))
	require.Len(t, scores, 3)
	assert.Greater(t, scores["nlp"], scores["vision"])
	assert.Greater(t, scores["nlp"], scores["robotics"])
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestPassage(t *testing.T) {
	lab := core.Lab{ID: "x", Name: "Empty Lab", Department: "경영학"}
	assert.Equal(t, "Empty Lab 경영학", Passage(&lab))

	lab.Sections = map[core.Section]string{
		core.SectionVision:   "ignored",
		core.SectionResearch: "agents",
		core.SectionAbout:    "about us",
	}
	assert.Equal(t, "about us agents", Passage(&lab))
}
