package scoring

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/poiesic/labmatch/ai"
	"github.com/poiesic/labmatch/ai/mock"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const visionResearch = "medical image segmentation with deep convolutional networks"

func gpa(v float64) *float64 { return &v }

func newTestScorer(t *testing.T, profile string, opts ...Option) (*Scorer, *mock.MockEmbedder) {
	t.Helper()
	cfg, err := Profile(profile)
	require.NoError(t, err)
	embedder := mock.NewMockEmbedder()
	s, err := NewScorer(cfg, embedder, opts...)
	require.NoError(t, err)
	return s, embedder
}

func visionLab() core.Lab {
	return core.Lab{
		ID:         "vision",
		Name:       "Vision Lab",
		Department: "컴퓨터공학",
		Sections:   map[core.Section]string{core.SectionResearch: visionResearch},
	}
}

func TestNewScorer_Validation(t *testing.T) {
	cfg, err := Profile(DefaultProfile)
	require.NoError(t, err)

	_, err = NewScorer(cfg, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewScorer(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bad := *cfg
	bad.Weights.Keyword = 0.9
	_, err = NewScorer(&bad, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewScorer(cfg, mock.NewMockEmbedder(), WithConcurrency(0))
	assert.Error(t, err)
}

func TestScoreLab_StrongMatch(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	lab := visionLab()
	profile := &core.StudentProfile{
		Intro1:        visionResearch,
		Major:         "컴퓨터공학",
		LanguageScore: "900",
		GPA:           gpa(4.0),
	}

	result, err := s.ScoreLab(context.Background(), profile, &lab)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.Sentence, 1e-9)
	assert.InDelta(t, 1.0, result.Keyword, 1e-9)
	assert.InDelta(t, 1.0, result.Numeric, 1e-9)
	assert.GreaterOrEqual(t, result.FinalScore, 0.9)

	major, ok := result.Field(core.DimensionKeyword, FieldMajor)
	require.True(t, ok)
	assert.Equal(t, 1.0, major.Score)
	assert.Equal(t, "major_rule", major.Method)
	assert.InDelta(t, 1.0, major.Weight, 1e-9, "major carries the whole keyword dimension")

	// Missing fields are recorded but neither help nor hurt.
	for _, name := range []string{FieldCertification, FieldAward, FieldTechStack} {
		fs, ok := result.Field(core.DimensionKeyword, name)
		require.True(t, ok, name)
		assert.True(t, fs.Absent, name)
		assert.Equal(t, similarity.Neutral, fs.Score, name)
		assert.Zero(t, fs.Weight, name)
	}
	proficiency, ok := result.Field(core.DimensionNumeric, FieldProficiency)
	require.True(t, ok)
	assert.True(t, proficiency.Absent)
	assert.Zero(t, proficiency.Weight)
}

func TestScoreLab_Intro1PrefersResearchSection(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)

	t.Run("research and about", func(t *testing.T) {
		lab := visionLab()
		lab.Sections[core.SectionAbout] = "founded in 2010, the lab hosts twelve graduate students"
		profile := &core.StudentProfile{
			Intro1:             visionResearch,
			Major:              "컴퓨터공학",
			LanguageScore:      "900",
			EnglishProficiency: "상",
			GPA:                gpa(4.0),
		}

		result, err := s.ScoreLab(context.Background(), profile, &lab)
		require.NoError(t, err)
		intro1, _ := result.Field(core.DimensionSentence, FieldIntro1)
		assert.InDelta(t, 1.0, intro1.Score, 1e-6)
		assert.GreaterOrEqual(t, result.FinalScore, 0.9)
	})

	t.Run("about only", func(t *testing.T) {
		lab := core.Lab{
			ID:       "about",
			Sections: map[core.Section]string{core.SectionAbout: visionResearch},
		}
		result, err := s.ScoreLab(context.Background(), &core.StudentProfile{Intro1: visionResearch}, &lab)
		require.NoError(t, err)
		intro1, _ := result.Field(core.DimensionSentence, FieldIntro1)
		assert.False(t, intro1.Absent)
		assert.InDelta(t, 1.0, intro1.Score, 1e-6)
	})
}

func TestScoreLab_PartialDimensionsRenormalized(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	lab := visionLab()
	lab.Department = "기계공학"
	profile := &core.StudentProfile{
		ResearchInterests: "x",
		Major:             "경영학",
		GPA:               gpa(3.0),
	}

	result, err := s.ScoreLab(context.Background(), profile, &lab)
	require.NoError(t, err)

	// A mismatch on the only present field is not averaged up by absent ones.
	assert.InDelta(t, 0.0, result.Keyword, 1e-9)
	assert.InDelta(t, 0.0, result.Numeric, 1e-9)
}

func TestScoreLab_OnlyResearchInterests(t *testing.T) {
	s, embedder := newTestScorer(t, DefaultProfile)
	lab := visionLab()
	lab.Sections[core.SectionAbout] = "we are a computer vision group"
	lab.Sections[core.SectionMethods] = "pytorch"
	profile := &core.StudentProfile{ResearchInterests: "deep learning for image segmentation"}

	result, err := s.ScoreLab(context.Background(), profile, &lab)
	require.NoError(t, err)

	// Sentence is the dense comparison of interests with the research text.
	want, err := (&similarity.Cosine{Embedder: embedder}).Similarity(context.Background(),
		profile.ResearchInterests, lab.Sections[core.SectionResearch])
	require.NoError(t, err)
	assert.InDelta(t, want, result.Sentence, 1e-9)

	intro1, _ := result.Field(core.DimensionSentence, FieldIntro1)
	assert.False(t, intro1.Absent)
	assert.InDelta(t, 1.0, intro1.Weight, 1e-9, "remaining sentence weight is renormalized")

	for _, name := range []string{FieldIntro2, FieldIntro3, FieldPortfolio} {
		fs, ok := result.Field(core.DimensionSentence, name)
		require.True(t, ok, name)
		assert.True(t, fs.Absent, name)
		assert.Zero(t, fs.Weight, name)
	}

	assert.InDelta(t, similarity.Neutral, result.Keyword, 1e-9)
	assert.InDelta(t, similarity.Neutral, result.Numeric, 1e-9)
	for _, dim := range []core.Dimension{core.DimensionKeyword, core.DimensionNumeric} {
		for _, fs := range result.Breakdown[dim] {
			assert.True(t, fs.Absent, fs.Field)
			assert.Equal(t, similarity.Neutral, fs.Score, fs.Field)
			assert.Zero(t, fs.Weight, fs.Field)
			assert.Equal(t, MethodAbsent, fs.Method, fs.Field)
		}
	}
}

func TestScoreLab_NoSentenceData(t *testing.T) {
	s, embedder := newTestScorer(t, DefaultProfile)
	lab := core.Lab{ID: "empty", Department: "경영학"}
	profile := &core.StudentProfile{ResearchInterests: "finance", Major: "경영학"}

	result, err := s.ScoreLab(context.Background(), profile, &lab)
	require.NoError(t, err)
	assert.Equal(t, similarity.Neutral, result.Sentence)
	assert.Zero(t, embedder.CallCount())
	assert.Len(t, result.Breakdown[core.DimensionSentence], 4)
	assert.Len(t, result.Breakdown[core.DimensionKeyword], 4)
	assert.Len(t, result.Breakdown[core.DimensionNumeric], 3)
}

func TestScoreLab_Routing(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	lab := core.Lab{
		ID:                    "full",
		Department:            "전기공학",
		RequiredLanguageScore: "900",
		RequiredProficiency:   "상",
		ExpectedGPA:           gpa(4.0),
		Sections: map[core.Section]string{
			core.SectionResearch:     "power electronics",
			core.SectionRequirements: "전기기사",
			core.SectionPublications: "best paper award",
			core.SectionTechnologies: "MATLAB, Simulink",
		},
	}
	profile := &core.StudentProfile{
		ResearchInterests:  "power",
		Major:              "전자공학",
		Certifications:     []string{"전기기사"},
		Awards:             []string{"best paper award"},
		TechStack:          []string{"matlab", "simulink"},
		LanguageScore:      "855",
		EnglishProficiency: "중",
		GPA:                gpa(3.75),
	}

	result, err := s.ScoreLab(context.Background(), profile, &lab)
	require.NoError(t, err)

	expect := map[string]float64{
		FieldMajor:         0.8,
		FieldCertification: 1.0,
		FieldAward:         1.0,
		FieldLanguage:      (855.0/900.0 - 0.7) / 0.3,
		FieldProficiency:   0.7,
		FieldGPA:           0.5,
	}
	for _, dim := range []core.Dimension{core.DimensionKeyword, core.DimensionNumeric} {
		for _, fs := range result.Breakdown[dim] {
			if want, ok := expect[fs.Field]; ok {
				assert.False(t, fs.Absent, fs.Field)
				assert.InDelta(t, want, fs.Score, 1e-9, fs.Field)
			}
		}
	}
	tech, _ := result.Field(core.DimensionKeyword, FieldTechStack)
	assert.InDelta(t, 1.0, tech.Score, 1e-6)
}

func TestScoreLab_OPIcFallback(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	lab := visionLab()

	result, err := s.ScoreLab(context.Background(), &core.StudentProfile{ResearchInterests: "x", OPIcGrade: "IM1"}, &lab)
	require.NoError(t, err)
	lang, _ := result.Field(core.DimensionNumeric, FieldLanguage)
	assert.InDelta(t, (750.0/800.0-0.7)/0.3, lang.Score, 1e-9)
}

func TestScoreLab_InvalidProfile(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	lab := visionLab()

	_, err := s.ScoreLab(context.Background(), &core.StudentProfile{GPA: gpa(7)}, &lab)
	assert.ErrorIs(t, err, core.ErrGPAOutOfRange)

	_, err = s.ScoreLab(context.Background(), nil, &lab)
	assert.ErrorIs(t, err, core.ErrInvalidProfile)
}

func rerankLabs() []core.Lab {
	topics := []string{
		"medical image segmentation",
		"language models",
		"robot control",
		"graph databases",
		"image classification",
		"speech synthesis",
		"image retrieval",
	}
	labs := make([]core.Lab, len(topics))
	for i, topic := range topics {
		labs[i] = core.Lab{
			ID:         fmt.Sprintf("lab-%d", i),
			Name:       topic,
			Department: "컴퓨터공학",
			Sections:   map[core.Section]string{core.SectionResearch: topic},
		}
	}
	return labs
}

func TestRerank_OrderInvariant(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	profile := &core.StudentProfile{
		ResearchInterests: "image segmentation",
		Intro2:            "I trained image models",
		Major:             "소프트웨어",
	}
	labs := rerankLabs()

	want, err := s.Rerank(context.Background(), profile, labs, 5)
	require.NoError(t, err)
	require.Len(t, want, 5)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		shuffled := append([]core.Lab(nil), labs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := s.Rerank(context.Background(), profile, shuffled, 5)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRerank_SortAndTruncate(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	profile := &core.StudentProfile{ResearchInterests: "image segmentation"}

	results, err := s.Rerank(context.Background(), profile, rerankLabs(), 0)
	require.NoError(t, err)
	require.Len(t, results, DefaultTopK)

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if prev.FinalScore == cur.FinalScore {
			assert.Less(t, prev.LabID, cur.LabID)
		} else {
			assert.Greater(t, prev.FinalScore, cur.FinalScore)
		}
	}
	assert.Equal(t, "lab-0", results[0].LabID)
}

func TestRerank_TieBreak(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	labs := []core.Lab{
		{ID: "c", Department: "경영학"},
		{ID: "a", Department: "경영학"},
		{ID: "b", Department: "경영학"},
	}
	results, err := s.Rerank(context.Background(), &core.StudentProfile{ResearchInterests: "x"}, labs, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].LabID, results[1].LabID, results[2].LabID})
}

func TestRerank_MinScore(t *testing.T) {
	cfg, err := Profile(DefaultProfile)
	require.NoError(t, err)
	cfg.Options.MinScore = 0.6
	cfg, err = NewConfig(*cfg)
	require.NoError(t, err)

	s, err := NewScorer(cfg, mock.NewMockEmbedder())
	require.NoError(t, err)

	labs := []core.Lab{visionLab(), {ID: "empty", Department: "경영학"}}
	profile := &core.StudentProfile{ResearchInterests: visionResearch, Major: "컴퓨터공학"}

	results, err := s.Rerank(context.Background(), profile, labs, 5)
	require.NoError(t, err)
	require.Len(t, results, 1, "the lab without research text falls below the minimum")
	assert.Equal(t, "vision", results[0].LabID)
}

func TestRerank_EmbeddingFailure(t *testing.T) {
	s, embedder := newTestScorer(t, DefaultProfile)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("backend down")
	}

	_, err := s.Rerank(context.Background(), &core.StudentProfile{ResearchInterests: "robots"}, rerankLabs(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrEmbeddingBackend)
}

func TestRerank_Empty(t *testing.T) {
	s, _ := newTestScorer(t, DefaultProfile)
	results, err := s.Rerank(context.Background(), &core.StudentProfile{ResearchInterests: "x"}, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCombine(t *testing.T) {
	entries := []core.FieldScore{
		{Field: "a", Score: 1, Weight: 0.3},
		{Field: "b", Score: similarity.Neutral, Weight: 0, Absent: true},
		{Field: "c", Score: 0.5, Weight: 0.1},
	}
	assert.InDelta(t, 0.875, combine(entries), 1e-9)
	assert.InDelta(t, 0.75, entries[0].Weight, 1e-9)
	assert.InDelta(t, 0.25, entries[2].Weight, 1e-9)

	assert.Equal(t, similarity.Neutral, combine([]core.FieldScore{{Score: similarity.Neutral, Weight: 0, Absent: true}}))
}
