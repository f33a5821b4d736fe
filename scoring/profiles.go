package scoring

import (
	"fmt"
	"sort"

	"github.com/poiesic/labmatch/similarity"
)

// DefaultProfile is the profile used when none is named.
const DefaultProfile = "default"

// DefaultOptions returns the default strategy parameters.
func DefaultOptions() Options {
	return Options{
		Intro2KeywordWeight:    similarity.DefaultBlendKeywordWeight,
		PortfolioChunkSize:     similarity.DefaultChunkSize,
		TechJaccardWeight:      similarity.DefaultTechJaccardWeight,
		TechEmbeddingWeight:    similarity.DefaultTechEmbeddingWeight,
		LanguageThreshold:      similarity.DefaultLanguageThreshold,
		OPIcRequirement:        "IM2",
		ProficiencyRequirement: similarity.DefaultProficiency,
		ExpectedGPA:            similarity.DefaultExpectedGPA,
		MaxGPAGap:              similarity.DefaultMaxGPAGap,
		MinScore:               0,
	}
}

func defaultConfig() Config {
	return Config{
		Name:     DefaultProfile,
		Weights:  DimensionWeights{Sentence: 0.6, Keyword: 0.3, Numeric: 0.1},
		Sentence: SentenceWeights{Intro1: 0.3, Intro2: 0.25, Intro3: 0.2, Portfolio: 0.25},
		Keyword:  KeywordWeights{Major: 0.35, Certification: 0.25, Award: 0.2, TechStack: 0.2},
		Numeric:  NumericWeights{Language: 0.3, Proficiency: 0.3, GPA: 0.4},
		Options:  DefaultOptions(),
	}
}

// profiles derive from the default configuration.
var profiles = map[string]func() Config{
	DefaultProfile: defaultConfig,
	// Research fit first: interests dominate the sentence dimension.
	"research": func() Config {
		c := defaultConfig()
		c.Name = "research"
		c.Weights = DimensionWeights{Sentence: 0.5, Keyword: 0.3, Numeric: 0.2}
		c.Sentence = SentenceWeights{Intro1: 0.4, Intro2: 0.2, Intro3: 0.2, Portfolio: 0.2}
		return c
	},
	// Practical skills: keywords weigh most, led by the technology stack.
	"skill": func() Config {
		c := defaultConfig()
		c.Name = "skill"
		c.Weights = DimensionWeights{Sentence: 0.3, Keyword: 0.45, Numeric: 0.25}
		c.Keyword = KeywordWeights{Major: 0.25, Certification: 0.25, Award: 0.15, TechStack: 0.35}
		return c
	},
	// Academic record: numeric scores weigh most, led by GPA.
	"academic": func() Config {
		c := defaultConfig()
		c.Name = "academic"
		c.Weights = DimensionWeights{Sentence: 0.3, Keyword: 0.3, Numeric: 0.4}
		c.Numeric = NumericWeights{Language: 0.25, Proficiency: 0.25, GPA: 0.5}
		return c
	},
}

// Profile returns the validated named profile.
func Profile(name string) (*Config, error) {
	build, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return NewConfig(build())
}

// ProfileNames returns the names of all built-in profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
