package scoring

import (
	"strings"

	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/similarity"
)

// Field names used in score breakdowns.
const (
	FieldIntro1        = "intro1"
	FieldIntro2        = "intro2"
	FieldIntro3        = "intro3"
	FieldPortfolio     = "portfolio"
	FieldMajor         = "major"
	FieldCertification = "certification"
	FieldAward         = "award"
	FieldTechStack     = "tech_stack"
	FieldLanguage      = "language"
	FieldProficiency   = "proficiency"
	FieldGPA           = "gpa"
)

// MethodAbsent marks a breakdown entry that had no data to compare.
const MethodAbsent = "absent"

// field routes one student attribute to the lab text it is compared with.
// A field without data on either side is recorded as absent and left out of
// its dimension's mean.
type field struct {
	name      string
	dimension core.Dimension
	weight    func(c *Config) float64
	student   func(p *core.StudentProfile) string
	lab       func(p *core.StudentProfile, l *core.Lab, c *Config) string
	// labRequired marks fields whose lab side may be blank. Numeric fields
	// fall back to configured requirements instead.
	labRequired bool
}

var fields = []field{
	{
		name: FieldIntro1, dimension: core.DimensionSentence, labRequired: true,
		weight: func(c *Config) float64 { return c.Sentence.Intro1 },
		student: func(p *core.StudentProfile) string {
			if strings.TrimSpace(p.Intro1) != "" {
				return p.Intro1
			}
			return p.ResearchInterests
		},
		// The research section alone when present, so an about blurb does not
		// dilute a direct match.
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.FirstText(core.SectionResearch, core.SectionAbout)
		},
	},
	{
		name: FieldIntro2, dimension: core.DimensionSentence, labRequired: true,
		weight:  func(c *Config) float64 { return c.Sentence.Intro2 },
		student: func(p *core.StudentProfile) string { return p.Intro2 },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.Text(core.SectionMethods, core.SectionProjects)
		},
	},
	{
		name: FieldIntro3, dimension: core.DimensionSentence, labRequired: true,
		weight:  func(c *Config) float64 { return c.Sentence.Intro3 },
		student: func(p *core.StudentProfile) string { return p.Intro3 },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.FirstText(core.SectionVision, core.SectionAbout)
		},
	},
	{
		name: FieldPortfolio, dimension: core.DimensionSentence, labRequired: true,
		weight:  func(c *Config) float64 { return c.Sentence.Portfolio },
		student: func(p *core.StudentProfile) string { return p.Portfolio },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.AllText()
		},
	},
	{
		name: FieldMajor, dimension: core.DimensionKeyword, labRequired: true,
		weight:  func(c *Config) float64 { return c.Keyword.Major },
		student: func(p *core.StudentProfile) string { return p.Major },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.Department
		},
	},
	{
		name: FieldCertification, dimension: core.DimensionKeyword, labRequired: true,
		weight:  func(c *Config) float64 { return c.Keyword.Certification },
		student: func(p *core.StudentProfile) string { return joinList(p.Certifications) },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.Text(core.SectionRequirements)
		},
	},
	{
		name: FieldAward, dimension: core.DimensionKeyword, labRequired: true,
		weight:  func(c *Config) float64 { return c.Keyword.Award },
		student: func(p *core.StudentProfile) string { return joinList(p.Awards) },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.FirstText(core.SectionAchievements, core.SectionPublications)
		},
	},
	{
		name: FieldTechStack, dimension: core.DimensionKeyword, labRequired: true,
		weight:  func(c *Config) float64 { return c.Keyword.TechStack },
		student: func(p *core.StudentProfile) string { return joinList(p.TechStack) },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.FirstText(core.SectionTechnologies, core.SectionMethods)
		},
	},
	{
		name: FieldLanguage, dimension: core.DimensionNumeric,
		weight: func(c *Config) float64 { return c.Numeric.Language },
		student: func(p *core.StudentProfile) string {
			if strings.TrimSpace(p.LanguageScore) != "" {
				return p.LanguageScore
			}
			return p.OPIcGrade
		},
		lab: func(p *core.StudentProfile, l *core.Lab, c *Config) string {
			if strings.TrimSpace(l.RequiredLanguageScore) != "" {
				return l.RequiredLanguageScore
			}
			// Students with only an OPIc grade are held to the OPIc requirement.
			if strings.TrimSpace(p.LanguageScore) == "" {
				return c.Options.OPIcRequirement
			}
			return ""
		},
	},
	{
		name: FieldProficiency, dimension: core.DimensionNumeric,
		weight:  func(c *Config) float64 { return c.Numeric.Proficiency },
		student: func(p *core.StudentProfile) string { return p.EnglishProficiency },
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			return l.RequiredProficiency
		},
	},
	{
		name: FieldGPA, dimension: core.DimensionNumeric,
		weight: func(c *Config) float64 { return c.Numeric.GPA },
		student: func(p *core.StudentProfile) string {
			if p.GPA == nil {
				return ""
			}
			return similarity.FormatGPA(*p.GPA)
		},
		lab: func(_ *core.StudentProfile, l *core.Lab, _ *Config) string {
			if l.ExpectedGPA == nil {
				return ""
			}
			return similarity.FormatGPA(*l.ExpectedGPA)
		},
	},
}

func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ", ")
}
