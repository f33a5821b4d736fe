package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Key identifies a piece of text by its content.
// It is used to memoize embeddings across requests and processes.
type Key uint64

// KeyFromContent generates a deterministic Key from text content using BLAKE2b hashing.
// Identical content always produces identical keys.
func KeyFromContent(text string) Key {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Key(binary.LittleEndian.Uint64(sum))
}

// Section names a text field of a lab.
type Section string

const (
	SectionAbout        Section = "about"
	SectionResearch     Section = "research"
	SectionMethods      Section = "methods"
	SectionProjects     Section = "projects"
	SectionVision       Section = "vision"
	SectionPublications Section = "publications"
	SectionAchievements Section = "achievements"
	SectionTechnologies Section = "technologies"
	SectionRequirements Section = "requirements"
)

// Sections lists every known section in a stable order.
var Sections = []Section{
	SectionAbout,
	SectionResearch,
	SectionMethods,
	SectionProjects,
	SectionVision,
	SectionPublications,
	SectionAchievements,
	SectionTechnologies,
	SectionRequirements,
}

// Lab is a research lab that can be recommended to a student.
// Labs are immutable once loaded into a corpus index.
type Lab struct {
	ID         string
	Name       string
	Professor  string
	Department string
	Sections   map[Section]string

	// Optional requirement overrides. Empty values fall back to scoring defaults.
	RequiredLanguageScore string   // numeric test score ("800") or OPIc grade ("IM2")
	RequiredProficiency   string   // ordinal level ("중", "intermediate")
	ExpectedGPA           *float64 // on a 4.5 scale
}

// Text returns the named section, or "" if the lab does not have it.
func (l *Lab) Text(sections ...Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if t := strings.TrimSpace(l.Sections[s]); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// FirstText returns the first non-blank section among the candidates.
func (l *Lab) FirstText(sections ...Section) string {
	for _, s := range sections {
		if t := strings.TrimSpace(l.Sections[s]); t != "" {
			return t
		}
	}
	return ""
}

// AllText joins every section in the canonical section order.
func (l *Lab) AllText() string {
	return l.Text(Sections...)
}

// StudentProfile describes a student asking for recommendations.
// Only ResearchInterests is required; every other field may be empty.
type StudentProfile struct {
	ID                string
	ResearchInterests string

	Intro1    string // research interests in the student's own words
	Intro2    string // hands-on technical experience
	Intro3    string // research goals
	Portfolio string

	Major          string
	Certifications []string
	Awards         []string
	TechStack      []string

	LanguageScore      string // numeric test score, e.g. "850"
	OPIcGrade          string // used when LanguageScore is empty
	EnglishProficiency string
	GPA                *float64
}

// Provenance records which retrieval methods surfaced a candidate.
type Provenance uint8

const (
	// ProvenanceLexical marks a candidate found by lexical retrieval.
	ProvenanceLexical Provenance = 1 << iota
	// ProvenanceSemantic marks a candidate found by semantic retrieval.
	ProvenanceSemantic
)

// Has reports whether p includes flag.
func (p Provenance) Has(flag Provenance) bool {
	return p&flag != 0
}

// String returns a comma separated list of retrieval methods.
func (p Provenance) String() string {
	var parts []string
	if p.Has(ProvenanceLexical) {
		parts = append(parts, "lexical")
	}
	if p.Has(ProvenanceSemantic) {
		parts = append(parts, "semantic")
	}
	return strings.Join(parts, ",")
}

// CandidateEntry is a lab surfaced by candidate generation.
// A nil score means the lab was not surfaced by that method, which is
// different from a true zero score.
type CandidateEntry struct {
	LabID         string
	LexicalScore  *float64
	SemanticScore *float64
	Provenance    Provenance
}

// Dimension groups related sub-scores.
type Dimension string

const (
	DimensionSentence Dimension = "sentence"
	DimensionKeyword  Dimension = "keyword"
	DimensionNumeric  Dimension = "numeric"
)

// FieldScore explains one sub-field's contribution to a dimension score.
type FieldScore struct {
	Field  string
	Score  float64
	Weight float64 // effective weight within the dimension
	Absent bool    // true when the student or lab had no data for this field
	Method string  // strategy that produced Score
}

// ScoredResult is a ranked lab with an explainable breakdown.
type ScoredResult struct {
	LabID      string
	LabName    string
	FinalScore float64
	Sentence   float64
	Keyword    float64
	Numeric    float64
	Breakdown  map[Dimension][]FieldScore
}

// Field returns the breakdown entry for a field, if present.
func (r *ScoredResult) Field(dim Dimension, field string) (FieldScore, bool) {
	for _, fs := range r.Breakdown[dim] {
		if fs.Field == field {
			return fs, true
		}
	}
	return FieldScore{}, false
}
