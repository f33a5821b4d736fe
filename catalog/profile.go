package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/poiesic/labmatch/core"
)

// ProfileRecord is the JSON form of a student profile.
type ProfileRecord struct {
	ID                 string   `json:"id,omitempty"`
	ResearchInterests  string   `json:"research_interests"`
	Intro1             string   `json:"intro1,omitempty"`
	Intro2             string   `json:"intro2,omitempty"`
	Intro3             string   `json:"intro3,omitempty"`
	Portfolio          string   `json:"portfolio,omitempty"`
	Major              string   `json:"major,omitempty"`
	Certifications     []string `json:"certifications,omitempty"`
	Awards             []string `json:"awards,omitempty"`
	TechStack          []string `json:"tech_stack,omitempty"`
	LanguageScore      string   `json:"language_score,omitempty"`
	OPIcGrade          string   `json:"opic_grade,omitempty"`
	EnglishProficiency string   `json:"english_proficiency,omitempty"`
	GPA                *float64 `json:"gpa,omitempty"`
}

// Profile converts the record and validates the result.
func (r ProfileRecord) Profile() (*core.StudentProfile, error) {
	p := &core.StudentProfile{
		ID:                 r.ID,
		ResearchInterests:  r.ResearchInterests,
		Intro1:             r.Intro1,
		Intro2:             r.Intro2,
		Intro3:             r.Intro3,
		Portfolio:          r.Portfolio,
		Major:              r.Major,
		Certifications:     r.Certifications,
		Awards:             r.Awards,
		TechStack:          r.TechStack,
		LanguageScore:      r.LanguageScore,
		OPIcGrade:          r.OPIcGrade,
		EnglishProficiency: r.EnglishProficiency,
		GPA:                r.GPA,
	}
	if err := core.ValidateProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProfile reads a student profile from a JSON file.
func LoadProfile(path string) (*core.StudentProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeProfile(f)
}

// DecodeProfile reads a student profile from JSON.
func DecodeProfile(r io.Reader) (*core.StudentProfile, error) {
	var record ProfileRecord
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: profile: %w", ErrMalformedCatalog, err)
	}
	return record.Profile()
}
