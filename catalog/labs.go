package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/labmatch/core"
)

// LabRecord is the JSON form of a lab in a flat catalog.
type LabRecord struct {
	ID                    string            `json:"id"`
	Name                  string            `json:"name"`
	Professor             string            `json:"professor,omitempty"`
	Department            string            `json:"department,omitempty"`
	Sections              map[string]string `json:"sections,omitempty"`
	RequiredLanguageScore string            `json:"required_language_score,omitempty"`
	RequiredProficiency   string            `json:"required_proficiency,omitempty"`
	ExpectedGPA           *float64          `json:"expected_gpa,omitempty"`
}

// Lab converts the record and validates the result.
func (r LabRecord) Lab() (core.Lab, error) {
	lab := core.Lab{
		ID:                    strings.TrimSpace(r.ID),
		Name:                  r.Name,
		Professor:             r.Professor,
		Department:            r.Department,
		RequiredLanguageScore: r.RequiredLanguageScore,
		RequiredProficiency:   r.RequiredProficiency,
		ExpectedGPA:           r.ExpectedGPA,
		Sections:              make(map[core.Section]string, len(r.Sections)),
	}
	for name, text := range r.Sections {
		lab.Sections[core.Section(strings.ToLower(strings.TrimSpace(name)))] = text
	}
	if err := core.ValidateLab(&lab); err != nil {
		return core.Lab{}, err
	}
	return lab, nil
}

// NewLabRecord converts a lab to its JSON form.
func NewLabRecord(lab *core.Lab) LabRecord {
	r := LabRecord{
		ID:                    lab.ID,
		Name:                  lab.Name,
		Professor:             lab.Professor,
		Department:            lab.Department,
		RequiredLanguageScore: lab.RequiredLanguageScore,
		RequiredProficiency:   lab.RequiredProficiency,
		ExpectedGPA:           lab.ExpectedGPA,
	}
	if len(lab.Sections) > 0 {
		r.Sections = make(map[string]string, len(lab.Sections))
		for section, text := range lab.Sections {
			r.Sections[string(section)] = text
		}
	}
	return r
}

// LoadLabs reads a flat JSON array of labs from path.
func LoadLabs(path string) ([]core.Lab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeLabs(f)
}

// DecodeLabs reads a flat JSON array of labs. Input order is kept.
func DecodeLabs(r io.Reader) ([]core.Lab, error) {
	var records []LabRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCatalog, err)
	}
	labs := make([]core.Lab, 0, len(records))
	for i, record := range records {
		lab, err := record.Lab()
		if err != nil {
			return nil, fmt.Errorf("lab %d: %w", i, err)
		}
		labs = append(labs, lab)
	}
	return labs, nil
}

// EncodeLabs writes labs as an indented flat JSON array.
func EncodeLabs(w io.Writer, labs []core.Lab) error {
	records := make([]LabRecord, len(labs))
	for i := range labs {
		records[i] = NewLabRecord(&labs[i])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
