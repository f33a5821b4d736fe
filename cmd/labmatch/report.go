package main

import (
	"io"
	"math"

	"github.com/goccy/go-json"
	"github.com/poiesic/labmatch"
	"github.com/poiesic/labmatch/core"
)

type report struct {
	Profile    string            `json:"profile"`
	Candidates []candidateReport `json:"candidates"`
	Results    []resultReport    `json:"results"`
}

type candidateReport struct {
	LabID         string   `json:"lab_id"`
	LexicalScore  *float64 `json:"lexical_score"`
	SemanticScore *float64 `json:"semantic_score"`
	Provenance    string   `json:"provenance"`
}

type resultReport struct {
	Rank       int                              `json:"rank"`
	LabID      string                           `json:"lab_id"`
	LabName    string                           `json:"lab_name"`
	FinalScore float64                          `json:"final_score"`
	Sentence   float64                          `json:"sentence_score"`
	Keyword    float64                          `json:"keyword_score"`
	Numeric    float64                          `json:"numeric_score"`
	Breakdown  map[core.Dimension][]fieldReport `json:"breakdown"`
}

type fieldReport struct {
	Field  string  `json:"field"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Absent bool    `json:"absent,omitempty"`
	Method string  `json:"method"`
}

func newReport(profile string, rec *labmatch.Recommendation) report {
	out := report{
		Profile:    profile,
		Candidates: make([]candidateReport, 0, len(rec.Candidates)),
		Results:    make([]resultReport, 0, len(rec.Results)),
	}
	for _, c := range rec.Candidates {
		out.Candidates = append(out.Candidates, candidateReport{
			LabID:         c.LabID,
			LexicalScore:  roundPtr(c.LexicalScore),
			SemanticScore: roundPtr(c.SemanticScore),
			Provenance:    c.Provenance.String(),
		})
	}
	for i, r := range rec.Results {
		breakdown := make(map[core.Dimension][]fieldReport, len(r.Breakdown))
		for dim, fields := range r.Breakdown {
			entries := make([]fieldReport, 0, len(fields))
			for _, f := range fields {
				entries = append(entries, fieldReport{
					Field:  f.Field,
					Score:  round(f.Score),
					Weight: round(f.Weight),
					Absent: f.Absent,
					Method: f.Method,
				})
			}
			breakdown[dim] = entries
		}
		out.Results = append(out.Results, resultReport{
			Rank:       i + 1,
			LabID:      r.LabID,
			LabName:    r.LabName,
			FinalScore: round(r.FinalScore),
			Sentence:   round(r.Sentence),
			Keyword:    round(r.Keyword),
			Numeric:    round(r.Numeric),
			Breakdown:  breakdown,
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// round keeps four decimals.
func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v)
	return &r
}
