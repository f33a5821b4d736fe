package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/labmatch/core"
)

// Per-lab document caps applied when collecting crawl sections.
const (
	MaxResearchDocuments = 3
	MaxAboutDocuments    = 2
	MaxProjectDocuments  = 2
)

// crawlSections maps crawler section names onto lab sections and caps.
var crawlSections = map[string]struct {
	section core.Section
	limit   int
}{
	"research": {core.SectionResearch, MaxResearchDocuments},
	"about":    {core.SectionAbout, MaxAboutDocuments},
	"project":  {core.SectionProjects, MaxProjectDocuments},
}

// flexID accepts both JSON numbers and strings.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*id = flexID(strings.TrimSpace(s))
	return nil
}

type crawlLab struct {
	KorName     string   `json:"kor_name"`
	EngName     string   `json:"eng_name"`
	Professor   string   `json:"professor"`
	Department  string   `json:"department"`
	Description string   `json:"description"`
	ExpectedGPA *float64 `json:"expected_gpa"`
}

type crawlDocument struct {
	LabID   flexID `json:"lab_id"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

// CrawlLoader builds labs from crawler output: a labs file keyed by lab ID
// and a documents file keyed by document ID.
type CrawlLoader struct {
	logger *slog.Logger
}

// Option configures a CrawlLoader.
type Option func(*CrawlLoader)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *CrawlLoader) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCrawlLoader creates a loader.
func NewCrawlLoader(opts ...Option) *CrawlLoader {
	c := &CrawlLoader{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "catalog")
	return c
}

// LoadFiles reads labs and documents from disk.
func (c *CrawlLoader) LoadFiles(labsPath, docsPath string) ([]core.Lab, error) {
	labsFile, err := os.Open(labsPath)
	if err != nil {
		return nil, err
	}
	defer labsFile.Close()

	docsFile, err := os.Open(docsPath)
	if err != nil {
		return nil, err
	}
	defer docsFile.Close()

	return c.Decode(labsFile, docsFile)
}

// Decode builds labs from the two crawl documents.
//
// Documents are grouped per lab in document ID order. Research, about and
// project documents are kept up to their caps and joined with spaces; the
// lab description leads the about section. Documents of other sections are
// ignored. Labs are returned sorted by ID.
func (c *CrawlLoader) Decode(labsReader, docsReader io.Reader) ([]core.Lab, error) {
	var rawLabs map[string]crawlLab
	if err := json.NewDecoder(labsReader).Decode(&rawLabs); err != nil {
		return nil, fmt.Errorf("%w: labs: %w", ErrMalformedCatalog, err)
	}
	var rawDocs map[string]crawlDocument
	if err := json.NewDecoder(docsReader).Decode(&rawDocs); err != nil {
		return nil, fmt.Errorf("%w: documents: %w", ErrMalformedCatalog, err)
	}

	texts := make(map[string]map[core.Section][]string, len(rawLabs))
	skipped := 0
	for _, key := range sortedIDs(rawDocs) {
		doc := rawDocs[key]
		labID := string(doc.LabID)
		if _, ok := rawLabs[labID]; !ok {
			return nil, fmt.Errorf("%w: document %s has lab_id %q", ErrUnknownLab, key, labID)
		}
		target, ok := crawlSections[strings.ToLower(strings.TrimSpace(doc.Section))]
		text := strings.TrimSpace(doc.Text)
		if !ok || text == "" {
			skipped++
			continue
		}
		if texts[labID] == nil {
			texts[labID] = make(map[core.Section][]string)
		}
		if len(texts[labID][target.section]) < target.limit {
			texts[labID][target.section] = append(texts[labID][target.section], text)
		}
	}

	labs := make([]core.Lab, 0, len(rawLabs))
	for _, id := range sortedIDs(rawLabs) {
		raw := rawLabs[id]
		lab := core.Lab{
			ID:          id,
			Name:        firstNonBlank(raw.KorName, raw.EngName),
			Professor:   strings.TrimSpace(raw.Professor),
			Department:  strings.TrimSpace(raw.Department),
			ExpectedGPA: raw.ExpectedGPA,
			Sections:    make(map[core.Section]string),
		}
		about := texts[id][core.SectionAbout]
		if d := strings.TrimSpace(raw.Description); d != "" {
			about = append([]string{d}, about...)
		}
		if len(about) > 0 {
			lab.Sections[core.SectionAbout] = strings.Join(about, " ")
		}
		for _, section := range []core.Section{core.SectionResearch, core.SectionProjects} {
			if parts := texts[id][section]; len(parts) > 0 {
				lab.Sections[section] = strings.Join(parts, " ")
			}
		}
		if err := core.ValidateLab(&lab); err != nil {
			return nil, err
		}
		labs = append(labs, lab)
	}

	c.logger.Info("crawl catalog loaded", "labs", len(labs), "documents", len(rawDocs), "skipped", skipped)
	return labs, nil
}

// sortedIDs returns map keys in ID order: numeric IDs ascending, then the
// rest lexically.
func sortedIDs[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return idLess(keys[i], keys[j]) })
	return keys
}

func idLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
