package similarity

import (
	"sort"
	"strconv"
	"strings"
)

// majorGroups maps a field-of-study group to its majors.
var majorGroups = map[string][]string{
	"컴퓨터":  {"컴퓨터공학", "소프트웨어", "인공지능", "데이터사이언스"},
	"전기전자": {"전기공학", "전자공학", "전기전자공학", "제어계측"},
	"기계":   {"기계공학", "기계설계", "자동차공학", "항공우주"},
	"화학생명": {"화학공학", "생명공학", "환경공학", "신소재"},
	"경영경제": {"경영학", "경제학", "회계학", "금융학"},
}

var engineeringGroups = map[string]bool{
	"컴퓨터":  true,
	"전기전자": true,
	"기계":   true,
	"화학생명": true,
}

var majorToGroup = func() map[string]string {
	m := make(map[string]string)
	for group, majors := range majorGroups {
		for _, major := range majors {
			m[major] = group
		}
	}
	return m
}()

// MajorGroup returns the field-of-study group of a major, if known.
func MajorGroup(major string) (string, bool) {
	group, ok := majorToGroup[strings.TrimSpace(major)]
	return group, ok
}

// DefaultCertificationWeight applies to certifications of unknown type.
const DefaultCertificationWeight = 0.3

type weightedSuffix struct {
	marker string
	weight float64
}

// certificationTypes is sorted longest marker first so that "산업기사"
// is recognized before the shorter "기사" it contains.
var certificationTypes = sortByLength([]weightedSuffix{
	{"기사", 1.0},
	{"산업기사", 0.7},
	{"기능사", 0.5},
	{"민간자격", 0.3},
	{"professional", 1.0},
	{"associate", 0.7},
})

func sortByLength(entries []weightedSuffix) []weightedSuffix {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].marker) > len(entries[j].marker)
	})
	return entries
}

// CertificationWeight returns the importance weight of a certification
// based on its type marker.
func CertificationWeight(cert string) float64 {
	lower := strings.ToLower(cert)
	for _, t := range certificationTypes {
		if strings.Contains(lower, t.marker) {
			return t.weight
		}
	}
	return DefaultCertificationWeight
}

// opicGrades converts OPIc grades to the numeric test scale.
var opicGrades = map[string]float64{
	"AL":  990,
	"IH":  900,
	"IM3": 850,
	"IM2": 800,
	"IM1": 750,
	"IL":  700,
	"NH":  650,
	"NM":  600,
	"NL":  550,
}

// ParseLanguageScore accepts a numeric test score or an OPIc grade.
func ParseLanguageScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
		return v, true
	}
	v, ok := opicGrades[strings.ToUpper(s)]
	return v, ok
}

var proficiencyLevels = []struct {
	name  string
	value float64
}{
	// Longest names first so "중상" is not read as "상".
	{"intermediate", 0.7},
	{"advanced", 0.85},
	{"beginner", 0.4},
	{"native", 1.0},
	{"fluent", 1.0},
	{"중상", 0.85},
	{"중하", 0.55},
	{"상", 1.0},
	{"중", 0.7},
	{"하", 0.4},
}

// ProficiencyLevel maps a proficiency description onto the ordinal scale.
// Exact names win over partial matches.
func ProficiencyLevel(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for _, level := range proficiencyLevels {
		if s == level.name {
			return level.value, true
		}
	}
	for _, level := range proficiencyLevels {
		if strings.Contains(s, level.name) {
			return level.value, true
		}
	}
	return 0, false
}
