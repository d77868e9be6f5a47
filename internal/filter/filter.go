package filter

import (
	"strings"

	"legalconnect-engine/internal/domain"
)

// Result is what the directory view renders after a filter pass.
type Result struct {
	Lawyers     []domain.Lawyer `json:"lawyers"`
	ResultCount int             `json:"resultCount"`
	TotalCount  int             `json:"totalCount"`
}

// Apply returns the records satisfying every predicate in c, in input order.
// Records are expected to have passed domain.Normalize.
func Apply(records []domain.Lawyer, c Criteria) []domain.Lawyer {
	m := newMatcher(c)
	out := make([]domain.Lawyer, 0, len(records))
	for _, l := range records {
		if m.match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Run applies c and reports counts alongside the matches.
func Run(records []domain.Lawyer, c Criteria) Result {
	matched := Apply(records, c)
	return Result{
		Lawyers:     matched,
		ResultCount: len(matched),
		TotalCount:  len(records),
	}
}

type matcher struct {
	c        Criteria
	location string
	language string
	query    string
}

func newMatcher(c Criteria) matcher {
	return matcher{
		c:        c,
		location: strings.ToLower(c.Location),
		language: strings.ToLower(c.Language),
		query:    strings.ToLower(c.Query),
	}
}

func (m matcher) match(l domain.Lawyer) bool {
	c := m.c

	if c.PracticeArea != "" && l.PracticeArea != c.PracticeArea {
		return false
	}
	if m.location != "" && !strings.Contains(strings.ToLower(l.Location), m.location) {
		return false
	}
	if c.MinExperience > 0 && l.ExperienceYears < c.MinExperience {
		return false
	}
	if c.MaxRate != nil && l.HourlyRate > *c.MaxRate {
		return false
	}
	if c.VerifiedOnly && !l.Verified {
		return false
	}
	if c.MediationOnly && !l.MediationCertified {
		return false
	}
	if m.language != "" && !anyContains(l.Languages, m.language) {
		return false
	}
	if m.query != "" && !strings.Contains(searchText(l), m.query) {
		return false
	}
	return true
}

func anyContains(xs []string, needle string) bool {
	for _, x := range xs {
		if strings.Contains(strings.ToLower(x), needle) {
			return true
		}
	}
	return false
}

// searchText is the lowercase haystack for free-text queries.
func searchText(l domain.Lawyer) string {
	parts := make([]string, 0, 3+len(l.Specialties))
	for _, p := range append([]string{l.Name, l.Firm, l.Location}, l.Specialties...) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
