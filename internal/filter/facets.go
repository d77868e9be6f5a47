package filter

import (
	"sort"

	"legalconnect-engine/internal/domain"
)

// Facets lists the distinct values present in the whole roster.
type Facets struct {
	PracticeAreas []string `json:"practiceAreas"`
	Locations     []string `json:"locations"`
	Languages     []string `json:"languages"`
}

// FacetsOf derives facets from the full record list, not a filtered one, so
// the controls always offer a way to broaden the search.
func FacetsOf(records []domain.Lawyer) Facets {
	areas := newSet()
	locs := newSet()
	langs := newSet()
	for _, l := range records {
		areas.add(l.PracticeArea)
		locs.add(l.Location)
		for _, lang := range l.Languages {
			langs.add(lang)
		}
	}
	return Facets{
		PracticeAreas: areas.sorted(),
		Locations:     locs.sorted(),
		Languages:     langs.sorted(),
	}
}

type set map[string]struct{}

func newSet() set { return set{} }

func (s set) add(v string) {
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
