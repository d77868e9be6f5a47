package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"legalconnect-engine/internal/domain"
)

func refineRoster() []domain.Lawyer {
	return []domain.Lawyer{
		{ID: 1, State: "NSW", ExperienceYears: 5, HourlyRate: 300, SuccessRate: 80, ResponseGuarantee: true},
		{ID: 2, State: "VIC", ExperienceYears: 12, HourlyRate: 250, SuccessRate: 95},
		{ID: 3, State: "NSW", ExperienceYears: 12, HourlyRate: 450, SuccessRate: 90, ResponseGuarantee: true},
	}
}

func TestRefine_ZeroKeepsOrder(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, ids(Refine(refineRoster(), Refinement{})))
}

func TestRefine_StateAndGuarantee(t *testing.T) {
	got := Refine(refineRoster(), Refinement{State: "nsw"})
	assert.Equal(t, []int64{1, 3}, ids(got))

	got = Refine(refineRoster(), Refinement{ResponseGuarantee: true, SortBy: SortRate})
	assert.Equal(t, []int64{3, 1}, ids(got))
}

func TestRefine_SortIsStableDescending(t *testing.T) {
	got := Refine(refineRoster(), Refinement{SortBy: SortExperience})
	assert.Equal(t, []int64{2, 3, 1}, ids(got))

	got = Refine(refineRoster(), Refinement{SortBy: SortID})
	assert.Equal(t, []int64{3, 2, 1}, ids(got))
}

func TestRefinementFromQuery(t *testing.T) {
	r := RefinementFromQuery(url.Values{"state": {"qld"}, "responseGuarantee": {"true"}, "sortBy": {"bogus"}})
	assert.Equal(t, Refinement{State: "QLD", ResponseGuarantee: true, SortBy: SortID}, r)

	r = RefinementFromQuery(url.Values{"sortBy": {"successRate"}})
	assert.Equal(t, SortSuccessRate, r.SortBy)

	assert.Equal(t, Refinement{}, RefinementFromQuery(url.Values{}))
}
