package filter

import (
	"net/url"
	"sort"
	"strings"

	"legalconnect-engine/internal/domain"
)

// Sort keys accepted by the directory API. Sorting is descending.
const (
	SortID          = "id"
	SortExperience  = "experience_years"
	SortRate        = "hourly_rate_min"
	SortSuccessRate = "success_rate"
)

// Refinement holds the listing options the API offers on top of Criteria.
// The zero value keeps every record in input order.
type Refinement struct {
	State             string `json:"state"`
	ResponseGuarantee bool   `json:"responseGuarantee"`
	SortBy            string `json:"sortBy"`
}

// RefinementFromQuery reads state, responseGuarantee and sortBy. Unknown
// sort keys fall back to id.
func RefinementFromQuery(q url.Values) Refinement {
	r := Refinement{
		State:             strings.ToUpper(strings.TrimSpace(q.Get("state"))),
		ResponseGuarantee: q.Get("responseGuarantee") == "true",
	}
	if q.Has("sortBy") {
		r.SortBy = SortKey(q.Get("sortBy"))
	}
	return r
}

// SortKey maps API and UI spellings onto a sort key. Unknown keys are id.
func SortKey(s string) string {
	switch strings.TrimSpace(s) {
	case SortExperience, "experienceYears":
		return SortExperience
	case SortRate, "hourlyRate":
		return SortRate
	case SortSuccessRate, "successRate":
		return SortSuccessRate
	default:
		return SortID
	}
}

// Refine narrows by state and response guarantee, then sorts when SortBy
// is set. Ties keep input order.
func Refine(records []domain.Lawyer, r Refinement) []domain.Lawyer {
	out := make([]domain.Lawyer, 0, len(records))
	for _, l := range records {
		if r.State != "" && !strings.EqualFold(l.State, r.State) {
			continue
		}
		if r.ResponseGuarantee && !l.ResponseGuarantee {
			continue
		}
		out = append(out, l)
	}
	if r.SortBy == "" {
		return out
	}

	key := sortValue(r.SortBy)
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	return out
}

func sortValue(k string) func(domain.Lawyer) float64 {
	switch k {
	case SortExperience:
		return func(l domain.Lawyer) float64 { return float64(l.ExperienceYears) }
	case SortRate:
		return func(l domain.Lawyer) float64 { return l.HourlyRate }
	case SortSuccessRate:
		return func(l domain.Lawyer) float64 { return float64(l.SuccessRate) }
	default:
		return func(l domain.Lawyer) float64 { return float64(l.ID) }
	}
}
