package filter

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalconnect-engine/internal/domain"
)

func roster() []domain.Lawyer {
	return domain.NormalizeAll([]domain.Lawyer{
		{
			ID: 1, Name: "Sarah Mitchell", Firm: "Family Law Partners", PracticeArea: "family",
			Specialties: []string{"Divorce", "Child Custody"}, Location: "Parramatta", State: "NSW",
			ExperienceYears: 15, HourlyRate: 450, Verified: true, MediationCertified: true,
			Languages: []string{"English", "Mandarin"},
		},
		{
			ID: 2, Name: "James Wilson", Firm: "Conveyancing Experts", PracticeArea: "conveyancing",
			Specialties: []string{"Residential", "Off-the-Plan"}, Location: "North Parramatta", State: "NSW",
			ExperienceYears: 10, HourlyRate: 250, Verified: true,
			Languages: []string{"English"},
		},
		{
			ID: 3, Name: "Emma Thompson", Firm: "Immigration Solutions", PracticeArea: "immigration",
			Specialties: []string{"Partner Visas"}, Location: "Blacktown", State: "NSW",
			ExperienceYears: 4, HourlyRate: 300,
			Languages: []string{"English", "Hindi", "Punjabi"},
		},
		{
			ID: 4, Name: "Ahmed Khan", Firm: "Westside Family Law", PracticeArea: "family",
			Location: "Liverpool", State: "NSW", ExperienceYears: 8, HourlyRate: 380,
			MediationCertified: true, Languages: []string{"Arabic", "English"},
		},
	})
}

func ids(ls []domain.Lawyer) []int64 {
	out := make([]int64, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func rate(v float64) *float64 { return &v }

func TestApply_NeutralCriteriaReturnsAllInOrder(t *testing.T) {
	all := roster()
	got := Apply(all, Reset())
	assert.Equal(t, all, got)
	assert.False(t, Reset().Active())
}

func TestApply_Predicates(t *testing.T) {
	cases := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{"practice area exact", Criteria{PracticeArea: "family"}, []int64{1, 4}},
		{"practice area is not a substring match", Criteria{PracticeArea: "fam"}, []int64{}},
		{"location substring case-insensitive", Criteria{Location: "parramatta"}, []int64{1, 2}},
		{"min experience inclusive", Criteria{MinExperience: 10}, []int64{1, 2}},
		{"max rate inclusive", Criteria{MaxRate: rate(300)}, []int64{2, 3}},
		{"max rate zero", Criteria{MaxRate: rate(0)}, []int64{}},
		{"verified only", Criteria{VerifiedOnly: true}, []int64{1, 2}},
		{"mediation only", Criteria{MediationOnly: true}, []int64{1, 4}},
		{"language substring", Criteria{Language: "punj"}, []int64{3}},
		{"query on specialties", Criteria{Query: "custody"}, []int64{1}},
		{"query on firm", Criteria{Query: "westside"}, []int64{4}},
		{"query on location", Criteria{Query: "blacktown"}, []int64{3}},
		{"combined", Criteria{PracticeArea: "family", MediationOnly: true, MaxRate: rate(400)}, []int64{4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(roster(), tc.c)))
		})
	}
}

func TestApply_PracticeAreaResultsMatchExactly(t *testing.T) {
	for _, area := range []string{"family", "conveyancing", "immigration"} {
		for _, l := range Apply(roster(), Criteria{PracticeArea: area}) {
			assert.Equal(t, area, l.PracticeArea)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	c := Criteria{Location: "parra", VerifiedOnly: true}
	once := Apply(roster(), c)
	twice := Apply(once, c)
	assert.Equal(t, once, twice)
}

func TestApply_MissingFieldsAreNeutral(t *testing.T) {
	records := domain.NormalizeAll([]domain.Lawyer{{ID: 9, Name: "No Data"}})

	assert.Empty(t, Apply(records, Criteria{MinExperience: 1}))
	assert.Len(t, Apply(records, Criteria{MaxRate: rate(100)}), 1)
	assert.Empty(t, Apply(records, Criteria{Language: "english"}))
	assert.Len(t, Apply(records, Criteria{Query: "no data"}), 1)
}

func TestRun_Counts(t *testing.T) {
	res := Run(roster(), Criteria{PracticeArea: "family"})
	assert.Equal(t, 2, res.ResultCount)
	assert.Equal(t, 4, res.TotalCount)
}

func TestUpdate_DoesNotMutateReceiver(t *testing.T) {
	base := Reset()
	next, err := base.Update(FieldLocation, "Parramatta")
	require.NoError(t, err)
	assert.Equal(t, "", base.Location)
	assert.Equal(t, "Parramatta", next.Location)

	cleared, err := next.Update(FieldLocation, "")
	require.NoError(t, err)
	assert.False(t, cleared.Active())
}

func TestUpdate_RejectsBadNumbers(t *testing.T) {
	c := Criteria{Location: "x"}
	got, err := c.Update(FieldMinExperience, "-1")
	assert.Error(t, err)
	assert.Equal(t, c, got)

	for _, raw := range []string{"cheap", "NaN", "nan", "-Inf", "-5"} {
		got, err = c.Update(FieldMaxRate, raw)
		assert.Error(t, err, raw)
		assert.Equal(t, c, got, raw)
	}

	got, err = c.Update(FieldMaxRate, "+Inf")
	require.NoError(t, err)
	assert.Nil(t, got.MaxRate)

	_, err = c.Update(Field("bogus"), "1")
	assert.Error(t, err)
}

func TestUpdate_MaxRateUnbounded(t *testing.T) {
	c, err := Reset().Update(FieldMaxRate, "350")
	require.NoError(t, err)
	require.NotNil(t, c.MaxRate)
	assert.Equal(t, 350.0, *c.MaxRate)

	c, err = c.Update(FieldMaxRate, "Infinity")
	require.NoError(t, err)
	assert.Nil(t, c.MaxRate)
}

func TestNormalized(t *testing.T) {
	rate := 200.0
	c, err := Criteria{PracticeArea: " family ", Query: " chen", MaxRate: &rate}.Normalized()
	require.NoError(t, err)
	assert.Equal(t, "family", c.PracticeArea)
	assert.Equal(t, "chen", c.Query)
	assert.Equal(t, 200.0, *c.MaxRate)

	inf := math.Inf(1)
	c, err = Criteria{MaxRate: &inf}.Normalized()
	require.NoError(t, err)
	assert.Nil(t, c.MaxRate)

	neg, nan := -5.0, math.NaN()
	for _, bad := range []Criteria{{MinExperience: -3}, {MaxRate: &neg}, {MaxRate: &nan}} {
		_, err := bad.Normalized()
		assert.Error(t, err)
	}
}

func TestFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("practiceArea", "family")
	q.Set("minExperience", "5")
	q.Set("verified", "true")
	q.Set("searchQuery", "divorce")

	c, err := FromQuery(q)
	require.NoError(t, err)
	assert.Equal(t, "family", c.PracticeArea)
	assert.Equal(t, 5, c.MinExperience)
	assert.True(t, c.VerifiedOnly)
	assert.Equal(t, "divorce", c.Query)
	assert.Nil(t, c.MaxRate)

	q.Set("verified", "sometimes")
	_, err = FromQuery(q)
	assert.Error(t, err)
}

func TestFacets_SortedDistinctNoBlanks(t *testing.T) {
	records := append(roster(), domain.Normalize(domain.Lawyer{ID: 5, Location: "Blacktown", Languages: []string{"English", ""}}))
	f := FacetsOf(records)

	assert.Equal(t, []string{"conveyancing", "family", "immigration"}, f.PracticeAreas)
	assert.Equal(t, []string{"Blacktown", "Liverpool", "North Parramatta", "Parramatta"}, f.Locations)
	assert.Equal(t, []string{"Arabic", "English", "Hindi", "Mandarin", "Punjabi"}, f.Languages)
}

func TestFacets_Empty(t *testing.T) {
	f := FacetsOf(nil)
	assert.Empty(t, f.PracticeAreas)
	assert.Empty(t, f.Locations)
	assert.Empty(t, f.Languages)
}
