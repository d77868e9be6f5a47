package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"legalconnect-engine/internal/domain"
)

func TestNearby_ExcludesExactLocationAndHonorsLimit(t *testing.T) {
	got := Nearby(roster(), "Parramatta", 2)
	assert.Equal(t, []int64{2, 3}, ids(got))

	assert.Empty(t, Nearby(roster(), "Parramatta", 0))
	assert.Empty(t, Nearby(roster(), "", 5))
	assert.Len(t, Nearby(roster(), "Nowhere", 10), 4)
}

func TestFallback_OnlyWhenEmptyWithLocation(t *testing.T) {
	all := roster()

	c := Criteria{Location: "Penrith"}
	res := Run(all, c)
	assert.Equal(t, 0, res.ResultCount)
	assert.Len(t, Fallback(all, res, c, 6), 4)

	c = Criteria{Location: "Liverpool"}
	assert.Empty(t, Fallback(all, Run(all, c), c, 6))

	c = Criteria{PracticeArea: "tax"}
	assert.Empty(t, Fallback(all, Run(all, c), c, 6))
}

func TestDistanceKm(t *testing.T) {
	parramatta := domain.Coordinates{Lat: -33.8150, Lng: 151.0011}
	sydneyCBD := domain.Coordinates{Lat: -33.8688, Lng: 151.2093}

	d := DistanceKm(parramatta, sydneyCBD)
	assert.InDelta(t, 20.0, d, 1.5)
	assert.Zero(t, DistanceKm(parramatta, parramatta))
}

func TestNearest_OrdersByDistanceAndSkipsUnplaced(t *testing.T) {
	records := []domain.Lawyer{
		{ID: 1, Coordinates: &domain.Coordinates{Lat: -33.87, Lng: 151.21}},
		{ID: 2},
		{ID: 3, Coordinates: &domain.Coordinates{Lat: -33.82, Lng: 151.00}},
		{ID: 4, Coordinates: &domain.Coordinates{Lat: -33.77, Lng: 150.91}},
	}
	got := Nearest(records, domain.Coordinates{Lat: -33.815, Lng: 151.001}, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Lawyer.ID)
	assert.Equal(t, int64(4), got[1].Lawyer.ID)
	assert.LessOrEqual(t, got[0].DistanceKm, got[1].DistanceKm)

	assert.Empty(t, Nearest(records, domain.Coordinates{}, 0))
}

func TestInBounds_KeepsUnplacedRecords(t *testing.T) {
	records := []domain.Lawyer{
		{ID: 1, Coordinates: &domain.Coordinates{Lat: -33.81, Lng: 151.00}},
		{ID: 2},
		{ID: 3, Coordinates: &domain.Coordinates{Lat: -37.81, Lng: 144.96}},
	}
	b := Bounds{North: -33.7, South: -33.9, East: 151.3, West: 150.8}
	assert.Equal(t, []int64{1, 2}, ids(InBounds(records, b)))
}
