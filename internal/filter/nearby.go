package filter

import (
	"math"
	"sort"

	"legalconnect-engine/internal/domain"
)

// Nearby is the zero-result fallback: up to limit records whose location is
// not exactly the searched string, in input order. It is a placeholder
// heuristic, not a distance computation; see Nearest for real proximity.
func Nearby(records []domain.Lawyer, searched string, limit int) []domain.Lawyer {
	if searched == "" || limit <= 0 {
		return []domain.Lawyer{}
	}
	out := make([]domain.Lawyer, 0, limit)
	for _, l := range records {
		if len(out) == limit {
			break
		}
		if l.Location == searched {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Fallback returns Nearby suggestions only when the filtered result is empty
// and a location constraint is set.
func Fallback(records []domain.Lawyer, res Result, c Criteria, limit int) []domain.Lawyer {
	if res.ResultCount > 0 || c.Location == "" {
		return []domain.Lawyer{}
	}
	return Nearby(records, c.Location, limit)
}

const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance between a and b.
func DistanceKm(a, b domain.Coordinates) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

type Ranked struct {
	Lawyer     domain.Lawyer `json:"lawyer"`
	DistanceKm float64       `json:"distanceKm"`
}

// Nearest ranks records with coordinates by distance from p and returns at
// most k of them. Equal distances keep input order.
func Nearest(records []domain.Lawyer, p domain.Coordinates, k int) []Ranked {
	if k <= 0 {
		return []Ranked{}
	}
	ranked := make([]Ranked, 0, len(records))
	for _, l := range records {
		if l.Coordinates == nil {
			continue
		}
		ranked = append(ranked, Ranked{Lawyer: l, DistanceKm: DistanceKm(p, *l.Coordinates)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Bounds is a visible map rectangle.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b Bounds) Contains(c domain.Coordinates) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// InBounds keeps records inside b. Records without coordinates are kept; the
// map cannot place them so it never hides them.
func InBounds(records []domain.Lawyer, b Bounds) []domain.Lawyer {
	out := make([]domain.Lawyer, 0, len(records))
	for _, l := range records {
		if l.Coordinates == nil || b.Contains(*l.Coordinates) {
			out = append(out, l)
		}
	}
	return out
}
