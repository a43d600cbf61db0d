// Package search implements vendor discovery over availability records.
// It is a pure, deterministic filter-and-rank pipeline: callers load the
// candidate records, this package decides which ones match and in what order.
//
// Stages run in a fixed order, each on the survivors of the previous one:
//
//  1. freshness  (open and before the expiry instant)
//  2. inventory  (item search only; substring over available entries)
//  3. proximity  (haversine distance within the radius, inclusive)
//  4. ranking    (distance ascending, vendor id ascending on ties)
//
// Freshness runs first because it is the cheapest and shrinks the set before
// any geometry or string matching.
package search

import (
	"sort"
	"time"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/geo"
)

// DefaultRadiusKm is the search radius used when a query does not set one.
const DefaultRadiusKm = 5.0

// Query describes one search. An empty Term skips the inventory stage, which
// is how the map ("nearby") variant is expressed.
type Query struct {
	Term     string
	Lat      float64
	Lon      float64
	RadiusKm float64
	Now      time.Time
}

// Hit is a matched vendor with its distance from the query point.
type Hit struct {
	Vendor     domain.VendorAvailability
	DistanceKm float64
}

// Run applies all stages to candidates and returns ranked hits. The input
// slice is not modified.
func Run(candidates []domain.VendorAvailability, q Query) []Hit {
	radius := q.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	fresh := FilterFresh(candidates, q.Now)
	if term := NormalizeTerm(q.Term); term != "" {
		fresh = FilterInventory(fresh, term)
	}
	hits := FilterRadius(fresh, q.Lat, q.Lon, radius)
	Rank(hits)
	return hits
}

// FilterFresh keeps records that are open with an expiry instant after now.
func FilterFresh(in []domain.VendorAvailability, now time.Time) []domain.VendorAvailability {
	out := make([]domain.VendorAvailability, 0, len(in))
	for i := range in {
		if in[i].VisibleAt(now) {
			out = append(out, in[i])
		}
	}
	return out
}

// FilterInventory keeps records whose menu matches the normalized term.
func FilterInventory(in []domain.VendorAvailability, term string) []domain.VendorAvailability {
	out := make([]domain.VendorAvailability, 0, len(in))
	for i := range in {
		if MenuMatches(in[i].MenuSnapshot, term) {
			out = append(out, in[i])
		}
	}
	return out
}

// FilterRadius computes the distance to every record and keeps those within
// radiusKm of (lat, lon). The boundary is inclusive.
func FilterRadius(in []domain.VendorAvailability, lat, lon, radiusKm float64) []Hit {
	out := make([]Hit, 0, len(in))
	for i := range in {
		d := geo.Distance(lat, lon, in[i].Latitude, in[i].Longitude)
		if d <= radiusKm {
			out = append(out, Hit{Vendor: in[i], DistanceKm: d})
		}
	}
	return out
}

// Rank sorts hits nearest first; equal distances are ordered by vendor id.
func Rank(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].DistanceKm != hits[j].DistanceKm {
			return hits[i].DistanceKm < hits[j].DistanceKm
		}
		return hits[i].Vendor.VendorID < hits[j].Vendor.VendorID
	})
}
