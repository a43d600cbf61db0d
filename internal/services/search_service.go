// Package services – SearchService
//
// This file implements customer-facing discovery: item search and the
// "nearby" map view. Both load the open availability records, close the
// stale ones on the way (lazy expiry), and hand the rest to the pure
// search pipeline. Display names come from a VendorDirectory.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/geo"
	"github.com/tbourn/go-vendor-backend/internal/repo"
	"github.com/tbourn/go-vendor-backend/internal/search"
)

// DefaultMaxRadiusKm caps the radius a caller may request.
const DefaultMaxRadiusKm = 50.0

// VendorDirectory resolves vendor display profiles by id.
type VendorDirectory interface {
	Profiles(ctx context.Context, ids []string) (map[string]domain.VendorProfile, error)
}

// gormDirectory reads profiles from the vendor_profiles table.
type gormDirectory struct{ db *gorm.DB }

// NewVendorDirectory returns a VendorDirectory backed by db.
func NewVendorDirectory(db *gorm.DB) VendorDirectory { return gormDirectory{db: db} }

func (d gormDirectory) Profiles(ctx context.Context, ids []string) (map[string]domain.VendorProfile, error) {
	return repo.GetVendorProfiles(ctx, d.db, ids)
}

// SearchQuery carries the raw customer inputs. Nil coordinates are rejected;
// a nil radius means the default.
type SearchQuery struct {
	Item     string
	Lat      *float64
	Lon      *float64
	RadiusKm *float64
}

// VendorResult is one discovered vendor.
type VendorResult struct {
	VendorID         string
	Name             string
	Image            *string
	DistanceKm       float64
	Address          *string
	Latitude         float64
	Longitude        float64
	MenuSnapshot     domain.MenuSnapshot
	RemainingSeconds int64
}

// SearchService runs discovery queries.
type SearchService struct {
	DB        *gorm.DB
	Directory VendorDirectory

	DefaultRadiusKm float64
	MaxRadiusKm     float64

	Now func() time.Time
}

// NewSearchService returns a SearchService with the default radius limits.
func NewSearchService(db *gorm.DB, dir VendorDirectory) *SearchService {
	return &SearchService{
		DB:              db,
		Directory:       dir,
		DefaultRadiusKm: search.DefaultRadiusKm,
		MaxRadiusKm:     DefaultMaxRadiusKm,
		Now:             utcNow,
	}
}

// Search returns open vendors within the radius whose available menu entries
// mention q.Item, nearest first. An empty result is not an error.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) ([]VendorResult, error) {
	ctx, span := otel.Tracer("services/SearchService").Start(ctx, "Search",
		trace.WithAttributes(attribute.String("search.item", q.Item)),
	)
	defer span.End()

	if search.NormalizeTerm(q.Item) == "" {
		return nil, invalid("item", "must not be empty")
	}
	out, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(out)))
	searchResults.WithLabelValues("item").Observe(float64(len(out)))
	return out, nil
}

// Nearby returns every open vendor within the radius, nearest first.
func (s *SearchService) Nearby(ctx context.Context, q SearchQuery) ([]VendorResult, error) {
	ctx, span := otel.Tracer("services/SearchService").Start(ctx, "Nearby")
	defer span.End()

	q.Item = ""
	out, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(out)))
	searchResults.WithLabelValues("nearby").Observe(float64(len(out)))
	return out, nil
}

func (s *SearchService) run(ctx context.Context, q SearchQuery) ([]VendorResult, error) {
	if q.Lat == nil || q.Lon == nil {
		return nil, invalid("coordinates", "lat and lon are required")
	}
	if !geo.ValidCoordinate(*q.Lat, *q.Lon) {
		return nil, invalid("coordinates", "latitude must be in [-90, 90] and longitude in [-180, 180]")
	}
	radius, err := s.radius(q.RadiusKm)
	if err != nil {
		return nil, err
	}

	now := s.now()
	open, err := repo.ListOpen(ctx, s.DB)
	if err != nil {
		return nil, persistence("list open vendors", err)
	}
	for i := range open {
		if !open[i].StaleAt(now) {
			continue
		}
		// The pipeline filters stale rows regardless; a failed close is retried
		// by the next read or sweep.
		if err := expireIfStale(ctx, s.DB, &open[i], now); err != nil {
			log.Warn().Err(err).Str("vendor_id", open[i].VendorID).Msg("lazy expiry failed during search")
		}
	}

	hits := search.Run(open, search.Query{
		Term:     q.Item,
		Lat:      *q.Lat,
		Lon:      *q.Lon,
		RadiusKm: radius,
		Now:      now,
	})
	return decorate(ctx, s.Directory, hits, now), nil
}

func (s *SearchService) radius(r *float64) (float64, error) {
	if r == nil {
		if s.DefaultRadiusKm > 0 {
			return s.DefaultRadiusKm, nil
		}
		return search.DefaultRadiusKm, nil
	}
	limit := s.MaxRadiusKm
	if limit <= 0 {
		limit = DefaultMaxRadiusKm
	}
	if !(*r > 0) || *r > limit {
		return 0, invalid("radius", fmt.Sprintf("must be greater than 0 and at most %g km", limit))
	}
	return *r, nil
}

// decorate converts hits into results, attaching display names and images
// from dir. A failed lookup degrades to vendor ids as names.
func decorate(ctx context.Context, dir VendorDirectory, hits []search.Hit, now time.Time) []VendorResult {
	profiles := map[string]domain.VendorProfile{}
	if dir != nil && len(hits) > 0 {
		ids := make([]string, len(hits))
		for i, h := range hits {
			ids[i] = h.Vendor.VendorID
		}
		p, err := dir.Profiles(ctx, ids)
		if err != nil {
			log.Warn().Err(err).Msg("vendor profile lookup failed")
		} else {
			profiles = p
		}
	}

	out := make([]VendorResult, 0, len(hits))
	for _, h := range hits {
		v := h.Vendor
		r := VendorResult{
			VendorID:         v.VendorID,
			Name:             v.VendorID,
			DistanceKm:       h.DistanceKm,
			Address:          v.Address,
			Latitude:         v.Latitude,
			Longitude:        v.Longitude,
			MenuSnapshot:     v.MenuSnapshot.OrEmpty(),
			RemainingSeconds: int64(v.RemainingAt(now) / time.Second),
		}
		if p, ok := profiles[v.VendorID]; ok {
			if name := strings.TrimSpace(p.DisplayName); name != "" {
				r.Name = name
			}
			r.Image = p.ImageURL
		}
		out = append(out, r)
	}
	return out
}

func (s *SearchService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}
