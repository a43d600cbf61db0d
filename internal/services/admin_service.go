// Package services – AdminService
//
// This file backs the operator views: the list of vendors currently visible
// to customers and the paginated payment ledger.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/repo"
	"github.com/tbourn/go-vendor-backend/internal/search"
)

// AdminService implements read-only operator queries.
type AdminService struct {
	DB        *gorm.DB
	Directory VendorDirectory
	Now       func() time.Time
}

// NewAdminService returns an AdminService with a UTC wall clock.
func NewAdminService(db *gorm.DB, dir VendorDirectory) *AdminService {
	return &AdminService{DB: db, Directory: dir, Now: utcNow}
}

// ActiveVendors returns every vendor visible right now, ordered by vendor id.
// Stale records met on the way are closed.
func (s *AdminService) ActiveVendors(ctx context.Context) ([]VendorResult, error) {
	ctx, span := otel.Tracer("services/AdminService").Start(ctx, "ActiveVendors")
	defer span.End()

	now := s.now()
	open, err := repo.ListOpen(ctx, s.DB)
	if err != nil {
		return nil, persistence("list open vendors", err)
	}
	for i := range open {
		if open[i].StaleAt(now) {
			if err := expireIfStale(ctx, s.DB, &open[i], now); err != nil {
				log.Warn().Err(err).Str("vendor_id", open[i].VendorID).Msg("lazy expiry failed during admin listing")
			}
		}
	}

	fresh := search.FilterFresh(open, now)
	hits := make([]search.Hit, len(fresh))
	for i := range fresh {
		hits[i] = search.Hit{Vendor: fresh[i]}
	}
	return decorate(ctx, s.Directory, hits, now), nil
}

// ListTransactions returns a page of transactions (newest first) and the
// total count. Invalid page values fall back to defaults.
func (s *AdminService) ListTransactions(ctx context.Context, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountTransactions(ctx, s.DB)
	if err != nil {
		return nil, 0, persistence("count transactions", err)
	}
	if total == 0 {
		return []domain.Transaction{}, 0, nil
	}
	items, err := repo.ListTransactionsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, persistence("list transactions", err)
	}
	return items, total, nil
}

func (s *AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}
