// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// VendorAvailability model: the check-in upsert and the conditional updates
// that drive the open/closed state machine.
//
// Every state transition is a single conditional UPDATE whose WHERE clause
// restates the precondition, so concurrent callers (keep-alive, lazy expiry,
// the sweeper) never overwrite each other's effect.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-vendor-backend/internal/domain"
)

// staleClause matches open records whose expiry instant has been reached.
const staleClause = "is_open = ? AND (auto_close_at IS NULL OR auto_close_at <= ?)"

// UpsertCheckIn inserts rec or, when the vendor already has a record,
// overwrites location, address, menu and the open state in place.
func UpsertCheckIn(ctx context.Context, db *gorm.DB, rec *domain.VendorAvailability) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "vendor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"latitude", "longitude", "address", "menu_snapshot",
				"is_open", "last_checkin_at", "auto_close_at", "updated_at",
			}),
		}).
		Create(rec).Error
}

// GetAvailability fetches a vendor's record or returns ErrNotFound.
func GetAvailability(ctx context.Context, db *gorm.DB, vendorID string) (*domain.VendorAvailability, error) {
	var v domain.VendorAvailability
	if err := db.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// ExpireIfStale closes vendorID when it is still flagged open past its
// expiry instant. It reports whether a row changed; calling it on a fresh or
// already-closed vendor is a no-op.
func ExpireIfStale(ctx context.Context, db *gorm.DB, vendorID string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.VendorAvailability{}).
		Where("vendor_id = ? AND "+staleClause, vendorID, true, now).
		Updates(map[string]any{"is_open": false, "auto_close_at": nil, "updated_at": now})
	return res.RowsAffected > 0, res.Error
}

// ExtendIfOpen moves the expiry instant of an open, unexpired vendor to until.
// It reports false when the vendor is closed, expired or missing.
func ExtendIfOpen(ctx context.Context, db *gorm.DB, vendorID string, now, until time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.VendorAvailability{}).
		Where("vendor_id = ? AND is_open = ? AND auto_close_at > ?", vendorID, true, now).
		Updates(map[string]any{"auto_close_at": until, "updated_at": now})
	return res.RowsAffected > 0, res.Error
}

// CloseVendor marks the vendor closed and clears its expiry instant. Closing
// an already-closed vendor succeeds; a missing vendor yields ErrNotFound.
func CloseVendor(ctx context.Context, db *gorm.DB, vendorID string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.VendorAvailability{}).
		Where("vendor_id = ?", vendorID).
		Updates(map[string]any{"is_open": false, "auto_close_at": nil, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOpen returns every record flagged open, ordered by vendor id. Callers
// still gate on the expiry instant.
func ListOpen(ctx context.Context, db *gorm.DB) ([]domain.VendorAvailability, error) {
	var out []domain.VendorAvailability
	err := db.WithContext(ctx).
		Where("is_open = ?", true).
		Order("vendor_id ASC").
		Find(&out).Error
	return out, err
}

// ListExpiredIDs returns up to limit vendor ids that are open past their
// expiry instant. A limit <= 0 means no limit.
func ListExpiredIDs(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]string, error) {
	var ids []string
	q := db.WithContext(ctx).
		Model(&domain.VendorAvailability{}).
		Where(staleClause, true, now).
		Order("vendor_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("vendor_id", &ids).Error
	return ids, err
}

// ExpireByIDs closes the given vendors, re-checking the stale predicate so a
// vendor extended after it was selected stays open. It returns the number of
// rows closed.
func ExpireByIDs(ctx context.Context, db *gorm.DB, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.VendorAvailability{}).
		Where("vendor_id IN ? AND "+staleClause, ids, true, now).
		Updates(map[string]any{"is_open": false, "auto_close_at": nil, "updated_at": now})
	return res.RowsAffected, res.Error
}

// UpdateMenuSnapshot replaces the stored snapshot of vendorID. It reports
// false when the vendor has no availability record yet.
func UpdateMenuSnapshot(ctx context.Context, db *gorm.DB, vendorID string, snap domain.MenuSnapshot, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.VendorAvailability{}).
		Where("vendor_id = ?", vendorID).
		Select("menu_snapshot", "updated_at").
		Updates(&domain.VendorAvailability{MenuSnapshot: snap.OrEmpty(), UpdatedAt: now})
	return res.RowsAffected > 0, res.Error
}
