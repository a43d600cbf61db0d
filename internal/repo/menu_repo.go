// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the MenuItem
// model (a vendor's master menu).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
)

// CreateMenuItem inserts item, assigning a UUID when ID is empty.
func CreateMenuItem(ctx context.Context, db *gorm.DB, item *domain.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(item).Error
}

// ListMenuItems returns the vendor's master menu ordered by position, then name.
func ListMenuItems(ctx context.Context, db *gorm.DB, vendorID string) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	err := db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("position ASC, name ASC").
		Find(&out).Error
	return out, err
}

// GetMenuItem fetches one item owned by vendorID, or ErrNotFound.
func GetMenuItem(ctx context.Context, db *gorm.DB, vendorID, id string) (*domain.MenuItem, error) {
	var it domain.MenuItem
	if err := db.WithContext(ctx).Where("id = ? AND vendor_id = ?", id, vendorID).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateMenuItem overwrites the mutable fields of item, enforcing vendor
// ownership. Returns ErrNotFound when no row matched.
func UpdateMenuItem(ctx context.Context, db *gorm.DB, item *domain.MenuItem, now time.Time) error {
	item.UpdatedAt = now
	res := db.WithContext(ctx).
		Model(&domain.MenuItem{}).
		Where("id = ? AND vendor_id = ?", item.ID, item.VendorID).
		Select("name", "price", "description", "image", "available", "position", "updated_at").
		Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMenuItem removes an item owned by vendorID. Returns ErrNotFound when
// no row matched.
func DeleteMenuItem(ctx context.Context, db *gorm.DB, vendorID, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND vendor_id = ?", id, vendorID).
		Delete(&domain.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextMenuPosition returns the position after the vendor's last item, or 0
// for an empty menu.
func NextMenuPosition(ctx context.Context, db *gorm.DB, vendorID string) (int, error) {
	var next int
	err := db.WithContext(ctx).
		Model(&domain.MenuItem{}).
		Where("vendor_id = ?", vendorID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error
	return next, err
}
