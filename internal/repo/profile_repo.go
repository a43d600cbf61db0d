package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
)

// GetVendorProfiles loads display profiles for ids, keyed by vendor id.
// Vendors without a profile are simply absent from the map.
func GetVendorProfiles(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.VendorProfile, error) {
	out := make(map[string]domain.VendorProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.VendorProfile
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// SaveVendorProfile inserts or replaces a profile row.
func SaveVendorProfile(ctx context.Context, db *gorm.DB, p *domain.VendorProfile) error {
	return db.WithContext(ctx).Save(p).Error
}
