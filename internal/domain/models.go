// Package domain defines the persistence models for vendor availability,
// vendor menus, payments and idempotency records. These types are mapped with
// GORM and form the core data layer of the vendor discovery backend.
package domain

import (
	"time"
)

// VendorAvailability is the single live record a vendor publishes on check-in:
// current location, a read-optimized copy of the menu, and the open/closed
// state with its expiry instant.
//
// Fields:
//   - VendorID: identifier issued by the identity service; primary key, so a
//     vendor holds at most one availability record.
//   - Latitude / Longitude: WGS84 degrees, range-checked by DB constraints.
//   - Address: optional display-only text.
//   - MenuSnapshot: denormalized menu stored as JSON.
//   - IsOpen: whether the vendor is currently discoverable.
//   - LastCheckinAt: instant of the last check-in (nil before the first one).
//   - AutoCloseAt: instant after which an open vendor is stale (nil when closed).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type VendorAvailability struct {
	VendorID      string       `json:"vendor_id"                 gorm:"type:varchar(64);primaryKey"`
	Latitude      float64      `json:"latitude"                  gorm:"not null;check:chk_vendor_lat,latitude >= -90 AND latitude <= 90"`
	Longitude     float64      `json:"longitude"                 gorm:"not null;check:chk_vendor_lon,longitude >= -180 AND longitude <= 180"`
	Address       *string      `json:"address,omitempty"         gorm:"type:varchar(255)"`
	MenuSnapshot  MenuSnapshot `json:"menu_snapshot"             gorm:"type:text;not null;serializer:json"`
	IsOpen        bool         `json:"is_open"                   gorm:"not null;index:idx_open_expiry,priority:1"`
	LastCheckinAt *time.Time   `json:"last_checkin_at,omitempty"`
	AutoCloseAt   *time.Time   `json:"auto_close_at,omitempty"   gorm:"index:idx_open_expiry,priority:2"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName returns the database table name for VendorAvailability.
func (VendorAvailability) TableName() string { return "vendor_availability" }

// VisibleAt reports whether the record is discoverable at now: open and not
// yet past its expiry instant.
func (v *VendorAvailability) VisibleAt(now time.Time) bool {
	return v.IsOpen && v.AutoCloseAt != nil && now.Before(*v.AutoCloseAt)
}

// StaleAt reports whether the record is still flagged open although its
// expiry instant has been reached.
func (v *VendorAvailability) StaleAt(now time.Time) bool {
	if !v.IsOpen {
		return false
	}
	return v.AutoCloseAt == nil || !now.Before(*v.AutoCloseAt)
}

// RemainingAt returns the visibility time left at now, or zero when the
// vendor is not visible.
func (v *VendorAvailability) RemainingAt(now time.Time) time.Duration {
	if !v.VisibleAt(now) {
		return 0
	}
	return v.AutoCloseAt.Sub(now)
}

// VendorProfile carries the display fields of a vendor. Rows are owned by the
// identity service; this backend only reads them to decorate search results.
type VendorProfile struct {
	ID          string    `json:"id"                  gorm:"type:varchar(64);primaryKey"`
	DisplayName string    `json:"display_name"        gorm:"type:varchar(255);not null"`
	ImageURL    *string   `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	Phone       *string   `json:"phone,omitempty"     gorm:"type:varchar(15)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for VendorProfile.
func (VendorProfile) TableName() string { return "vendor_profiles" }
