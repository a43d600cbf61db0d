// Package services – AvailabilityService
//
// This file implements the vendor availability state machine:
//
//	CLOSED --check-in--> OPEN --close / expiry--> CLOSED
//
// A check-in opens the vendor for CheckInTTL. Keep-alive pushes the expiry
// instant forward while the vendor is still open; it never resurrects a vendor
// that already expired. Expiry is enforced lazily on every read (status and
// search) and by the periodic Sweeper, both through the same conditional
// update, so they can race safely.
//
// Observability: public methods are OpenTelemetry-instrumented with the
// vendor id as a span attribute.
package services

import (
	"context"
	"errors"
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
)

// DefaultCheckInTTL is how long a check-in keeps a vendor visible.
const DefaultCheckInTTL = 3 * time.Hour

const maxVendorIDLen = 64

// AvailabilityService owns check-in, keep-alive, close and status reads.
type AvailabilityService struct {
	DB *gorm.DB
	// TTL is the visibility window granted by a check-in or keep-alive.
	TTL time.Duration
	// Now is the service clock; tests replace it.
	Now func() time.Time
}

// NewAvailabilityService returns a service with the given TTL (DefaultCheckInTTL
// when ttl <= 0) and a UTC wall clock.
func NewAvailabilityService(db *gorm.DB, ttl time.Duration) *AvailabilityService {
	if ttl <= 0 {
		ttl = DefaultCheckInTTL
	}
	return &AvailabilityService{DB: db, TTL: ttl, Now: utcNow}
}

// CheckInInput is the payload of a vendor check-in. A nil Menu means "use the
// vendor's master menu".
type CheckInInput struct {
	VendorID  string
	Latitude  float64
	Longitude float64
	Address   *string
	Menu      domain.MenuSnapshot
}

// CheckInResult reports the new expiry of a successful check-in.
type CheckInResult struct {
	ExpiresAt     time.Time
	ExpirySeconds int64
}

// Status is the vendor-facing view of an availability record.
type Status struct {
	VendorID         string
	IsOpen           bool
	RemainingSeconds int64
	Latitude         float64
	Longitude        float64
	Address          *string
	MenuSnapshot     domain.MenuSnapshot
	LastCheckinAt    *time.Time
	AutoCloseAt      *time.Time
}

// KeepAliveResult reports whether a keep-alive moved the expiry instant.
type KeepAliveResult struct {
	Extended  bool
	ExpiresAt *time.Time
}

// CheckIn opens the vendor at the given location for TTL, overwriting any
// previous location, address and menu. Repeating it only refreshes the expiry.
func (s *AvailabilityService) CheckIn(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	ctx, span := otel.Tracer("services/AvailabilityService").Start(ctx, "CheckIn",
		trace.WithAttributes(attribute.String("vendor.id", in.VendorID)),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(in.VendorID)
	if err != nil {
		return nil, err
	}
	if !geo.ValidCoordinate(in.Latitude, in.Longitude) {
		return nil, invalid("coordinates", "latitude must be in [-90, 90] and longitude in [-180, 180]")
	}
	if err := validateSnapshot(in.Menu); err != nil {
		return nil, err
	}

	now := s.now()
	closeAt := now.Add(s.TTL)
	rec := &domain.VendorAvailability{
		VendorID:      vendorID,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Address:       trimmedOrNil(in.Address),
		IsOpen:        true,
		LastCheckinAt: &now,
		AutoCloseAt:   &closeAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Menu != nil {
			rec.MenuSnapshot = in.Menu
		} else {
			items, err := repo.ListMenuItems(ctx, tx, vendorID)
			if err != nil {
				return err
			}
			rec.MenuSnapshot = domain.SnapshotFromItems(items)
		}
		return repo.UpsertCheckIn(ctx, tx, rec)
	})
	if err != nil {
		return nil, persistence("check-in", err)
	}

	checkinsTotal.Inc()
	log.Debug().Str("vendor_id", vendorID).Time("auto_close_at", closeAt).Msg("vendor checked in")
	return &CheckInResult{ExpiresAt: closeAt, ExpirySeconds: int64(s.TTL / time.Second)}, nil
}

// GetStatus returns the vendor's record after applying lazy expiry. A closed
// vendor is a successful response; a vendor that never checked in yields
// ErrVendorNotFound.
func (s *AvailabilityService) GetStatus(ctx context.Context, vendorID string) (*Status, error) {
	ctx, span := otel.Tracer("services/AvailabilityService").Start(ctx, "GetStatus",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rec, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if err := expireIfStale(ctx, s.DB, rec, now); err != nil {
		return nil, err
	}

	return &Status{
		VendorID:         rec.VendorID,
		IsOpen:           rec.VisibleAt(now),
		RemainingSeconds: int64(rec.RemainingAt(now) / time.Second),
		Latitude:         rec.Latitude,
		Longitude:        rec.Longitude,
		Address:          rec.Address,
		MenuSnapshot:     rec.MenuSnapshot.OrEmpty(),
		LastCheckinAt:    rec.LastCheckinAt,
		AutoCloseAt:      rec.AutoCloseAt,
	}, nil
}

// Close takes the vendor offline immediately. Closing a closed vendor succeeds.
func (s *AvailabilityService) Close(ctx context.Context, vendorID string) error {
	ctx, span := otel.Tracer("services/AvailabilityService").Start(ctx, "Close",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return err
	}
	if err := repo.CloseVendor(ctx, s.DB, vendorID, s.now()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVendorNotFound
		}
		return persistence("close", err)
	}
	log.Debug().Str("vendor_id", vendorID).Msg("vendor closed")
	return nil
}

// KeepAlive extends an open, unexpired vendor by TTL from now. On a closed or
// expired vendor it changes nothing and reports Extended=false; an expired
// vendor still flagged open is closed on the way.
func (s *AvailabilityService) KeepAlive(ctx context.Context, vendorID string) (*KeepAliveResult, error) {
	ctx, span := otel.Tracer("services/AvailabilityService").Start(ctx, "KeepAlive",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	until := now.Add(s.TTL)

	extended, err := repo.ExtendIfOpen(ctx, s.DB, vendorID, now, until)
	if err != nil {
		return nil, persistence("keep-alive", err)
	}
	if extended {
		span.SetAttributes(attribute.Bool("extended", true))
		return &KeepAliveResult{Extended: true, ExpiresAt: &until}, nil
	}

	rec, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if err := expireIfStale(ctx, s.DB, rec, now); err != nil {
		return nil, err
	}
	return &KeepAliveResult{Extended: false, ExpiresAt: rec.AutoCloseAt}, nil
}

func (s *AvailabilityService) load(ctx context.Context, vendorID string) (*domain.VendorAvailability, error) {
	rec, err := repo.GetAvailability(ctx, s.DB, vendorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, persistence("load availability", err)
	}
	return rec, nil
}

func (s *AvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}

// expireIfStale applies lazy expiry to rec and mirrors the result in memory.
func expireIfStale(ctx context.Context, db *gorm.DB, rec *domain.VendorAvailability, now time.Time) error {
	if !rec.StaleAt(now) {
		return nil
	}
	changed, err := repo.ExpireIfStale(ctx, db, rec.VendorID, now)
	if err != nil {
		return persistence("expire", err)
	}
	if changed {
		lazyExpiriesTotal.Inc()
		log.Debug().Str("vendor_id", rec.VendorID).Msg("vendor expired on read")
		rec.IsOpen = false
		rec.AutoCloseAt = nil
		return nil
	}
	// Someone else closed or re-opened it in between; take their version.
	fresh, err := repo.GetAvailability(ctx, db, rec.VendorID)
	if err != nil {
		return persistence("reload availability", err)
	}
	*rec = *fresh
	return nil
}

func utcNow() time.Time { return time.Now().UTC() }

func normalizeVendorID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", invalid("vendor_id", "must not be empty")
	case len(id) > maxVendorIDLen:
		return "", invalid("vendor_id", "too long")
	}
	return id, nil
}

func validateSnapshot(menu domain.MenuSnapshot) error {
	for _, e := range menu {
		if strings.TrimSpace(e.Name) == "" {
			return invalid("menu", "every item needs a name")
		}
		if validPrice(e.Price) != nil {
			return invalid("menu", "prices must be non-negative numbers")
		}
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
