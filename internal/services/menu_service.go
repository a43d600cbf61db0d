// Package services – MenuService
//
// This file manages a vendor's master menu. Every mutation runs in one
// transaction together with OnMenuItemChanged, which rebuilds the menu
// snapshot stored on the vendor's availability record, so searches see menu
// edits without waiting for the next check-in.
package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/repo"
)

const maxMenuNameRunes = 120

// MenuService implements master menu CRUD.
type MenuService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewMenuService returns a MenuService with a UTC wall clock.
func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{DB: db, Now: utcNow}
}

// MenuItemInput creates an item. Available defaults to true and Position to
// the end of the menu.
type MenuItemInput struct {
	Name        string
	Price       float64
	Description *string
	Image       *string
	Available   *bool
	Position    *int
}

// MenuItemPatch updates an item; nil fields are left unchanged.
type MenuItemPatch struct {
	Name        *string
	Price       *float64
	Description *string
	Image       *string
	Available   *bool
	Position    *int
}

// ListItems returns the vendor's master menu in display order.
func (s *MenuService) ListItems(ctx context.Context, vendorID string) ([]domain.MenuItem, error) {
	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	items, err := repo.ListMenuItems(ctx, s.DB, vendorID)
	if err != nil {
		return nil, persistence("list menu", err)
	}
	return items, nil
}

// AddItem appends an item to the vendor's master menu.
func (s *MenuService) AddItem(ctx context.Context, vendorID string, in MenuItemInput) (*domain.MenuItem, error) {
	ctx, span := otel.Tracer("services/MenuService").Start(ctx, "AddItem",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	name, err := validMenuName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validPrice(in.Price); err != nil {
		return nil, err
	}

	now := s.now()
	item := &domain.MenuItem{
		VendorID:    vendorID,
		Name:        name,
		Price:       in.Price,
		Description: trimmedOrNil(in.Description),
		Image:       trimmedOrNil(in.Image),
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Position != nil {
			item.Position = *in.Position
		} else {
			pos, err := repo.NextMenuPosition(ctx, tx, vendorID)
			if err != nil {
				return err
			}
			item.Position = pos
		}
		if err := repo.CreateMenuItem(ctx, tx, item); err != nil {
			return err
		}
		return s.OnMenuItemChanged(ctx, tx, vendorID)
	})
	if err != nil {
		return nil, persistence("add menu item", err)
	}
	return item, nil
}

// UpdateItem applies patch to one of the vendor's items.
func (s *MenuService) UpdateItem(ctx context.Context, vendorID, itemID string, patch MenuItemPatch) (*domain.MenuItem, error) {
	ctx, span := otel.Tracer("services/MenuService").Start(ctx, "UpdateItem",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.String("menu_item.id", itemID),
		),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name, err := validMenuName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Price != nil {
		if err := validPrice(*patch.Price); err != nil {
			return nil, err
		}
	}

	var item *domain.MenuItem
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetMenuItem(ctx, tx, vendorID, itemID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			cur.Name = *patch.Name
		}
		if patch.Price != nil {
			cur.Price = *patch.Price
		}
		if patch.Description != nil {
			cur.Description = trimmedOrNil(patch.Description)
		}
		if patch.Image != nil {
			cur.Image = trimmedOrNil(patch.Image)
		}
		if patch.Available != nil {
			cur.Available = *patch.Available
		}
		if patch.Position != nil {
			cur.Position = *patch.Position
		}
		if err := repo.UpdateMenuItem(ctx, tx, cur, s.now()); err != nil {
			return err
		}
		item = cur
		return s.OnMenuItemChanged(ctx, tx, vendorID)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, persistence("update menu item", err)
	}
	return item, nil
}

// DeleteItem removes one of the vendor's items.
func (s *MenuService) DeleteItem(ctx context.Context, vendorID, itemID string) error {
	ctx, span := otel.Tracer("services/MenuService").Start(ctx, "DeleteItem",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.String("menu_item.id", itemID),
		),
	)
	defer span.End()

	vendorID, err := normalizeVendorID(vendorID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteMenuItem(ctx, tx, vendorID, itemID); err != nil {
			return err
		}
		return s.OnMenuItemChanged(ctx, tx, vendorID)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return persistence("delete menu item", err)
	}
	return nil
}

// OnMenuItemChanged rebuilds the vendor's snapshot from the master menu and
// stores it on the availability record, if the vendor has one. Call it with
// the transaction that changed the menu.
func (s *MenuService) OnMenuItemChanged(ctx context.Context, tx *gorm.DB, vendorID string) error {
	items, err := repo.ListMenuItems(ctx, tx, vendorID)
	if err != nil {
		return err
	}
	_, err = repo.UpdateMenuSnapshot(ctx, tx, vendorID, domain.SnapshotFromItems(items), s.now())
	return err
}

func (s *MenuService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}

func validMenuName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", invalid("name", "must not be empty")
	case len([]rune(name)) > maxMenuNameRunes:
		return "", invalid("name", "too long")
	}
	return name, nil
}

func validPrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return invalid("price", "must be a non-negative number")
	}
	return nil
}
