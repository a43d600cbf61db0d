package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-vendor-backend/internal/domain"
)

func TestMenuItems_CRUD(t *testing.T) {
	db := newRepoDB(t, &domain.MenuItem{})
	ctx := context.Background()

	pos, err := NextMenuPosition(ctx, db, "v1")
	if err != nil || pos != 0 {
		t.Fatalf("NextMenuPosition on empty menu = %d, %v; want 0", pos, err)
	}

	a := &domain.MenuItem{VendorID: "v1", Name: "Samosa", Price: 50, Available: true, Position: 0}
	if err := CreateMenuItem(ctx, db, a); err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	b := &domain.MenuItem{VendorID: "v1", Name: "Chai", Price: 30, Available: true, Position: 1}
	if err := CreateMenuItem(ctx, db, b); err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	other := &domain.MenuItem{VendorID: "v2", Name: "Pilau", Price: 200, Available: true}
	if err := CreateMenuItem(ctx, db, other); err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}

	if pos, _ := NextMenuPosition(ctx, db, "v1"); pos != 2 {
		t.Fatalf("NextMenuPosition = %d; want 2", pos)
	}

	items, err := ListMenuItems(ctx, db, "v1")
	if err != nil || len(items) != 2 || items[0].Name != "Samosa" || items[1].Name != "Chai" {
		t.Fatalf("ListMenuItems = %+v, err=%v", items, err)
	}

	b.Available = false
	b.Price = 35
	if err := UpdateMenuItem(ctx, db, b, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	got, err := GetMenuItem(ctx, db, "v1", b.ID)
	if err != nil || got.Available || got.Price != 35 {
		t.Fatalf("update not persisted: %+v err=%v", got, err)
	}

	// ownership enforced
	stolen := *other
	stolen.VendorID = "v1"
	if err := UpdateMenuItem(ctx, db, &stolen, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating foreign item, got %v", err)
	}
	if err := DeleteMenuItem(ctx, db, "v1", other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting foreign item, got %v", err)
	}

	if err := DeleteMenuItem(ctx, db, "v1", a.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if _, err := GetMenuItem(ctx, db, "v1", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted item to be gone, got %v", err)
	}
}

func TestMenuItems_PriceConstraint(t *testing.T) {
	db := newRepoDB(t, &domain.MenuItem{})
	bad := &domain.MenuItem{VendorID: "v1", Name: "Broken", Price: -1, Available: true}
	if err := CreateMenuItem(context.Background(), db, bad); err == nil {
		t.Fatalf("expected check constraint violation for negative price")
	}
}
