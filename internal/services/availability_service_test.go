package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/repo"
)

// ----- helpers -----

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	db = db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

var t0 = time.Date(2025, 4, 1, 7, 0, 0, 0, time.UTC)

func newAvailability(t *testing.T, db *gorm.DB, clk *fakeClock) *AvailabilityService {
	t.Helper()
	s := NewAvailabilityService(db, 3*time.Hour)
	s.Now = clk.Now
	return s
}

func checkIn(t *testing.T, s *AvailabilityService, id string, lat, lon float64, menu ...domain.MenuEntry) {
	t.Helper()
	if menu == nil {
		menu = domain.MenuSnapshot{}
	}
	if _, err := s.CheckIn(context.Background(), CheckInInput{
		VendorID: id, Latitude: lat, Longitude: lon, Menu: menu,
	}); err != nil {
		t.Fatalf("CheckIn(%s): %v", id, err)
	}
}

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ----- tests -----

func TestCheckIn_OpensForThreeHours(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	before := testutil.ToFloat64(checkinsTotal)

	res, err := s.CheckIn(context.Background(), CheckInInput{
		VendorID: "v1", Latitude: -1.2921, Longitude: 36.8219,
		Menu: domain.MenuSnapshot{{Name: "Samosa", Price: 50, Available: true}},
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.ExpirySeconds != 10800 || !res.ExpiresAt.Equal(t0.Add(3*time.Hour)) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := testutil.ToFloat64(checkinsTotal); got != before+1 {
		t.Fatalf("checkins metric = %v; want %v", got, before+1)
	}

	st, err := s.GetStatus(context.Background(), "v1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !st.IsOpen || st.RemainingSeconds != 10800 || len(st.MenuSnapshot) != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.LastCheckinAt == nil || !st.LastCheckinAt.Equal(t0) {
		t.Fatalf("last_checkin_at = %v; want %v", st.LastCheckinAt, t0)
	}
}

func TestGetStatus_LazyExpiryAtBoundary(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	checkIn(t, s, "v1", 0, 0)

	clk.Set(t0.Add(2*time.Hour + 59*time.Minute))
	st, err := s.GetStatus(context.Background(), "v1")
	if err != nil || !st.IsOpen || st.RemainingSeconds != 60 {
		t.Fatalf("expected open with 60s left, got %+v err=%v", st, err)
	}

	before := testutil.ToFloat64(lazyExpiriesTotal)
	clk.Set(t0.Add(3*time.Hour + time.Second))
	st, err = s.GetStatus(context.Background(), "v1")
	if err != nil || st.IsOpen || st.RemainingSeconds != 0 || st.AutoCloseAt != nil {
		t.Fatalf("expected closed after expiry, got %+v err=%v", st, err)
	}
	if got := testutil.ToFloat64(lazyExpiriesTotal); got != before+1 {
		t.Fatalf("lazy expiry metric = %v; want %v", got, before+1)
	}

	rec, _ := repo.GetAvailability(context.Background(), db, "v1")
	if rec.IsOpen || rec.AutoCloseAt != nil {
		t.Fatalf("lazy expiry was not persisted: %+v", rec)
	}
}

func TestGetStatus_UnknownVendor(t *testing.T) {
	s := newAvailability(t, newServiceDB(t), newClock(t0))
	if _, err := s.GetStatus(context.Background(), "ghost"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestCheckIn_RepeatOverwritesLocationAndRefreshesExpiry(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	checkIn(t, s, "v1", 0, 0)

	clk.Set(t0.Add(time.Hour))
	checkIn(t, s, "v1", 1, 1, domain.MenuEntry{Name: "Chai", Price: 30, Available: true})

	st, err := s.GetStatus(context.Background(), "v1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.Latitude != 1 || st.Longitude != 1 || len(st.MenuSnapshot) != 1 || st.MenuSnapshot[0].Name != "Chai" {
		t.Fatalf("check-in did not overwrite: %+v", st)
	}
	if !st.AutoCloseAt.Equal(t0.Add(4 * time.Hour)) {
		t.Fatalf("auto_close_at = %v; want %v", st.AutoCloseAt, t0.Add(4*time.Hour))
	}
	var n int64
	db.Model(&domain.VendorAvailability{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected one record per vendor, got %d", n)
	}
}

func TestCheckIn_ReopensClosedVendor(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	checkIn(t, s, "v1", 0, 0)
	if err := s.Close(context.Background(), "v1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	clk.Set(t0.Add(10 * time.Minute))
	checkIn(t, s, "v1", 0, 0)
	st, _ := s.GetStatus(context.Background(), "v1")
	if !st.IsOpen {
		t.Fatalf("expected check-in to reopen the vendor")
	}
}

func TestCheckIn_WithoutMenuUsesMasterMenu(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	for i, name := range []string{"Pilau", "Kachumbari"} {
		if err := repo.CreateMenuItem(ctx, db, &domain.MenuItem{
			VendorID: "v1", Name: name, Price: float64(100 + i), Available: true, Position: i,
		}); err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}
	s := newAvailability(t, db, newClock(t0))
	if _, err := s.CheckIn(ctx, CheckInInput{VendorID: "v1", Latitude: 0, Longitude: 0}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	st, _ := s.GetStatus(ctx, "v1")
	if len(st.MenuSnapshot) != 2 || st.MenuSnapshot[0].Name != "Pilau" || st.MenuSnapshot[1].Name != "Kachumbari" {
		t.Fatalf("expected master menu snapshot, got %+v", st.MenuSnapshot)
	}
}

func TestCheckIn_Validation(t *testing.T) {
	s := newAvailability(t, newServiceDB(t), newClock(t0))
	ctx := context.Background()
	cases := []CheckInInput{
		{VendorID: "  ", Latitude: 0, Longitude: 0},
		{VendorID: "v1", Latitude: 91, Longitude: 0},
		{VendorID: "v1", Latitude: 0, Longitude: -181},
		{VendorID: "v1", Menu: domain.MenuSnapshot{{Name: "", Price: 1}}},
		{VendorID: "v1", Menu: domain.MenuSnapshot{{Name: "x", Price: -1}}},
	}
	for i, in := range cases {
		if _, err := s.CheckIn(ctx, in); !isValidation(err) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestKeepAlive_ExtendsOpenVendor(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	checkIn(t, s, "v1", 0, 0)

	clk.Set(t0.Add(2 * time.Hour))
	res, err := s.KeepAlive(context.Background(), "v1")
	if err != nil || !res.Extended || !res.ExpiresAt.Equal(t0.Add(5*time.Hour)) {
		t.Fatalf("expected extension to +5h, got %+v err=%v", res, err)
	}

	clk.Set(t0.Add(4*time.Hour + 59*time.Minute))
	if st, _ := s.GetStatus(context.Background(), "v1"); !st.IsOpen {
		t.Fatalf("extended vendor should still be visible")
	}
}

func TestKeepAlive_DoesNotResurrectExpiredVendor(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	checkIn(t, s, "v1", 0, 0)

	clk.Set(t0.Add(3*time.Hour + time.Second))
	res, err := s.KeepAlive(context.Background(), "v1")
	if err != nil || res.Extended {
		t.Fatalf("expected silent no-op, got %+v err=%v", res, err)
	}
	rec, _ := repo.GetAvailability(context.Background(), db, "v1")
	if rec.IsOpen {
		t.Fatalf("expired vendor must be closed, not resurrected")
	}
}

func TestKeepAlive_ClosedAndUnknownVendor(t *testing.T) {
	db := newServiceDB(t)
	s := newAvailability(t, db, newClock(t0))
	checkIn(t, s, "v1", 0, 0)
	if err := s.Close(context.Background(), "v1"); err != nil {
		t.Fatalf("Close: %v", err)
	}

	res, err := s.KeepAlive(context.Background(), "v1")
	if err != nil || res.Extended || res.ExpiresAt != nil {
		t.Fatalf("keep-alive on closed vendor must be a no-op, got %+v err=%v", res, err)
	}
	if _, err := s.KeepAlive(context.Background(), "ghost"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestClose(t *testing.T) {
	db := newServiceDB(t)
	clk := newClock(t0)
	s := newAvailability(t, db, clk)
	checkIn(t, s, "v1", 0, 0)

	clk.Set(t0.Add(time.Hour))
	if err := s.Close(context.Background(), "v1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	st, _ := s.GetStatus(context.Background(), "v1")
	if st.IsOpen || st.AutoCloseAt != nil {
		t.Fatalf("expected closed, got %+v", st)
	}
	if err := s.Close(context.Background(), "v1"); err != nil {
		t.Fatalf("closing a closed vendor must succeed: %v", err)
	}
	if err := s.Close(context.Background(), "ghost"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

// A keep-alive racing the sweep must end in one of two consistent states:
// extended and open, or not extended and closed.
func TestKeepAlive_RacesSweepConsistently(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		clk := newClock(t0)
		s := newAvailability(t, db, clk)
		checkIn(t, s, "race", 0, 0)

		clk.Set(t0.Add(3*time.Hour - time.Second))
		sw := NewSweeper(db, time.Minute)
		sw.PurgeIdempotency = false
		sw.Now = func() time.Time { return t0.Add(3*time.Hour + time.Second) }

		var (
			wg         sync.WaitGroup
			res        *KeepAliveResult
			kErr, sErr error
		)
		wg.Add(2)
		go func() { defer wg.Done(); res, kErr = s.KeepAlive(ctx, "race") }()
		go func() { defer wg.Done(); _, sErr = sw.SweepOnce(ctx) }()
		wg.Wait()
		if kErr != nil {
			t.Fatalf("iteration %d: keepalive err=%v", i, kErr)
		}
		// SQLite may reject the sweep's write when the keep-alive committed
		// first; that cycle is simply retried later.
		var pe *PersistenceError
		if sErr != nil && !errors.As(sErr, &pe) {
			t.Fatalf("iteration %d: unexpected sweep error %v", i, sErr)
		}

		rec, err := repo.GetAvailability(ctx, db, "race")
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if res.Extended != rec.IsOpen {
			t.Fatalf("iteration %d: extended=%v but is_open=%v", i, res.Extended, rec.IsOpen)
		}
		if rec.IsOpen && !rec.AutoCloseAt.Equal(t0.Add(6*time.Hour-time.Second)) {
			t.Fatalf("iteration %d: unexpected expiry %v", i, rec.AutoCloseAt)
		}
	}
}
