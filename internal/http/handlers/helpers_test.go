package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-vendor-backend/internal/http/middleware"
	"github.com/tbourn/go-vendor-backend/internal/repo"
	"github.com/tbourn/go-vendor-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

var (
	testSecret = []byte("handlers-test-secret-0123")
	t0         = time.Date(2025, 4, 1, 7, 0, 0, 0, time.UTC)
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type stubGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *stubGateway) STKPush(_ context.Context, req services.STKPushRequest) (*services.STKPushResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.calls++
	return &services.STKPushResponse{
		CheckoutRequestID: fmt.Sprintf("ws_CO_%d", g.calls),
		MerchantRequestID: fmt.Sprintf("mr_%d", g.calls),
	}, nil
}

func (g *stubGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	clock *clock
	gw    *stubGateway
	pay   *services.PaymentService
	r     *gin.Engine
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"))
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

// newFixture wires real services over a temp SQLite database behind the same
// auth and idempotency middleware the router uses.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newDB(t)
	clk := &clock{t: t0}
	gw := &stubGateway{}
	dir := services.NewVendorDirectory(db)

	avail := services.NewAvailabilityService(db, 3*time.Hour)
	avail.Now = clk.Now
	menu := services.NewMenuService(db)
	menu.Now = clk.Now
	search := services.NewSearchService(db, dir)
	search.Now = clk.Now
	pay := services.NewPaymentService(db, gw, time.Hour)
	pay.Now = clk.Now
	admin := services.NewAdminService(db, dir)
	admin.Now = clk.Now

	h := New(Deps{Availability: avail, Menu: menu, Search: search, Payments: pay, Admin: admin})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{Now: clk.Now},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, scope, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		}))

	v := r.Group("/vendor", middleware.RequireRole(testSecret, middleware.RoleVendor))
	v.POST("/checkin", h.CheckIn)
	v.GET("/status", h.VendorStatus)
	v.POST("/close", h.CloseVendor)
	v.POST("/keepalive", h.KeepAlive)
	v.GET("/menu", h.ListMenu)
	v.POST("/menu", h.AddMenuItem)
	v.PUT("/menu/:id", h.UpdateMenuItem)
	v.DELETE("/menu/:id", h.DeleteMenuItem)

	cg := r.Group("/customer")
	cg.GET("/search", h.SearchVendors)
	cg.GET("/nearby", h.NearbyVendors)
	cg.GET("/vendor/:id", h.PublicVendorStatus)
	cg.POST("/pay", h.Pay)
	cg.GET("/payment-status/:id", h.PaymentStatus)
	r.POST("/mpesa/callback", h.MPesaCallback)

	ag := r.Group("/admin", middleware.RequireRole(testSecret, middleware.RoleAdmin))
	ag.GET("/vendors/active", h.ActiveVendors)
	ag.GET("/transactions", h.ListTransactions)

	return &fixture{t: t, db: db, clock: clk, gw: gw, pay: pay, r: r}
}

func (f *fixture) token(sub, role string) string {
	f.t.Helper()
	tok, err := middleware.IssueToken(testSecret, sub, role, time.Hour)
	if err != nil {
		f.t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

// do sends a request. token may be empty; body is JSON-encoded unless it is
// already a string.
func (f *fixture) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			f.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = "203.0.113.10:4444"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body=%s)", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code = %q, want %q (%s)", er.Code, code, er.Message)
	}
	if er.RequestID == "" {
		t.Fatalf("request_id missing from envelope")
	}
}

func (f *fixture) checkIn(vendor string, lat, lon float64, menu any) {
	f.t.Helper()
	body := map[string]any{"latitude": lat, "longitude": lon}
	if menu != nil {
		body["menu_snapshot"] = menu
	}
	w := f.do(http.MethodPost, "/vendor/checkin", f.token(vendor, middleware.RoleVendor), body)
	if w.Code != http.StatusOK {
		f.t.Fatalf("check-in %s: %d %s", vendor, w.Code, w.Body.String())
	}
}
