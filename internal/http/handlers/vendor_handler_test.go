package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/http/middleware"
)

func TestCheckIn_StatusLifecycle(t *testing.T) {
	f := newFixture(t)
	tok := f.token("v1", middleware.RoleVendor)

	w := f.do(http.MethodPost, "/vendor/checkin", tok, map[string]any{
		"latitude":      -1.2864,
		"longitude":     36.8172,
		"address":       "  Moi Avenue  ",
		"menu_snapshot": []string{"Samosa", "Chapati"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("check-in: %d %s", w.Code, w.Body)
	}
	res := decode[CheckInResponse](t, w)
	if !res.OK || res.ExpirySeconds != 10800 || !res.AutoCloseAt.Equal(t0.Add(3*time.Hour)) {
		t.Fatalf("unexpected check-in response %+v", res)
	}

	st := decode[StatusResponse](t, f.do(http.MethodGet, "/vendor/status", tok, nil))
	if !st.IsOpen || st.RemainingSeconds != 10800 || st.Address == nil || *st.Address != "Moi Avenue" {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.MenuSnapshot) != 2 || st.MenuSnapshot[0].Name != "Samosa" || !st.MenuSnapshot[0].Available {
		t.Fatalf("menu not stored: %+v", st.MenuSnapshot)
	}

	f.clock.Advance(time.Hour)
	ka := decode[KeepAliveResponse](t, f.do(http.MethodPost, "/vendor/keepalive", tok, nil))
	if !ka.OK || !ka.Extended || ka.AutoCloseAt == nil || !ka.AutoCloseAt.Equal(t0.Add(4*time.Hour)) {
		t.Fatalf("keep-alive while open: %+v", ka)
	}

	f.clock.Advance(3 * time.Hour)
	st = decode[StatusResponse](t, f.do(http.MethodGet, "/vendor/status", tok, nil))
	if st.IsOpen || st.RemainingSeconds != 0 || st.AutoCloseAt != nil {
		t.Fatalf("expected lazily expired status, got %+v", st)
	}
	ka = decode[KeepAliveResponse](t, f.do(http.MethodPost, "/vendor/keepalive", tok, nil))
	if !ka.OK || ka.Extended {
		t.Fatalf("keep-alive on closed vendor must be a silent no-op, got %+v", ka)
	}
}

func TestCheckIn_Close(t *testing.T) {
	f := newFixture(t)
	tok := f.token("v1", middleware.RoleVendor)

	expectError(t, f.do(http.MethodPost, "/vendor/close", tok, nil), http.StatusNotFound, ErrCodeVendorNotFound)
	expectError(t, f.do(http.MethodGet, "/vendor/status", tok, nil), http.StatusNotFound, ErrCodeVendorNotFound)
	expectError(t, f.do(http.MethodPost, "/vendor/keepalive", tok, nil), http.StatusNotFound, ErrCodeVendorNotFound)

	f.checkIn("v1", 0, 0, nil)
	w := f.do(http.MethodPost, "/vendor/close", tok, nil)
	if w.Code != http.StatusOK || !decode[OKResponse](t, w).OK {
		t.Fatalf("close: %d %s", w.Code, w.Body)
	}
	st := decode[StatusResponse](t, f.do(http.MethodGet, "/vendor/status", tok, nil))
	if st.IsOpen {
		t.Fatalf("closed vendor reported open")
	}
	if w := f.do(http.MethodPost, "/vendor/close", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("closing twice should succeed, got %d", w.Code)
	}
}

func TestCheckIn_Rejects(t *testing.T) {
	f := newFixture(t)
	tok := f.token("v1", middleware.RoleVendor)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed json", `{"latitude":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"missing coordinates", map[string]any{"latitude": 1.0}, http.StatusBadRequest, ErrCodeValidation},
		{"latitude out of range", map[string]any{"latitude": 91.0, "longitude": 0.0}, http.StatusBadRequest, ErrCodeValidation},
		{"longitude out of range", map[string]any{"latitude": 0.0, "longitude": -180.5}, http.StatusBadRequest, ErrCodeValidation},
		{"menu not a list", map[string]any{"latitude": 0.0, "longitude": 0.0, "menu_snapshot": 5}, http.StatusBadRequest, ErrCodeValidation},
		{"negative price", map[string]any{"latitude": 0.0, "longitude": 0.0, "menu_snapshot": []map[string]any{{"name": "Tea", "price": -1}}}, http.StatusBadRequest, ErrCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, f.do(http.MethodPost, "/vendor/checkin", tok, tc.body), tc.status, tc.code)
		})
	}

	expectError(t, f.do(http.MethodPost, "/vendor/checkin", "", map[string]any{"latitude": 0.0, "longitude": 0.0}),
		http.StatusUnauthorized, ErrCodeUnauthorized)
	expectError(t, f.do(http.MethodPost, "/vendor/checkin", f.token("root", middleware.RoleAdmin), map[string]any{"latitude": 0.0, "longitude": 0.0}),
		http.StatusForbidden, ErrCodeForbidden)
}

func TestCheckIn_UsesMasterMenuWhenOmitted(t *testing.T) {
	f := newFixture(t)
	tok := f.token("v1", middleware.RoleVendor)

	if w := f.do(http.MethodPost, "/vendor/menu", tok, map[string]any{"name": "Mandazi", "price": 20}); w.Code != http.StatusCreated {
		t.Fatalf("add item: %d %s", w.Code, w.Body)
	}
	f.checkIn("v1", 0, 0, nil)

	st := decode[StatusResponse](t, f.do(http.MethodGet, "/vendor/status", tok, nil))
	if len(st.MenuSnapshot) != 1 || st.MenuSnapshot[0].Name != "Mandazi" || st.MenuSnapshot[0].Price != 20 {
		t.Fatalf("snapshot = %+v", st.MenuSnapshot)
	}
}

func TestMenuCRUD(t *testing.T) {
	f := newFixture(t)
	tok := f.token("v1", middleware.RoleVendor)
	f.checkIn("v1", 0, 0, []string{})

	expectError(t, f.do(http.MethodPost, "/vendor/menu", tok, map[string]any{"name": "Tea"}), http.StatusBadRequest, ErrCodeValidation)
	expectError(t, f.do(http.MethodPost, "/vendor/menu", tok, map[string]any{"name": " ", "price": 10}), http.StatusBadRequest, ErrCodeValidation)

	w := f.do(http.MethodPost, "/vendor/menu", tok, map[string]any{"name": "Samosa", "price": 50, "description": "beef"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", w.Code, w.Body)
	}
	item := decode[domain.MenuItem](t, w)
	if item.ID == "" || item.VendorID != "v1" || !item.Available {
		t.Fatalf("unexpected item %+v", item)
	}

	w = f.do(http.MethodGet, "/vendor/menu", tok, nil)
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("list: %d etag=%q", w.Code, etag)
	}
	if list := decode[ListMenuResponse](t, w); len(list.Items) != 1 {
		t.Fatalf("items = %d", len(list.Items))
	}
	if w := f.do(http.MethodGet, "/vendor/menu", tok, nil, "If-None-Match", etag); w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	f.clock.Advance(time.Minute)
	w = f.do(http.MethodPut, "/vendor/menu/"+item.ID, tok, map[string]any{"available": false, "price": 55})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body)
	}
	if got := decode[domain.MenuItem](t, w); got.Available || got.Price != 55 || got.Name != "Samosa" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if w := f.do(http.MethodGet, "/vendor/menu", tok, nil, "If-None-Match", etag); w.Code != http.StatusOK {
		t.Fatalf("stale ETag must not match, got %d", w.Code)
	}
	st := decode[StatusResponse](t, f.do(http.MethodGet, "/vendor/status", tok, nil))
	if len(st.MenuSnapshot) != 1 || st.MenuSnapshot[0].Available {
		t.Fatalf("snapshot not refreshed: %+v", st.MenuSnapshot)
	}

	expectError(t, f.do(http.MethodPut, "/vendor/menu/not-a-uuid", tok, map[string]any{"price": 1}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, f.do(http.MethodPut, "/vendor/menu/00000000-0000-0000-0000-000000000000", tok, map[string]any{"price": 1}),
		http.StatusNotFound, ErrCodeMenuItemNotFound)

	other := f.token("v2", middleware.RoleVendor)
	expectError(t, f.do(http.MethodDelete, "/vendor/menu/"+item.ID, other, nil), http.StatusNotFound, ErrCodeMenuItemNotFound)

	if w := f.do(http.MethodDelete, "/vendor/menu/"+item.ID, tok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body)
	}
	st = decode[StatusResponse](t, f.do(http.MethodGet, "/vendor/status", tok, nil))
	if len(st.MenuSnapshot) != 0 {
		t.Fatalf("snapshot should be empty after delete: %+v", st.MenuSnapshot)
	}
}
