package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/repo"
)

func vendorIDs(r VendorsResponse) []string {
	out := make([]string, len(r.Vendors))
	for i, v := range r.Vendors {
		out[i] = v.VendorID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearch_RadiusAndOrdering(t *testing.T) {
	f := newFixture(t)
	img := "https://img.example/a.png"
	if err := repo.SaveVendorProfile(context.Background(), f.db, &domain.VendorProfile{ID: "a", DisplayName: "Mama Mboga", ImageURL: &img}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	f.checkIn("b", 0, 0.04, []map[string]any{{"name": "Samosa", "price": 40}})
	f.checkIn("a", 0, 0, []map[string]any{{"name": "Beef samosa", "price": 50}})
	f.checkIn("c", 0, 0.01, []map[string]any{{"name": "Chai", "price": 20}})

	res := decode[VendorsResponse](t, f.do(http.MethodGet, "/customer/search?item=SAMOSA&lat=0&lon=0&radius_km=5", "", nil))
	if got := vendorIDs(res); !sameIDs(got, []string{"a", "b"}) || res.Count != 2 {
		t.Fatalf("radius 5: %v", got)
	}
	if res.Vendors[0].Name != "Mama Mboga" || res.Vendors[0].Image == nil || res.Vendors[0].DistanceKm != 0 {
		t.Fatalf("first result not decorated: %+v", res.Vendors[0])
	}
	if res.Vendors[1].Name != "b" || res.Vendors[1].DistanceKm < 4.4 || res.Vendors[1].DistanceKm > 4.5 {
		t.Fatalf("second result: %+v", res.Vendors[1])
	}
	if res.Vendors[0].RemainingSeconds != 10800 {
		t.Fatalf("remaining = %d", res.Vendors[0].RemainingSeconds)
	}

	res = decode[VendorsResponse](t, f.do(http.MethodGet, "/customer/search?item=samosa&lat=0&lon=0&radius_km=4", "", nil))
	if got := vendorIDs(res); !sameIDs(got, []string{"a"}) {
		t.Fatalf("radius 4: %v", got)
	}

	res = decode[VendorsResponse](t, f.do(http.MethodGet, "/customer/nearby?lat=0&lon=0", "", nil))
	if got := vendorIDs(res); !sameIDs(got, []string{"a", "c", "b"}) {
		t.Fatalf("nearby: %v", got)
	}
}

func TestSearch_FreshnessGate(t *testing.T) {
	f := newFixture(t)
	f.checkIn("a", 0, 0, []string{"Samosa"})
	f.clock.Advance(2 * time.Hour)
	f.checkIn("b", 0, 0.01, []string{"Samosa"})

	f.clock.Advance(time.Hour)
	res := decode[VendorsResponse](t, f.do(http.MethodGet, "/customer/search?item=samosa&lat=0&lon=0", "", nil))
	if got := vendorIDs(res); !sameIDs(got, []string{"b"}) {
		t.Fatalf("expired vendor returned: %v", got)
	}
	st := decode[StatusResponse](t, f.do(http.MethodGet, "/customer/vendor/a", "", nil))
	if st.IsOpen || st.LastCheckinAt != nil {
		t.Fatalf("public status: %+v", st)
	}
}

func TestSearch_EmptyIsNotAnError(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/customer/search?item=pilau&lat=0&lon=0", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if res := decode[VendorsResponse](t, w); res.Vendors == nil || res.Count != 0 {
		t.Fatalf("expected empty list, got %+v", res)
	}
}

func TestSearch_Validation(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{
		"/customer/search?lat=0&lon=0",
		"/customer/search?item=%20%20&lat=0&lon=0",
		"/customer/search?item=tea&lon=0",
		"/customer/search?item=tea&lat=abc&lon=0",
		"/customer/search?item=tea&lat=NaN&lon=0",
		"/customer/search?item=tea&lat=95&lon=0",
		"/customer/search?item=tea&lat=0&lon=0&radius_km=0",
		"/customer/search?item=tea&lat=0&lon=0&radius_km=51",
		"/customer/nearby?lat=0",
		"/customer/nearby?lat=0&lon=200",
		"/customer/nearby?lat=0&lon=0&radius_km=-2",
	} {
		expectError(t, f.do(http.MethodGet, path, "", nil), http.StatusBadRequest, ErrCodeValidation)
	}
	expectError(t, f.do(http.MethodGet, "/customer/vendor/ghost", "", nil), http.StatusNotFound, ErrCodeVendorNotFound)
}
