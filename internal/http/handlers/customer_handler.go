// Customer HTTP handlers.
//
// Public discovery endpoints:
//   - GET /customer/search          (open vendors near a point selling an item)
//   - GET /customer/nearby          (all open vendors near a point)
//   - GET /customer/vendor/{id}     (one vendor's live status)
//
// Both queries run the same freshness and proximity stages; results are
// nearest first with ties broken by vendor id.
package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/services"
	"github.com/tbourn/go-vendor-backend/internal/utils"
)

//
// DTOs
//

// VendorResult is one vendor in a search or nearby response.
type VendorResult struct {
	VendorID         string              `json:"vendor_id" example:"vendor-42"`
	Name             string              `json:"name" example:"Mama Mboga Wanjiru"`
	Image            *string             `json:"image,omitempty"`
	DistanceKm       float64             `json:"distance_km" example:"1.27"`
	Address          *string             `json:"address,omitempty"`
	Latitude         float64             `json:"latitude"`
	Longitude        float64             `json:"longitude"`
	MenuSnapshot     domain.MenuSnapshot `json:"menu_snapshot"`
	RemainingSeconds int64               `json:"remaining_seconds" example:"9540"`
}

// VendorsResponse wraps an ordered list of vendors.
type VendorsResponse struct {
	Vendors []VendorResult `json:"vendors"`
	Count   int            `json:"count"`
}

func vendorsResponse(rs []services.VendorResult) VendorsResponse {
	out := make([]VendorResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, VendorResult{
			VendorID:         r.VendorID,
			Name:             r.Name,
			Image:            r.Image,
			DistanceKm:       math.Round(r.DistanceKm*1000) / 1000,
			Address:          r.Address,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			MenuSnapshot:     r.MenuSnapshot.OrEmpty(),
			RemainingSeconds: r.RemainingSeconds,
		})
	}
	return VendorsResponse{Vendors: out, Count: len(out)}
}

// searchQuery parses lat, lon and radius_km. Missing values are left nil for
// the service to reject; malformed numbers abort with 400.
func searchQuery(c *gin.Context) (services.SearchQuery, bool) {
	var q services.SearchQuery
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"lat", &q.Lat},
		{"lon", &q.Lon},
		{"radius_km", &q.RadiusKm},
	} {
		v, err := utils.ParseOptionalFloat(c.Query(p.name))
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidation, p.name+" must be a number")
			return q, false
		}
		*p.dst = v
	}
	return q, true
}

//
// Handlers
//

// SearchVendors godoc
// @ID          searchVendors
// @Summary     Find open vendors selling an item
// @Description Returns open, unexpired vendors within radius_km (default 5, max 50) whose available menu entries mention item in the name or description (case-insensitive). Nearest first.
// @Tags        Customer
// @Produce     json
//
// @Param       item       query  string  true   "Item to look for"         example(samosa)
// @Param       lat        query  number  true   "Customer latitude"        example(-1.2864)
// @Param       lon        query  number  true   "Customer longitude"       example(36.8172)
// @Param       radius_km  query  number  false  "Search radius in km"      default(5)
//
// @Success     200  {object}  handlers.VendorsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /customer/search [get]
func (h *Handlers) SearchVendors(c *gin.Context) {
	q, okQ := searchQuery(c)
	if !okQ {
		return
	}
	q.Item = strings.TrimSpace(c.Query("item"))
	res, err := h.search.Search(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, vendorsResponse(res))
}

// NearbyVendors godoc
// @ID          nearbyVendors
// @Summary     Open vendors near a point
// @Description Returns every open, unexpired vendor within radius_km (default 5, max 50), nearest first. Used for map display.
// @Tags        Customer
// @Produce     json
//
// @Param       lat        query  number  true   "Customer latitude"    example(-1.2864)
// @Param       lon        query  number  true   "Customer longitude"   example(36.8172)
// @Param       radius_km  query  number  false  "Search radius in km"  default(5)
//
// @Success     200  {object}  handlers.VendorsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /customer/nearby [get]
func (h *Handlers) NearbyVendors(c *gin.Context) {
	q, okQ := searchQuery(c)
	if !okQ {
		return
	}
	res, err := h.search.Nearby(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, vendorsResponse(res))
}

// PublicVendorStatus godoc
// @ID          publicVendorStatus
// @Summary     A vendor's live status
// @Description Returns whether the vendor is open right now, with its location and menu. Expiry is applied before answering.
// @Tags        Customer
// @Produce     json
//
// @Param       id  path  string  true  "Vendor ID"
//
// @Success     200  {object}  handlers.StatusResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse  "Vendor never checked in"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /customer/vendor/{id} [get]
func (h *Handlers) PublicVendorStatus(c *gin.Context) {
	st, err := h.avail.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	resp := statusResponse(st)
	resp.LastCheckinAt = nil
	ok(c, http.StatusOK, resp)
}
