// Vendor HTTP handlers.
//
// This file exposes the endpoints a signed-in vendor uses to publish
// availability and maintain its menu:
//   - POST   /vendor/checkin      (open at a location for the check-in TTL)
//   - GET    /vendor/status       (own status, lazy expiry applied)
//   - POST   /vendor/close        (go offline now)
//   - POST   /vendor/keepalive    (extend an open window)
//   - GET    /vendor/menu         (master menu, ETag support)
//   - POST   /vendor/menu         (add item)
//   - PUT    /vendor/menu/{id}    (update item)
//   - DELETE /vendor/menu/{id}    (delete item)
//
// The vendor id always comes from the bearer token, never from the body.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/http/middleware"
	"github.com/tbourn/go-vendor-backend/internal/repo"
	"github.com/tbourn/go-vendor-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AvailabilityService manages a vendor's open/closed window.
type AvailabilityService interface {
	CheckIn(ctx context.Context, in services.CheckInInput) (*services.CheckInResult, error)
	GetStatus(ctx context.Context, vendorID string) (*services.Status, error)
	Close(ctx context.Context, vendorID string) error
	KeepAlive(ctx context.Context, vendorID string) (*services.KeepAliveResult, error)
}

// MenuService manages a vendor's master menu.
type MenuService interface {
	ListItems(ctx context.Context, vendorID string) ([]domain.MenuItem, error)
	AddItem(ctx context.Context, vendorID string, in services.MenuItemInput) (*domain.MenuItem, error)
	UpdateItem(ctx context.Context, vendorID, itemID string, patch services.MenuItemPatch) (*domain.MenuItem, error)
	DeleteItem(ctx context.Context, vendorID, itemID string) error
}

// SearchService answers customer discovery queries.
type SearchService interface {
	Search(ctx context.Context, q services.SearchQuery) ([]services.VendorResult, error)
	Nearby(ctx context.Context, q services.SearchQuery) ([]services.VendorResult, error)
}

// PaymentService initiates and settles customer payments.
type PaymentService interface {
	Initiate(ctx context.Context, req services.PaymentRequest) (*domain.Transaction, bool, error)
	HandleCallback(ctx context.Context, cb services.PaymentCallback) (*domain.Transaction, error)
	Status(ctx context.Context, id string) (*domain.Transaction, error)
}

// AdminService backs the operator views.
type AdminService interface {
	ActiveVendors(ctx context.Context) ([]services.VendorResult, error)
	ListTransactions(ctx context.Context, page, pageSize int) ([]domain.Transaction, int64, error)
}

//
// Handler wiring
//

// Deps lists the services the handlers call. Any of them may be nil when the
// corresponding routes are not registered.
type Deps struct {
	Availability AvailabilityService
	Menu         MenuService
	Search       SearchService
	Payments     PaymentService
	Admin        AdminService
}

// Handlers groups the HTTP endpoints of the API.
type Handlers struct {
	avail  AvailabilityService
	menu   MenuService
	search SearchService
	pay    PaymentService
	admin  AdminService
}

// New constructs Handlers bound to the given services.
func New(d Deps) *Handlers {
	return &Handlers{
		avail:  d.Availability,
		menu:   d.Menu,
		search: d.Search,
		pay:    d.Payments,
		admin:  d.Admin,
	}
}

// vendorID returns the authenticated vendor or aborts with 401.
func vendorID(c *gin.Context) (string, bool) {
	id := middleware.UserID(c)
	if id == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "vendor identity required")
		return "", false
	}
	return id, true
}

//
// DTOs
//

// CheckInRequest is the JSON payload of a check-in.
type CheckInRequest struct {
	Latitude  *float64 `json:"latitude"  example:"-1.286389"`
	Longitude *float64 `json:"longitude" example:"36.817223"`
	Address   *string  `json:"address,omitempty" example:"Moi Avenue, opposite Hilton"`
	// MenuSnapshot accepts a list of entries, a list of names, or
	// {"items": [...], "prices": {...}}. When omitted the master menu is used.
	MenuSnapshot json.RawMessage `json:"menu_snapshot,omitempty" swaggertype:"array,object"`
}

// CheckInResponse confirms a check-in.
type CheckInResponse struct {
	OK            bool      `json:"ok" example:"true"`
	ExpirySeconds int64     `json:"expiry_seconds" example:"10800"`
	AutoCloseAt   time.Time `json:"auto_close_at"`
}

// StatusResponse is a vendor's availability as seen right now.
type StatusResponse struct {
	VendorID         string              `json:"vendor_id"`
	IsOpen           bool                `json:"is_open"`
	RemainingSeconds int64               `json:"remaining_seconds"`
	Latitude         float64             `json:"latitude"`
	Longitude        float64             `json:"longitude"`
	Address          *string             `json:"address,omitempty"`
	MenuSnapshot     domain.MenuSnapshot `json:"menu_snapshot"`
	LastCheckinAt    *time.Time          `json:"last_checkin_at,omitempty"`
	AutoCloseAt      *time.Time          `json:"auto_close_at,omitempty"`
}

// KeepAliveResponse reports whether the window was extended. A closed or
// expired vendor gets ok=true, extended=false.
type KeepAliveResponse struct {
	OK          bool       `json:"ok" example:"true"`
	Extended    bool       `json:"extended"`
	AutoCloseAt *time.Time `json:"auto_close_at,omitempty"`
}

// OKResponse is the body of operations with nothing else to report.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// MenuItemRequest is the payload for creating or updating a menu item. On
// update only the fields present are changed.
type MenuItemRequest struct {
	Name        *string  `json:"name,omitempty" example:"Samosa"`
	Price       *float64 `json:"price,omitempty" example:"50"`
	Description *string  `json:"description,omitempty" example:"Beef, fried fresh"`
	Image       *string  `json:"image,omitempty"`
	Available   *bool    `json:"available,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

// ListMenuResponse wraps the vendor's master menu.
type ListMenuResponse struct {
	Items []domain.MenuItem `json:"items"`
}

func statusResponse(s *services.Status) StatusResponse {
	return StatusResponse{
		VendorID:         s.VendorID,
		IsOpen:           s.IsOpen,
		RemainingSeconds: s.RemainingSeconds,
		Latitude:         s.Latitude,
		Longitude:        s.Longitude,
		Address:          s.Address,
		MenuSnapshot:     s.MenuSnapshot.OrEmpty(),
		LastCheckinAt:    s.LastCheckinAt,
		AutoCloseAt:      s.AutoCloseAt,
	}
}

//
// Handlers
//

// CheckIn godoc
// @ID          vendorCheckIn
// @Summary     Check in at a location
// @Description Opens the vendor at the given coordinates for the check-in window (3h by default), replacing location, address and menu. Repeating a check-in only refreshes the window.
// @Tags        Vendor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CheckInRequest  true  "Location and optional menu"
//
// @Success     200  {object}  handlers.CheckInResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a vendor"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure (retryable)"
// @Router      /vendor/checkin [post]
func (h *Handlers) CheckIn(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "latitude and longitude are required")
		return
	}

	in := services.CheckInInput{
		VendorID:  vid,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Address:   req.Address,
	}
	if raw := bytes.TrimSpace(req.MenuSnapshot); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		menu, err := domain.ParseMenuSnapshot(raw)
		if err != nil {
			failErr(c, err)
			return
		}
		in.Menu = menu
	}

	res, err := h.avail.CheckIn(c.Request.Context(), in)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, CheckInResponse{OK: true, ExpirySeconds: res.ExpirySeconds, AutoCloseAt: res.ExpiresAt})
}

// VendorStatus godoc
// @ID          vendorStatus
// @Summary     Own availability
// @Description Returns the caller's availability after applying expiry. A closed vendor is a normal response with is_open=false.
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.StatusResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Vendor never checked in"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /vendor/status [get]
func (h *Handlers) VendorStatus(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	st, err := h.avail.GetStatus(c.Request.Context(), vid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, statusResponse(st))
}

// CloseVendor godoc
// @ID          vendorClose
// @Summary     Close now
// @Description Takes the vendor offline immediately. Closing a closed vendor succeeds.
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.OKResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Vendor never checked in"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure (retryable)"
// @Router      /vendor/close [post]
func (h *Handlers) CloseVendor(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	if err := h.avail.Close(c.Request.Context(), vid); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, OKResponse{OK: true})
}

// KeepAlive godoc
// @ID          vendorKeepAlive
// @Summary     Extend the open window
// @Description Pushes the auto-close instant to now + window while the vendor is open. On a closed or expired vendor nothing changes and extended=false is returned.
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.KeepAliveResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Vendor never checked in"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure (retryable)"
// @Router      /vendor/keepalive [post]
func (h *Handlers) KeepAlive(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	res, err := h.avail.KeepAlive(c.Request.Context(), vid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, KeepAliveResponse{OK: true, Extended: res.Extended, AutoCloseAt: res.ExpiresAt})
}

// ListMenu godoc
// @ID          listMenu
// @Summary     Master menu
// @Description Returns the vendor's menu items in display order. Supports weak ETag via If-None-Match.
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ListMenuResponse
// @Header      200  {string}  ETag  "Weak ETag for current menu"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /vendor/menu [get]
func (h *Handlers) ListMenu(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if svc, isSvc := h.menu.(*services.MenuService); isSvc && svc.DB != nil {
		if count, maxTS, err := repo.MenuStats(ctx, svc.DB, vid); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"menu:%s:%d:%d"`, vid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.menu.ListItems(ctx, vid)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	ok(c, http.StatusOK, ListMenuResponse{Items: items})
}

// AddMenuItem godoc
// @ID          addMenuItem
// @Summary     Add a menu item
// @Description Adds an item to the master menu. The live menu snapshot is refreshed in the same transaction.
// @Tags        Vendor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.MenuItemRequest  true  "Item (name and price required)"
//
// @Success     201  {object}  domain.MenuItem
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /vendor/menu [post]
func (h *Handlers) AddMenuItem(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if req.Name == nil || req.Price == nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "name and price are required")
		return
	}
	item, err := h.menu.AddItem(c.Request.Context(), vid, services.MenuItemInput{
		Name:        *req.Name,
		Price:       *req.Price,
		Description: req.Description,
		Image:       req.Image,
		Available:   req.Available,
		Position:    req.Position,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// UpdateMenuItem godoc
// @ID          updateMenuItem
// @Summary     Update a menu item
// @Description Changes the fields present in the body. Marking an item unavailable hides it from item search immediately.
// @Tags        Vendor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                    true  "Menu item ID (UUID)"  format(uuid)
// @Param       body  body  handlers.MenuItemRequest  true  "Fields to change"
//
// @Success     200  {object}  domain.MenuItem
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Menu item not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /vendor/menu/{id} [put]
func (h *Handlers) UpdateMenuItem(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	itemID := c.Param("id")
	if _, err := uuid.Parse(itemID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "menu item id must be a UUID")
		return
	}
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.menu.UpdateItem(c.Request.Context(), vid, itemID, services.MenuItemPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Available:   req.Available,
		Position:    req.Position,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// DeleteMenuItem godoc
// @ID          deleteMenuItem
// @Summary     Delete a menu item
// @Tags        Vendor
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Menu item ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Menu item not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /vendor/menu/{id} [delete]
func (h *Handlers) DeleteMenuItem(c *gin.Context) {
	vid, okID := vendorID(c)
	if !okID {
		return
	}
	itemID := c.Param("id")
	if _, err := uuid.Parse(itemID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "menu item id must be a UUID")
		return
	}
	if err := h.menu.DeleteItem(c.Request.Context(), vid, itemID); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
