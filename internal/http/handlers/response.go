// Package handlers provides the HTTP handlers of the vendor discovery API.
//
// Handlers are transport-thin: they parse and validate input, call the
// application services and translate results and service errors into the
// response shapes defined here. Every failure uses ErrorResponse with a stable
// code from errors.go.
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "message": "invalid coordinates: lat and lon are required"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/http/middleware"
	"github.com/tbourn/go-vendor-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"vendor_not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"vendor has not checked in"`
}

// fail aborts the request with a structured error. Server errors are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail for the router's fallback handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr maps a service error onto its HTTP status and code. Internal
// details of storage and gateway failures are logged, not returned.
func failErr(c *gin.Context, err error) {
	var (
		ve *services.ValidationError
		pe *services.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeValidation, ve.Error())
	case errors.Is(err, domain.ErrInvalidMenu):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrVendorNotFound):
		fail(c, http.StatusNotFound, ErrCodeVendorNotFound, "vendor has not checked in")
	case errors.Is(err, services.ErrMenuItemNotFound):
		fail(c, http.StatusNotFound, ErrCodeMenuItemNotFound, "menu item not found")
	case errors.Is(err, services.ErrTransactionNotFound):
		fail(c, http.StatusNotFound, ErrCodeTransactionNotFound, "transaction not found")
	case errors.Is(err, services.ErrPaymentsDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodePaymentsDisabled, "payments are not enabled")
	case errors.Is(err, services.ErrPaymentGateway):
		middleware.LoggerFrom(c).Warn().Err(err).Msg("payment gateway call failed")
		fail(c, http.StatusBadGateway, ErrCodePaymentGateway, "payment provider unavailable, try again")
	case errors.As(err, &pe):
		middleware.LoggerFrom(c).Error().Err(err).Str("op", pe.Op).Msg("persistence failure")
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "temporary storage failure, retry the request")
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// bindFailed reports a malformed JSON body, or 413 when the body limit was hit.
func bindFailed(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
