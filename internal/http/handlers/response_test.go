package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-vendor-backend/internal/domain"
	"github.com/tbourn/go-vendor-backend/internal/http/middleware"
	"github.com/tbourn/go-vendor-backend/internal/services"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/boom", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "rid-500")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal || resp.Message != "kaboom" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}
}

func Test_Fail_And_SuccessHelpers(t *testing.T) {
	r := gin.New()
	r.GET("/missing", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrCodeNotFound, "nope") })
	r.GET("/ok", func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"ok": true}) })
	r.DELETE("/gone", noContent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if er := decode[ErrorResponse](t, w); w.Code != http.StatusNotFound || er.Code != ErrCodeNotFound || er.RequestID != "" {
		t.Fatalf("404: %d %+v", w.Code, er)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("ok: %d %s", w.Code, w.Body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/gone", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: %d %q", w.Code, w.Body)
	}
}

func Test_failErr_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&services.ValidationError{Field: "radius", Reason: "too big"}, http.StatusBadRequest, ErrCodeValidation},
		{fmt.Errorf("%w: entry 0", domain.ErrInvalidMenu), http.StatusBadRequest, ErrCodeValidation},
		{services.ErrVendorNotFound, http.StatusNotFound, ErrCodeVendorNotFound},
		{services.ErrMenuItemNotFound, http.StatusNotFound, ErrCodeMenuItemNotFound},
		{services.ErrTransactionNotFound, http.StatusNotFound, ErrCodeTransactionNotFound},
		{services.ErrPaymentsDisabled, http.StatusServiceUnavailable, ErrCodePaymentsDisabled},
		{fmt.Errorf("%w: timeout", services.ErrPaymentGateway), http.StatusBadGateway, ErrCodePaymentGateway},
		{&services.PersistenceError{Op: "check-in", Err: errors.New("disk I/O error")}, http.StatusInternalServerError, ErrCodeStorage},
		{errors.New("surprise"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) { failErr(c, tc.err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		er := decode[ErrorResponse](t, w)
		if w.Code != tc.status || er.Code != tc.code {
			t.Fatalf("%v: got %d %q, want %d %q", tc.err, w.Code, er.Code, tc.status, tc.code)
		}
		if tc.status >= 500 && strings.Contains(er.Message, "disk") {
			t.Fatalf("storage detail leaked: %q", er.Message)
		}
	}
}

func Test_bindFailed_TooLarge(t *testing.T) {
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 8)
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			bindFailed(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"padding":"0123456789"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", w.Code)
	}
}
