package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() { gin.SetMode(gin.TestMode) }

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// lastEntry decodes the final JSON log line.
func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("bad log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	gen := w.Header().Get("X-Request-ID")
	if len(gen) != 36 || w.Body.String() != gen {
		t.Fatalf("expected generated uuid echoed, header=%q body=%q", gen, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("x-request-id", "client-rid")
	if w := serve(r, req); w.Header().Get("X-Request-ID") != "client-rid" {
		t.Fatalf("inbound id not propagated: %q", w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 500))
	if w := serve(r, req); len(w.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("oversized id should be replaced")
	}
}

func TestRecovery(t *testing.T) {
	buf := captureLogs(t)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("after write")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	w := serve(r, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-1" {
		t.Fatalf("unexpected body %v", body)
	}
	if e := lastEntry(t, buf); e["panic"] != "kaboom" || e["request_id"] != "rid-1" {
		t.Fatalf("panic not logged: %v", e)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/late", nil))
	if w.Body.String() != "partial" {
		t.Fatalf("written body must be kept, got %q", w.Body.String())
	}
}

func TestLoggerFrom(t *testing.T) {
	buf := captureLogs(t)
	r := gin.New()
	r.GET("/bare", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("bare")
		c.Status(http.StatusNoContent)
	})
	r.GET("/scoped", RequestID(), RedactingLogger(RedactOptions{}), func(c *gin.Context) {
		LoggerFrom(c).Info().Str("vendor_id", "v1").Msg("scoped")
		c.Status(http.StatusNoContent)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/bare", nil))
	if e := lastEntry(t, buf); e["message"] != "bare" || e["request_id"] != nil {
		t.Fatalf("fallback logger unexpected: %v", e)
	}

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set("X-Request-ID", "rid-scoped")
	serve(r, req)
	first := strings.Split(strings.TrimSpace(buf.String()), "\n")[0]
	var e map[string]any
	_ = json.Unmarshal([]byte(first), &e)
	if e["message"] != "scoped" || e["request_id"] != "rid-scoped" || e["path"] != "/scoped" {
		t.Fatalf("scoped logger fields missing: %v", e)
	}
}

func TestTruncate(t *testing.T) {
	if truncate("abc", 0) != "abc" || truncate("abc", 5) != "abc" || truncate("abcdef", 3) != "abc…" {
		t.Fatalf("truncate unexpected")
	}
}
