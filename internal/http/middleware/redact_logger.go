package middleware

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxQueryLogLength = 2048

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders lists extra headers logged as "[REDACTED]" in addition to
	// Authorization, Cookie and Set-Cookie.
	MaskHeaders []string
	// CoordinateDecimals is the precision kept for lat/lon query values.
	// Zero selects 2 decimals (about 1 km); negative drops them entirely.
	CoordinateDecimals int
}

var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Kenyan mobile numbers in local, international and +international form.
	msisdnRE = regexp.MustCompile(`(?:\+?254|\b0)[17]\d{8}\b`)
	bearerRE = regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-_.=]+`)
)

var coordinateParams = map[string]bool{"lat": true, "lon": true, "lng": true, "latitude": true, "longitude": true}

// RedactingLogger emits one structured access log per request and attaches a
// request-scoped logger (see LoggerFrom). Bodies are never logged. Query
// strings and header values are scrubbed of emails, phone numbers and bearer
// tokens; customer coordinates are coarsened so logs cannot track a person.
// 4xx log at warn, 5xx at error.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}
	decimals := opts.CoordinateDecimals
	if decimals == 0 {
		decimals = 2
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		query := truncate(redactQuery(c.Request.URL.RawQuery, decimals), maxQueryLogLength)

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = redactText(strings.Join(vv, ", "))
		}

		lg := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &lg)

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = lg.Error()
		case status >= 400:
			ev = lg.Warn()
		default:
			ev = lg.Info()
		}
		if uid := UserID(c); uid != "" {
			ev = ev.Str("user_id", uid)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.
			Str("query", query).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}

func redactText(s string) string {
	if s == "" {
		return s
	}
	s = bearerRE.ReplaceAllString(s, "[REDACTED:token]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return msisdnRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// redactQuery coarsens coordinate parameters and scrubs every other value.
// Output keys are sorted and values left unescaped for readability.
// Unparseable queries are scrubbed as plain text.
func redactQuery(raw string, decimals int) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return redactText(raw)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range vals[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			if coordinateParams[strings.ToLower(k)] {
				v = coarsen(v, decimals)
			} else {
				v = redactText(v)
			}
			b.WriteString(redactText(k))
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

func coarsen(v string, decimals int) string {
	if decimals < 0 {
		return "[REDACTED]"
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return redactText(v)
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}
