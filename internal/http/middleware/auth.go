package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim.
const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// Claims is the bearer token payload. Subject holds the user id; for vendors
// it is also the vendor id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errTokenSubject = errors.New("token has no subject")

// ParseToken verifies an HS256 token signed with secret and returns its
// claims. Expiry is mandatory.
func ParseToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errTokenSubject
	}
	return claims, nil
}

// IssueToken signs a token for subject with the given role. Tokens are
// normally minted by the identity service; this is used for local tooling.
func IssueToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// RequireRole authenticates the bearer token and admits callers whose role is
// one of roles. Missing or invalid tokens get 401, other roles 403. On success
// the user id and role are stored for UserID and Role.
func RequireRole(secret []byte, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := ParseToken(token, secret)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			c.Header("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		c.Set(userIDKey, claims.Subject)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	return ctxString(c, userIDKey)
}

// Role returns the authenticated role, or "".
func Role(c *gin.Context) string {
	return ctxString(c, roleKey)
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func ctxString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
