package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/access"
	"github.com/Safwa9amar/safwanPos-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"

	// SessionCookie carries the JWT issued at login.
	SessionCookie = "token"

	apiPrefix = "/api/"
)

// Gate runs the route/subscription gate on every request. The token is read from the
// session cookie, falling back to an Authorization: Bearer header for API clients.
// Browser paths are redirected; API paths get a JSON error carrying the redirect target.
func Gate(secret string, gate *access.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		var claims *access.Claims
		if raw := tokenFromRequest(c); raw != "" {
			parsed, err := access.ParseToken(secret, raw)
			if err == nil {
				claims = parsed
			}
		}

		decision := gate.Decide(path, claims, time.Now())
		if decision.Outcome == access.Allow {
			if claims != nil {
				c.Set(ClaimsKey, claims)
			}
			c.Next()
			return
		}

		log.Debug().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", path).
			Str("redirect", decision.Redirect).
			Msg("gate: request diverted")

		if strings.HasPrefix(path, apiPrefix) {
			status, msg := gateFailure(decision.Outcome)
			c.AbortWithStatusJSON(status, apierror.NewRedirect(msg, decision.Redirect))
			return
		}
		c.Redirect(http.StatusFound, decision.Redirect)
		c.Abort()
	}
}

func gateFailure(o access.Outcome) (int, string) {
	switch o {
	case access.NeedLogin:
		return http.StatusUnauthorized, "authentication required"
	case access.Forbidden:
		return http.StatusForbidden, "insufficient permissions"
	default:
		return http.StatusPaymentRequired, "subscription inactive or trial expired"
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireRole rejects requests whose token role is not in the allowed list.
// It narrows the gate's table for individual routes such as catalog writes.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.NewRedirect("insufficient permissions", access.UnauthorizedPath))
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims stored by Gate, or nil on public routes.
func GetClaims(c *gin.Context) *access.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*access.Claims)
	return claims
}
