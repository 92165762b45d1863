package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/apperr"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/identity"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
)

// IdentityKey is the gin context key holding the authenticated identity.Identity.
const IdentityKey = "identity"

// Authenticator is the minimal interface the middleware depends on
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (identity.Identity, error)
}

// AuthMiddleware returns a Gin middleware that authenticates Bearer tokens
// before the handler runs. The identity is stored both in the gin context and
// in the request context.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				logger.Errorf("authentication failed: %v", err)
				c.AbortWithStatusJSON(status, gin.H{"error": "authentication unavailable"})
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		c.Set(IdentityKey, id)
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok && id.Username != ""
}

// limitKey prefers the authenticated username (per-user, NAT-friendly
// limiting) and falls back to the client IP.
func limitKey(c *gin.Context) string {
	if id, ok := CurrentIdentity(c); ok {
		return "user:" + id.Username
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
