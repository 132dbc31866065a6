package middleware

import (
	"net/http"

	"autoposter-api/internal/auth"
	"autoposter-api/internal/config"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the caller's auth.Identity
const IdentityKey = "identity"

// RequireIdentity rejects requests without a caller identity and makes the
// identity available to handlers through the request context.
func RequireIdentity(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.FromHeaders(c.Request.Header, cfg)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))

		if v, ok := c.Get(LoggerKey); ok {
			if l, ok := v.(*logger.Logger); ok {
				c.Set(LoggerKey, l.WithUserID(identity.UserID.String()))
			}
		}

		c.Next()
	}
}
