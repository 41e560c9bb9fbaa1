package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/security"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated account id.
const UserIDKey = "userID"

// AuthRequired validates the bearer token and stores the account id in
// the request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := security.ValidateJWT(strings.TrimPrefix(header, "Bearer "), config.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		userID := security.UserIDFromClaims(claims)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated account id set by AuthRequired.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// AdminRequired guards the operational endpoints with a static API key.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.AdminAPIKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access not configured"})
			return
		}
		provided := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(config.AdminAPIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
