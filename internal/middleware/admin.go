package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/auth"
)

// AdminOnly restricts access to identities on the configured allow-list.
// Must run after AuthMiddleware.
func AdminOnly(allowlist *auth.Allowlist) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !allowlist.IsAdmin(user) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
