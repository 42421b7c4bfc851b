package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/auth"
)

const (
	// ContextUserKey holds the verified *auth.User for downstream handlers
	ContextUserKey = "authUser"
	// ContextUserIDKey holds the verified uid string
	ContextUserIDKey = "userId"
)

// AuthMiddleware verifies the Bearer token against the identity provider and
// stores the caller identity in the request context.
func AuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		user, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.UID)
		c.Next()
	}
}

// CurrentUser pulls the verified identity out of the context
func CurrentUser(c *gin.Context) (*auth.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*auth.User)
	return user, ok
}
