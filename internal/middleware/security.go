package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders sets conservative defaults for an API that also proxies
// video bytes, so no framing or sniffing surprises on the stream endpoint.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
