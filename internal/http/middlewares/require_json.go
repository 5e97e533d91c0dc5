package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects body-carrying requests whose Content-Type is not JSON.
// Reads pass through untouched, as does the form-encoded token endpoint,
// which is mounted outside this middleware.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method

		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		contentType := strings.ToLower(c.GetHeader("Content-Type"))

		// "application/json; charset=utf-8" counts
		if !strings.HasPrefix(contentType, "application/json") {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{
					"code":    "unsupported_media_type",
					"message": "Content-Type must be application/json",
				},
			})
			return
		}

		c.Next()
	}
}
