package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBody caps request bodies at limit bytes. Reads past the cap fail, which
// surfaces as a bind error in the handler.
func MaxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "request body too large",
				"kind":  "bad_request",
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
