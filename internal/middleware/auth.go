package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const ViewerIDKey = "viewer_id"

// ResolveViewer reads the user id the identity gateway forwards with each
// authenticated request. Requests without one are treated as anonymous.
func ResolveViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
				c.Set(ViewerIDKey, uint(id))
			}
		}
		c.Next()
	}
}

// ViewerID returns the authenticated viewer, or nil for anonymous requests.
func ViewerID(c *gin.Context) *uint {
	if v, ok := c.Get(ViewerIDKey); ok {
		id := v.(uint)
		return &id
	}
	return nil
}

// AuthRequired rejects requests without a resolved viewer.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerID(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
