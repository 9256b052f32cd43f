package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMaxLen longer inbound ids are replaced to keep logs clean
const requestIDMaxLen = 64

// RequestID reuses X-Request-ID when present, otherwise generates a UUID, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// GetRequestID id of the current request, empty outside RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
