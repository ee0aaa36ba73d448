package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKeyRequestID struct{}

const headerRequestID = "X-Request-Id"

// RequestID tags every request with a stable id: the caller's
// X-Request-Id when present, a fresh uuid otherwise. The id is echoed
// back in the response header, stored in both the gin and standard
// contexts, and stamped on the access log line written when the
// request finishes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID{}, rid))
		c.Writer.Header().Set(headerRequestID, rid)

		start := time.Now()
		c.Next()

		log.Printf("[req] id=%s method=%s path=%s status=%d latency=%s",
			rid, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// RequestIDFrom reads the request id off a standard context; empty when
// the request did not pass through RequestID.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return rid
}
