package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"voice-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// Middleware gates an endpoint behind the admission check.
// The key is "<endpoint>:<user id>" for authenticated callers, falling back
// to the client IP so unauthenticated probes share a bucket per address.
// Limiter errors fail open.
func Middleware(l Limiter, endpoint string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.UserID(c.Request.Context())
		if err != nil || ident == "" {
			ident = c.ClientIP()
		}

		d, err := l.Allow(c.Request.Context(), endpoint+":"+ident, maxRequests, window)
		if err != nil {
			c.Next()
			return
		}
		if !d.Allowed {
			secs := int64(d.RetryAfter / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.FormatInt(secs, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":          "rate limited",
				"retry_after_ms": d.RetryAfter.Milliseconds(),
			})
			return
		}
		c.Next()
	}
}
