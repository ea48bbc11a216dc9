package middleware

import (
	"github.com/echoverse/core/internal/pkg/ratelimit"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// RateLimit applies the per-IP sliding window to every request, keyed by
// the request path so each endpoint keeps its own budget.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP(), c.Request.URL.Path) {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
