package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// NewRateLimiter returns a token bucket; r <= 0 means unlimited.
func NewRateLimiter(r float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	if r <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(r), burst)
}

// RateLimitMiddleware rejects requests with 429 once the bucket is empty.
func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			Abort(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}
