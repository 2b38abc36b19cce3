package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"signin-service/internal/ratelimit"
)

// RateLimit admits requests per client IP. Rejected requests get 429 and
// the fixed message; they are never queued. Limiter errors fail open and
// are logged at most once a minute.
func RateLimit(l ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	unavailable := &rate.Sometimes{First: 1, Interval: time.Minute}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			unavailable.Do(func() {
				log.Warn("rate limiter unavailable, admitting requests", zap.Error(err))
			})
			c.Next()
			return
		}
		if !allowed {
			log.Info("rate limit exceeded", zap.String("ip", ip))
			c.String(http.StatusTooManyRequests, ratelimit.Message)
			c.Abort()
			return
		}
		c.Next()
	}
}
