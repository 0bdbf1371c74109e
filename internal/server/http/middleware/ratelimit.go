package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/youwow/internal/ratelimit"
)

// RateLimit caps hits per client IP on one endpoint. Limiter errors let the
// request through.
func RateLimit(limiter ratelimit.Limiter, endpoint string, rule ratelimit.Rule, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := endpoint + ":" + c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), key, rule)
		if err != nil {
			logger.Warn("rate limiter unavailable", slog.String("endpoint", endpoint), slog.String("error", err.Error()))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
