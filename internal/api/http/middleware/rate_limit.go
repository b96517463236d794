package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsletter-back/internal/api/http/handler"
	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/metrics"
)

const rateLimitKeyPrefix = "newsletter:rl:"

// RateLimit is a fixed window limiter keyed by client IP. The first request
// of a window sets the key TTL, so the counter resets when the key expires.
// Redis failures let the request through.
func RateLimit(log *zap.Logger, client *goredis.Client, requests int, window time.Duration) gin.HandlerFunc {
	if client == nil || requests <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if window < time.Second {
		window = time.Second
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}

		key := rateLimitKeyPrefix + ip

		cnt, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("Rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()

			return
		}

		if cnt == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				log.Warn("Failed to set rate limit window", zap.String("key", key), zap.Error(err))
			}
		}

		if cnt > int64(requests) {
			retryAfter := window
			if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				retryAfter = ttl
			}

			metrics.RateLimitRejected.Inc()

			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, handler.ResponseWithMessage{
				Status:  handler.StatusRateLimited,
				Message: apperrors.ErrRateLimited.Error(),
			})

			return
		}

		metrics.RateLimitAllowed.Inc()

		c.Next()
	}
}
