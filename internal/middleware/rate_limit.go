package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in fixed windows stored in Redis.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

func rateLimitKey(clientIP string) string {
	return "rate_limit:" + clientIP
}

// Allow records one hit. When the window is used up it reports how long
// until it resets.
func (l *RateLimiter) Allow(ctx context.Context, key string) (remaining int, retryAfter time.Duration, err error) {
	current, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit count for %s: %w", key, err)
	}
	if current == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, 0, fmt.Errorf("rate limit window for %s: %w", key, err)
		}
	}

	if current > int64(l.limit) {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return 0, ttl, nil
	}
	return l.limit - int(current), 0, nil
}

// Middleware limits requests per client IP. Redis failures let the request through.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, retryAfter, err := l.Allow(c.Request.Context(), rateLimitKey(c.ClientIP()))
		if err != nil {
			log.Printf("Rate limit check failed: %v", err)
			c.Next()
			return
		}

		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
