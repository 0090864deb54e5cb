package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trokazz-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRateLimiter connects to the Redis backend. An empty URL disables rate
// limiting entirely; a reachable backend is not required to serve traffic.
func NewRateLimiter(cfg models.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		zap.L().Warn("Rate limiting disabled: no Redis URL configured")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	zap.L().Info("Rate limiter connected", zap.Int64("requests_per_min", cfg.RequestsPerMin))
	return client, nil
}

// RateLimit enforces a fixed per-IP request budget per minute. Redis outages
// degrade to letting traffic through rather than failing closed.
func RateLimit(rdb *redis.Client, requestsPerMin int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || requestsPerMin <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			zap.L().Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, time.Minute)
		}

		if count > requestsPerMin {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
