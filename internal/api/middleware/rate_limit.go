package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/pkg/ratelimit"
	"ourcodingkiddos/backend/pkg/redis"
	"ourcodingkiddos/backend/pkg/response"
)

// Limiter decides whether one more hit for key is allowed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// NewLimiter uses a Redis sliding window when rdb is set, an in-process fixed window otherwise
func NewLimiter(rdb *redis.Client, limit int, window time.Duration) Limiter {
	if rdb == nil {
		return &localLimiter{fw: ratelimit.NewFixedWindow(limit, window)}
	}
	return &redisLimiter{rdb: rdb, limit: limit, window: window}
}

type redisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return l.rdb.Allow(ctx, key, l.limit, l.window)
}

type localLimiter struct {
	fw *ratelimit.FixedWindow
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	ok, retry := l.fw.Allow(key)
	return ok, retry, nil
}

// RateLimit throttles requests per client IP under the given bucket name.
// Limiter errors let the request through.
func RateLimit(name string, limiter Limiter, message string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate_limit:" + name + ":" + c.ClientIP()
		allowed, retry, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("bucket", name), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			if retry > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			}
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
