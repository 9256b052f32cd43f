package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
)

// ErrCacheMiss the key is not cached
var ErrCacheMiss = errors.New("cache miss")

// Client wraps go-redis for the token blacklist, rate limiting and small JSON caches
type Client struct {
	rdb    goredis.UniversalClient
	logger *zap.Logger
}

// NewClient connects and pings Redis
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb goredis.UniversalClient, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Ping health check
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ── token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken stores the jti until the token would have expired anyway
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted reports whether the jti was revoked
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const userRevokedPrefix = "token:user_revoked:"

// RevokeUserTokens invalidates every access token the user was issued up to now. The
// cutoff only has to outlive the longest access token, so ttl is the access-token TTL.
func (c *Client) RevokeUserTokens(ctx context.Context, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, userRevokedPrefix+userID, time.Now().Unix(), ttl).Err()
}

// UserTokensRevokedAt the cutoff written by RevokeUserTokens; zero when there is none
func (c *Client) UserTokensRevokedAt(ctx context.Context, userID string) (time.Time, error) {
	sec, err := c.rdb.Get(ctx, userRevokedPrefix+userID).Int64()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0), nil
}

// ── rate limiting ──

// CheckRateLimit sliding-window limiter on a sorted set of request timestamps.
// Rejected requests are not counted.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	allowed, _, err := c.Allow(ctx, key, limit, window)
	return allowed, err
}

// Allow is CheckRateLimit that also reports how long until the oldest hit leaves the window
func (c *Client) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	floor := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var card *goredis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", floor)
		pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if card.Val() <= int64(limit) {
		return true, 0, nil
	}

	if err := c.rdb.ZRem(ctx, key, member).Err(); err != nil {
		c.logger.Warn("rate limit rollback failed", zap.String("key", key), zap.Error(err))
	}

	retry := window
	oldest, err := c.rdb.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err == nil && len(oldest) == 1 {
		retry = time.Until(time.Unix(0, int64(oldest[0].Score)).Add(window))
	}
	return false, retry, nil
}

// ── JSON cache ──

// GetJSON decodes a cached value into dst; ErrCacheMiss when absent
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetJSON caches v for ttl
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Delete removes cached keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
