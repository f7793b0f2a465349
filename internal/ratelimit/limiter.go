package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/askwhyharsh/geohunt/internal/config"
	"github.com/askwhyharsh/geohunt/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a client may write another coordinate.
type RateLimiter interface {
	AllowCoordinateWrite(ctx context.Context, ip string) (bool, error)
}

type Limiter struct {
	redis  storage.RedisClient
	config config.RateLimitConfig
	window time.Duration
	now    func() time.Time
}

func NewLimiter(redisClient storage.RedisClient, config config.RateLimitConfig) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: config,
		window: time.Minute,
		now:    time.Now,
	}
}

// AllowCoordinateWrite checks if an IP can post another coordinate.
// A non-positive limit disables the check.
func (l *Limiter) AllowCoordinateWrite(ctx context.Context, ip string) (bool, error) {
	if l.config.WritesPerMin <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:write:%s", ip)
	return l.checkSlidingWindow(ctx, key, l.config.WritesPerMin)
}

// checkSlidingWindow implements a sliding window rate limiter using sorted sets
func (l *Limiter) checkSlidingWindow(ctx context.Context, key string, maxCount int) (bool, error) {
	now := l.now()
	windowStart := now.Add(-l.window).UnixNano()

	// Remove old entries outside the window
	if err := l.redis.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart)); err != nil {
		return false, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := l.redis.ZCard(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(maxCount) {
		return false, nil
	}

	// Members must be unique or writes within the same instant collapse.
	if err := l.redis.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	}); err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}

	if err := l.redis.Expire(ctx, key, l.window); err != nil {
		return false, fmt.Errorf("failed to set expiry: %w", err)
	}

	return true, nil
}
