package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts attempts per key within a fixed window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type redisAttemptLimiter struct {
	rdb    *redis.Client
	prefix string
	max    int
	window time.Duration
}

func NewRedisAttemptLimiter(rdb *redis.Client, prefix string, max int, window time.Duration) AttemptLimiter {
	return &redisAttemptLimiter{rdb: rdb, prefix: prefix, max: max, window: window}
}

func (l *redisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + ":" + key
	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("redisAttemptLimiter.Allow incr: %w", err)
	}
	// First hit opens the window.
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("redisAttemptLimiter.Allow expire: %w", err)
		}
	}
	return count <= int64(l.max), nil
}

type NopAttemptLimiter struct{}

func (NopAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
