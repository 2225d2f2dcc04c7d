package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"rsih_portal/internal/domain/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedis connects to REDIS_TEST_ADDR and skips when it is unset.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestNopImplementations(t *testing.T) {
	ctx := context.Background()
	var c CatalogCache = NopCatalogCache{}
	c.Set(ctx, true, []model.ProblemStatement{{ID: 1}})
	_, ok := c.Get(ctx, true)
	assert.False(t, ok)

	var l AttemptLimiter = NopAttemptLimiter{}
	for range 100 {
		allowed, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRedisCatalogCache(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	c := NewRedisCatalogCache(rdb, time.Minute)
	c.Invalidate(ctx)

	count := 4
	c.Set(ctx, true, []model.ProblemStatement{{ID: 9, Title: "Flood alerts", SubmissionCount: &count}})
	c.Set(ctx, false, []model.ProblemStatement{{ID: 9, Title: "Flood alerts"}})

	withCounts, ok := c.Get(ctx, true)
	require.True(t, ok)
	require.Len(t, withCounts, 1)
	require.NotNil(t, withCounts[0].SubmissionCount)
	assert.Equal(t, 4, *withCounts[0].SubmissionCount)

	plain, ok := c.Get(ctx, false)
	require.True(t, ok)
	assert.Nil(t, plain[0].SubmissionCount)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx, true)
	assert.False(t, ok)
	_, ok = c.Get(ctx, false)
	assert.False(t, ok)
}

func TestRedisAttemptLimiter(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	l := NewRedisAttemptLimiter(rdb, "test-login-"+uuid.NewString(), 3, time.Minute)

	for i := range 3 {
		allowed, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}
	allowed, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other clients keep their own budget.
	allowed, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed)
}
