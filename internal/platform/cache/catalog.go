package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"rsih_portal/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const (
	catalogKeyPlain  = "catalog:public:plain"
	catalogKeyCounts = "catalog:public:counts"
)

// CatalogCache stores the rendered public problem statement list. Failures are
// logged and treated as misses so the database stays the source of truth.
type CatalogCache interface {
	Get(ctx context.Context, withCounts bool) ([]model.ProblemStatement, bool)
	Set(ctx context.Context, withCounts bool, list []model.ProblemStatement)
	Invalidate(ctx context.Context)
}

type redisCatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCatalogCache(rdb *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{rdb: rdb, ttl: ttl}
}

func catalogKey(withCounts bool) string {
	if withCounts {
		return catalogKeyCounts
	}
	return catalogKeyPlain
}

func (c *redisCatalogCache) Get(ctx context.Context, withCounts bool) ([]model.ProblemStatement, bool) {
	raw, err := c.rdb.Get(ctx, catalogKey(withCounts)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARN: catalog cache read failed: %v", err)
		}
		return nil, false
	}
	var list []model.ProblemStatement
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Printf("WARN: catalog cache holds invalid JSON: %v", err)
		return nil, false
	}
	return list, true
}

func (c *redisCatalogCache) Set(ctx context.Context, withCounts bool, list []model.ProblemStatement) {
	payload, err := json.Marshal(list)
	if err != nil {
		log.Printf("WARN: catalog cache marshal failed: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, catalogKey(withCounts), payload, c.ttl).Err(); err != nil {
		log.Printf("WARN: catalog cache write failed: %v", err)
	}
}

func (c *redisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, catalogKeyPlain, catalogKeyCounts).Err(); err != nil {
		log.Printf("WARN: catalog cache invalidation failed: %v", err)
	}
}

type NopCatalogCache struct{}

func (NopCatalogCache) Get(ctx context.Context, withCounts bool) ([]model.ProblemStatement, bool) {
	return nil, false
}

func (NopCatalogCache) Set(ctx context.Context, withCounts bool, list []model.ProblemStatement) {}

func (NopCatalogCache) Invalidate(ctx context.Context) {}
