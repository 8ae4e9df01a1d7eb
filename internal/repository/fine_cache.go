package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/feeledger-backend/internal/config"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// FineCache is a Redis read-through cache of each school's fine catalog.
// Only catalog data is cached; ledger amounts are always computed live.
type FineCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFineCache creates a new FineCache.
func NewFineCache(rdb *redis.Client, ttl time.Duration) *FineCache {
	return &FineCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached catalog and whether it was present.
func (c *FineCache) Get(ctx context.Context, school model.SchoolCode) ([]model.FeeFine, bool, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.FineCatalogKey(school.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get fine cache: %w", err)
	}

	var fines []model.FeeFine
	if err := json.Unmarshal(raw, &fines); err != nil {
		return nil, false, fmt.Errorf("decode fine cache: %w", err)
	}
	return fines, true, nil
}

// Set stores a school's catalog.
func (c *FineCache) Set(ctx context.Context, school model.SchoolCode, fines []model.FeeFine) error {
	raw, err := json.Marshal(fines)
	if err != nil {
		return fmt.Errorf("encode fine cache: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.FineCatalogKey(school.String()), raw, c.ttl).Err()
}

// Invalidate drops a school's cached catalog.
func (c *FineCache) Invalidate(ctx context.Context, school model.SchoolCode) error {
	return c.rdb.Del(ctx, config.CacheKey.FineCatalogKey(school.String())).Err()
}
