package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

var _ services.KPICache = (*RedisKPICache)(nil)

const DefaultKPITTL = 6 * time.Hour

// RedisKPICache stores one hash per habit, one field per "today". Dropping
// the hash invalidates every day at once.
type RedisKPICache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisKPICache(rdb *redis.Client, ttl time.Duration) *RedisKPICache {
	if ttl <= 0 {
		ttl = DefaultKPITTL
	}
	return &RedisKPICache{rdb: rdb, ttl: ttl}
}

func kpiKey(habitID string) string {
	return fmt.Sprintf("kpi:%s", habitID)
}

func (c *RedisKPICache) Get(ctx context.Context, habitID, day string) (*domain.HabitKPI, bool, error) {
	raw, err := c.rdb.HGet(ctx, kpiKey(habitID), day).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kpi cache: read %s: %w", habitID, err)
	}

	var kpi domain.HabitKPI
	if err := json.Unmarshal(raw, &kpi); err != nil {
		c.rdb.HDel(ctx, kpiKey(habitID), day)
		return nil, false, fmt.Errorf("kpi cache: corrupt entry %s/%s: %w", habitID, day, err)
	}

	return &kpi, true, nil
}

func (c *RedisKPICache) Set(ctx context.Context, habitID, day string, kpi *domain.HabitKPI) error {
	data, err := json.Marshal(kpi)
	if err != nil {
		return fmt.Errorf("kpi cache: encode %s: %w", habitID, err)
	}

	key := kpiKey(habitID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, day, data)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("kpi cache: write %s: %w", habitID, err)
	}
	return nil
}

func (c *RedisKPICache) Invalidate(ctx context.Context, habitID string) error {
	if err := c.rdb.Del(ctx, kpiKey(habitID)).Err(); err != nil {
		return fmt.Errorf("kpi cache: invalidate %s: %w", habitID, err)
	}
	return nil
}
