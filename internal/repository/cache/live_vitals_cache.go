package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pulse-companion-be/internal/entity"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const DefaultLiveTTL = 30 * time.Second

// LiveVitalsCache stores the latest stream estimate per patient. Get returns
// nil, nil when nothing fresh is cached.
type LiveVitalsCache interface {
	Set(ctx context.Context, live *entity.LiveVitals) error
	Get(ctx context.Context, patientId string) (*entity.LiveVitals, error)
	Delete(ctx context.Context, patientId string) error
}

func liveKey(patientId string) string {
	return fmt.Sprintf("vitals:live:%s", patientId)
}

type RedisLiveVitalsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLiveVitalsCache(rdb *redis.Client, ttl time.Duration) *RedisLiveVitalsCache {
	if ttl <= 0 {
		ttl = DefaultLiveTTL
	}
	return &RedisLiveVitalsCache{rdb: rdb, ttl: ttl}
}

func (c *RedisLiveVitalsCache) Set(ctx context.Context, live *entity.LiveVitals) error {
	data, err := json.Marshal(live)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, liveKey(live.PatientId), data, c.ttl).Err()
}

func (c *RedisLiveVitalsCache) Get(ctx context.Context, patientId string) (*entity.LiveVitals, error) {
	data, err := c.rdb.Get(ctx, liveKey(patientId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var live entity.LiveVitals
	if err := json.Unmarshal(data, &live); err != nil {
		return nil, fmt.Errorf("decode live vitals: %w", err)
	}
	return &live, nil
}

func (c *RedisLiveVitalsCache) Delete(ctx context.Context, patientId string) error {
	return c.rdb.Del(ctx, liveKey(patientId)).Err()
}

// MemoryLiveVitalsCache is the single-instance fallback when Redis is not reachable.
type MemoryLiveVitalsCache struct {
	cache *gocache.Cache
}

func NewMemoryLiveVitalsCache(ttl time.Duration) *MemoryLiveVitalsCache {
	if ttl <= 0 {
		ttl = DefaultLiveTTL
	}
	return &MemoryLiveVitalsCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryLiveVitalsCache) Set(ctx context.Context, live *entity.LiveVitals) error {
	cp := *live
	c.cache.Set(liveKey(live.PatientId), &cp, gocache.DefaultExpiration)
	return nil
}

func (c *MemoryLiveVitalsCache) Get(ctx context.Context, patientId string) (*entity.LiveVitals, error) {
	if x, found := c.cache.Get(liveKey(patientId)); found {
		cp := *x.(*entity.LiveVitals)
		return &cp, nil
	}
	return nil, nil
}

func (c *MemoryLiveVitalsCache) Delete(ctx context.Context, patientId string) error {
	c.cache.Delete(liveKey(patientId))
	return nil
}
