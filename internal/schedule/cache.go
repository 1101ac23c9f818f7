package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache stores computed weekly simulations in redis. The pipeline is
// deterministic, so the cache is purely a latency optimization; a nil
// *ResultCache (or a redis outage) just means every request recomputes.
type ResultCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewResultCache creates a cache backed by the given client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if client == nil {
		panic("schedule: redis client required")
	}
	return &ResultCache{redis: client, ttl: ttl}
}

// CacheKey derives the cache key for one simulation: a hash of the
// canonical normalized rules plus the resolved seed, provider, and week
// anchor. Identical inputs always map to the same key.
func CacheKey(rules Rules, seed int64, providerID string, monday time.Time) string {
	canonical, _ := json.Marshal(rules.AsInput())
	return fmt.Sprintf("schedule:sim:%08x:%s:%s:%d",
		Hash(string(canonical)), monday.Format("2006-01-02"), providerID, seed)
}

// Get returns the cached result for key, or (nil, false) on a miss or any
// redis error.
func (c *ResultCache) Get(ctx context.Context, key string) (*SimulationResult, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var res SimulationResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Set stores the result under key. Errors are swallowed; the cache never
// affects correctness.
func (c *ResultCache) Set(ctx context.Context, key string, res *SimulationResult) {
	if c == nil || res == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}
