package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores one rate table for a while. Exchange rates move slowly and the
// upstream API is rate-limited, so serving an hour-old table is fine.
type Cache interface {
	Get(ctx context.Context) (map[string]float64, bool)
	Set(ctx context.Context, rates map[string]float64)
}

// DefaultTTL is how long a cached rate table stays fresh.
const DefaultTTL = time.Hour

// memoryCache is the in-process fallback used when no Redis is configured.
type memoryCache struct {
	mu      sync.Mutex
	rates   map[string]float64
	expires time.Time
	ttl     time.Duration
}

// NewMemoryCache returns a process-local Cache with the given TTL.
// A zero ttl means DefaultTTL.
func NewMemoryCache(ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryCache{ttl: ttl}
}

func (c *memoryCache) Get(_ context.Context) (map[string]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rates == nil || time.Now().After(c.expires) {
		return nil, false
	}
	return c.rates, true
}

func (c *memoryCache) Set(_ context.Context, rates map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = rates
	c.expires = time.Now().Add(c.ttl)
}

const redisRatesKey = "rates:latest"

// redisCache shares one rate table across API instances.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and returns a shared Cache.
// A zero ttl means DefaultTTL.
func NewRedisCache(redisURL string, ttl time.Duration) (Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("rates.NewRedisCache: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("rates.NewRedisCache: ping: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client: client, ttl: ttl}, nil
}

func (c *redisCache) Get(ctx context.Context) (map[string]float64, bool) {
	raw, err := c.client.Get(ctx, redisRatesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rates map[string]float64
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, false
	}
	return rates, true
}

func (c *redisCache) Set(ctx context.Context, rates map[string]float64) {
	raw, err := json.Marshal(rates)
	if err != nil {
		return
	}
	// Best effort: a failed cache write just means the next call refetches.
	c.client.Set(ctx, redisRatesKey, raw, c.ttl)
}
