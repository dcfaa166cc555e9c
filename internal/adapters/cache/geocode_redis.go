package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisGeocodeCache is a Redis-backed geocode result cache for
// multi-process deployments. It uses a redis.Ring so address-key lookups
// shard across any number of configured nodes (go-redis picks the shard
// with rendezvous/HRW hashing internally), rather than a single redis.Client.
type RedisGeocodeCache struct {
	ring *redis.Ring
	ttl  time.Duration
}

// NewRedisGeocodeCache builds a cache backed by a redis.Ring addressing the
// given node addresses (name -> "host:port"). A single-entry map behaves as
// an ordinary single-node client.
func NewRedisGeocodeCache(addrs map[string]string, ttl time.Duration) *RedisGeocodeCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisGeocodeCache{
		ring: redis.NewRing(&redis.RingOptions{Addrs: addrs}),
		ttl:  ttl,
	}
}

// NewRedisGeocodeCacheFromRing builds a cache over an already-constructed
// ring, used by tests to point at a miniredis instance.
func NewRedisGeocodeCacheFromRing(ring *redis.Ring, ttl time.Duration) *RedisGeocodeCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisGeocodeCache{ring: ring, ttl: ttl}
}

// Get implements the same contract as PostgresGeocodeCache and
// MemoryGeocodeCache.
func (c *RedisGeocodeCache) Get(ctx context.Context, key string) (ports.ForwardResult, bool, error) {
	if c.ring == nil {
		return ports.ForwardResult{}, false, errors.New("geocode cache: ring is nil")
	}

	raw, err := c.ring.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.ForwardResult{}, false, nil
		}
		return ports.ForwardResult{}, false, fmt.Errorf("geocode cache: redis get: %w", err)
	}

	var r ports.ForwardResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return ports.ForwardResult{}, false, fmt.Errorf("geocode cache: decode: %w", err)
	}
	return r, true, nil
}

// Put implements the same contract as PostgresGeocodeCache and
// MemoryGeocodeCache.
func (c *RedisGeocodeCache) Put(ctx context.Context, key string, r ports.ForwardResult) error {
	if c.ring == nil {
		return errors.New("geocode cache: ring is nil")
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("geocode cache: encode: %w", err)
	}
	if err := c.ring.Set(ctx, redisKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocode cache: redis set: %w", err)
	}
	return nil
}

func redisKey(addressKey string) string {
	return "geocode:" + addressKey
}
