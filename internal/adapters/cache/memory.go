package cache

import (
	"context"
	"sync"
	"time"

	"dispatch-service/internal/ports"
	"dispatch-service/internal/roadnet"
)

// MemoryGeocodeCache is an in-process TTL cache for forward-geocode
// results, adapted from the teacher's SQLiteGeocodeCache: same
// Get/Put contract, no disk file, entries expire instead of persisting.
// It is the no-infrastructure fallback when neither Postgres nor Redis is
// configured.
type MemoryGeocodeCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]geocodeEntry
}

type geocodeEntry struct {
	result  ports.ForwardResult
	expires time.Time
}

// NewMemoryGeocodeCache builds a cache whose entries expire after ttl.
func NewMemoryGeocodeCache(ttl time.Duration) *MemoryGeocodeCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryGeocodeCache{ttl: ttl, entries: make(map[string]geocodeEntry)}
}

// Get returns the cached result for key, if present and unexpired.
func (c *MemoryGeocodeCache) Get(ctx context.Context, key string) (ports.ForwardResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return ports.ForwardResult{}, false, nil
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return ports.ForwardResult{}, false, nil
	}
	return e.result, true, nil
}

// Put stores r under key with the cache's configured TTL.
func (c *MemoryGeocodeCache) Put(ctx context.Context, key string, r ports.ForwardResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = geocodeEntry{result: r, expires: time.Now().Add(c.ttl)}
	return nil
}

// MemoryGraphEdgeCache is an in-process TTL cache implementing
// roadnet.EdgeCache, adapted from the teacher's SQLiteDistanceCache.
type MemoryGraphEdgeCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]graphEntry
}

type graphEntry struct {
	graph   *roadnet.Graph
	expires time.Time
}

// NewMemoryGraphEdgeCache builds a cache whose entries expire after ttl.
func NewMemoryGraphEdgeCache(ttl time.Duration) *MemoryGraphEdgeCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryGraphEdgeCache{ttl: ttl, entries: make(map[string]graphEntry)}
}

// Get implements roadnet.EdgeCache.
func (c *MemoryGraphEdgeCache) Get(ctx context.Context, bboxKey string) (*roadnet.Graph, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[bboxKey]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expires) {
		delete(c.entries, bboxKey)
		return nil, false, nil
	}
	return e.graph, true, nil
}

// Put implements roadnet.EdgeCache.
func (c *MemoryGraphEdgeCache) Put(ctx context.Context, bboxKey string, g *roadnet.Graph) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[bboxKey] = graphEntry{graph: g, expires: time.Now().Add(c.ttl)}
	return nil
}
