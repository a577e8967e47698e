package server

import (
	"sync"
	"time"

	"github.com/ryanwaits/openpkg/spec"
)

// specCache is a TTL cache of analysis results keyed by package pattern.
// A zero TTL disables caching entirely.
type specCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]cacheEntry
}

type cacheEntry struct {
	spec    *spec.PackageSpec
	expires time.Time
}

func newSpecCache(ttl time.Duration) *specCache {
	return &specCache{ttl: ttl, m: make(map[string]cacheEntry)}
}

func (c *specCache) get(key string) (*spec.PackageSpec, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(c.m, key)
		return nil, false
	}
	return e.spec, true
}

func (c *specCache) put(key string, ps *spec.PackageSpec) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = cacheEntry{spec: ps, expires: time.Now().Add(c.ttl)}
}
