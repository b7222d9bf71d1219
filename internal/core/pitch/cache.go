package pitch

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultCacheSize bounds the number of memoized raw records.
const DefaultCacheSize = 64

// CacheStats counts cache lookups.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// ProfileCache memoizes profiles resolved from raw record bytes, keyed by
// their xxhash digest. Failed resolutions are not cached. Safe for concurrent use.
type ProfileCache struct {
	resolver *Resolver
	max      int

	mu      sync.Mutex
	entries map[uint64]Profile
	order   []uint64
	stats   CacheStats
}

// NewProfileCache wraps resolver. A non-positive size selects DefaultCacheSize.
func NewProfileCache(resolver *Resolver, size int) *ProfileCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &ProfileCache{
		resolver: resolver,
		max:      size,
		entries:  make(map[uint64]Profile, size),
	}
}

// Resolve memoizes raw refs and delegates everything else.
func (c *ProfileCache) Resolve(ref PitchRef) (Profile, error) {
	if !ref.IsDataDriven() || ref.loaded || len(ref.Raw) == 0 {
		return c.resolver.Resolve(ref)
	}
	return c.ResolveRaw(ref.Raw)
}

// ResolveRaw parses and resolves raw, or returns the memoized profile for
// identical bytes.
func (c *ProfileCache) ResolveRaw(raw []byte) (Profile, error) {
	key := xxhash.Sum64(raw)

	c.mu.Lock()
	if p, ok := c.entries[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return p, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	d, err := ParsePitchData(raw)
	if err != nil {
		return Profile{}, err
	}
	p, err := c.resolver.ResolveData(d)
	if err != nil {
		return Profile{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[key] = p
		c.order = append(c.order, key)
	}
	return p, nil
}

// Stats returns a snapshot of the counters.
func (c *ProfileCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
