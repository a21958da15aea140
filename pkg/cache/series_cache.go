// Package cache holds recently fetched candle series so repeated analysis
// requests for the same symbol do not hit the market data provider.
package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/market"
)

const numShards = 16

// SeriesCache is a sharded TTL cache of candle series keyed by symbol and
// interval.
type SeriesCache struct {
	shards [numShards]*seriesShard
	ttl    time.Duration
}

type seriesShard struct {
	mu    sync.RWMutex
	items map[string]seriesEntry
}

type seriesEntry struct {
	series    market.Series
	updatedAt time.Time
}

// NewSeriesCache creates a cache whose entries expire after ttl. A zero ttl
// disables expiry.
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	c := &SeriesCache{ttl: ttl}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &seriesShard{
			items: make(map[string]seriesEntry),
		}
	}
	return c
}

// Key builds the cache key for a symbol/interval pair.
func Key(symbol, interval string) string {
	return symbol + "|" + interval
}

// getShard returns the shard for the given key.
func (c *SeriesCache) getShard(key string) *seriesShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Set stores a series under the key.
func (c *SeriesCache) Set(key string, series market.Series) {
	shard := c.getShard(key)
	shard.mu.Lock()
	shard.items[key] = seriesEntry{
		series:    series,
		updatedAt: time.Now(),
	}
	shard.mu.Unlock()
}

// Get retrieves a series if present and not expired.
func (c *SeriesCache) Get(key string) (market.Series, bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	entry, ok := shard.items[key]
	shard.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.updatedAt) > c.ttl {
		return nil, false
	}
	return entry.series, true
}

// Delete removes a key from the cache.
func (c *SeriesCache) Delete(key string) {
	shard := c.getShard(key)
	shard.mu.Lock()
	delete(shard.items, key)
	shard.mu.Unlock()
}

// Len returns total items across all shards, expired entries included.
func (c *SeriesCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.items)
		shard.mu.RUnlock()
	}
	return total
}

// Cleanup removes entries older than the TTL and returns how many were
// dropped. Call it periodically; Get already ignores expired entries.
func (c *SeriesCache) Cleanup() int {
	if c.ttl <= 0 {
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-c.ttl)

	for _, shard := range c.shards {
		shard.mu.Lock()
		for key, entry := range shard.items {
			if entry.updatedAt.Before(cutoff) {
				delete(shard.items, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// Stats provides cache statistics for the health endpoint.
type Stats struct {
	TotalItems  int            `json:"total_items"`
	ShardCounts [numShards]int `json:"shard_counts"`
	OldestAge   time.Duration  `json:"oldest_age"`
}

// Snapshot returns current cache statistics.
func (c *SeriesCache) Snapshot() Stats {
	stats := Stats{}
	var oldest time.Time

	for i, shard := range c.shards {
		shard.mu.RLock()
		stats.ShardCounts[i] = len(shard.items)
		stats.TotalItems += len(shard.items)
		for _, entry := range shard.items {
			if oldest.IsZero() || entry.updatedAt.Before(oldest) {
				oldest = entry.updatedAt
			}
		}
		shard.mu.RUnlock()
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	return stats
}
