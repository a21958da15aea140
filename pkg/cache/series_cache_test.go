package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/market"
)

func sampleSeries(n int) market.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(market.Series, n)
	for i := range s {
		c := 100 + float64(i)
		s[i] = market.PricePoint{Date: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return s
}

func TestSeriesCacheSetGet(t *testing.T) {
	c := NewSeriesCache(time.Minute)
	key := Key("BTCUSDT", "1d")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	c.Set(key, sampleSeries(5))
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if len(got) != 5 {
		t.Errorf("expected 5 candles, got %d", len(got))
	}

	// Same symbol, different interval, is a different entry.
	if _, ok := c.Get(Key("BTCUSDT", "1h")); ok {
		t.Error("interval must be part of the key")
	}
}

func TestSeriesCacheExpiry(t *testing.T) {
	c := NewSeriesCache(10 * time.Millisecond)
	key := Key("ETHUSDT", "1d")
	c.Set(key, sampleSeries(3))

	if _, ok := c.Get(key); !ok {
		t.Fatal("expected a hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Error("expected a miss after the TTL elapsed")
	}

	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("expected cleanup to drop 1 entry, got %d", removed)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after cleanup, got %d", c.Len())
	}
}

func TestSeriesCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewSeriesCache(0)
	key := Key("BTCUSDT", "1d")
	c.Set(key, sampleSeries(3))

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(key); !ok {
		t.Error("zero TTL entries must not expire")
	}
	if removed := c.Cleanup(); removed != 0 {
		t.Errorf("cleanup with zero TTL removed %d entries", removed)
	}
}

func TestSeriesCacheStats(t *testing.T) {
	c := NewSeriesCache(time.Minute)
	for i := 0; i < 40; i++ {
		c.Set(Key(fmt.Sprintf("SYM%d", i), "1d"), sampleSeries(1))
	}

	stats := c.Snapshot()
	if stats.TotalItems != 40 {
		t.Errorf("expected 40 items, got %d", stats.TotalItems)
	}
	sum := 0
	for _, n := range stats.ShardCounts {
		sum += n
	}
	if sum != 40 {
		t.Errorf("shard counts sum to %d", sum)
	}
}
