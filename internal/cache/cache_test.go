// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/marquee/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(ttl time.Duration, max int) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New("test", ttl, max)
	c.now = clock.Now
	return c, clock
}

func TestCacheBasicOperations(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	c, clock := newTestCache(time.Minute, 0)

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	clock.Advance(61 * time.Second)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", c.Len())
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)

	c.Set("key1", "value1")
	c.Delete("key1")
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	if got := c.GetStats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}
}

func TestCacheBounded(t *testing.T) {
	c, clock := newTestCache(time.Minute, 3)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		clock.Advance(time.Second)
	}
	c.Set("k3", 3)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry k0 should have been evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("newest entry k3 missing")
	}
}

func TestCacheBoundedPrefersExpired(t *testing.T) {
	c, clock := newTestCache(time.Minute, 2)

	c.SetWithTTL("short", 1, time.Second)
	c.Set("long", 2)
	clock.Advance(2 * time.Second)
	c.Set("new", 3)

	if _, ok := c.Get("long"); !ok {
		t.Error("live entry evicted while an expired one was present")
	}
}

func TestCacheMetrics(t *testing.T) {
	c := New("metrics-test", time.Minute, 0)

	hits := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("metrics-test"))
	misses := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("metrics-test"))

	c.Set("k", "v")
	c.Get("k")
	c.Get("missing")

	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("metrics-test")); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("metrics-test")); got != misses+1 {
		t.Errorf("misses = %v, want %v", got, misses+1)
	}
	if rate := c.HitRate(); rate != 50 {
		t.Errorf("HitRate() = %v, want 50", rate)
	}
}

func TestCacheRunPurges(t *testing.T) {
	c := New("run-test", 10*time.Millisecond, 0)
	c.Set("k", "v")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Run", c.Len())
	}
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("search", map[string]any{"q": "matrix", "page": 1})
	b := GenerateKey("search", map[string]any{"page": 1, "q": "matrix"})
	c := GenerateKey("search", map[string]any{"q": "matrix", "page": 2})

	if a != b {
		t.Errorf("keys differ for equal params: %s vs %s", a, b)
	}
	if a == c {
		t.Error("keys collide for different params")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New("concurrent", time.Minute, 64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%100)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds bound", c.Len())
	}
}
