package cache

import (
	"fmt"
	"testing"
	"time"
)

func newTestCache(capacity int, ttl time.Duration) (*Cache, *time.Time) {
	c := New(capacity, ttl)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.lastSweep = now
	return c, &now
}

func TestGetSetRoundTrip(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("hit on empty cache")
	}
	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c, now := newTestCache(10, time.Minute)

	c.Set("k", "v")
	*now = now.Add(61 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not dropped, len=%d", c.Len())
	}
	if s := c.Stats(); s.Expirations != 1 {
		t.Fatalf("Expirations = %d, want 1", s.Expirations)
	}
}

func TestLRUEvictionBound(t *testing.T) {
	c, _ := newTestCache(3, time.Hour)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want capacity 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatal("oldest entry survived eviction")
	}
	if _, ok := c.Get("k4"); !ok {
		t.Fatal("newest entry evicted")
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently read entry evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry survived")
	}
}

func TestPlaceholderNeverReturned(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	c.SetPlaceholder("k", time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("placeholder returned as an answer")
	}
	if !c.Has("k") {
		t.Fatal("placeholder invisible to Has")
	}

	c.Set("k", "real")
	if v, ok := c.Get("k"); !ok || v != "real" {
		t.Fatalf("real value after placeholder: %q, %v", v, ok)
	}
}

func TestSweepOnWrite(t *testing.T) {
	c, now := newTestCache(200, time.Minute)

	for i := 0; i < 40; i++ {
		c.Set(fmt.Sprintf("old%d", i), "v")
	}
	*now = now.Add(2 * time.Minute)

	// Cross the sweep threshold with fresh writes.
	for i := 0; i < 15; i++ {
		c.Set(fmt.Sprintf("new%d", i), "v")
	}

	if c.Len() != 15 {
		t.Fatalf("len = %d after sweep, want 15", c.Len())
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	c.Set("resp:aaa", "1")
	c.Set("resp:bbb", "2")
	c.Set("cluster:he:pricing", "3")

	if n := c.Invalidate("resp:"); n != 2 {
		t.Fatalf("Invalidate removed %d, want 2", n)
	}
	if _, ok := c.Get("cluster:he:pricing"); !ok {
		t.Fatal("unrelated entry removed")
	}
}

func TestStats(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	c.Set("k", "v")
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Size != 1 {
		t.Fatalf("stats = %+v", s)
	}
	if s.HitRate() != 0.5 {
		t.Fatalf("hit rate = %f", s.HitRate())
	}
}
