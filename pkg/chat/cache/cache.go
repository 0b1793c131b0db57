package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

const (
	sweepEverySets = 50
	sweepInterval  = 10 * time.Minute
)

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int `json:"hits"`
	Misses      int `json:"misses"`
	Evictions   int `json:"evictions"`
	Expirations int `json:"expirations"`
	Size        int `json:"size"`
	Capacity    int `json:"capacity"`
}

// HitRate is hits over total lookups, 0 when nothing was looked up yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key         string
	value       string
	expiresAt   time.Time
	placeholder bool
}

// Cache is a bounded LRU with per-entry TTL. Expired entries are dropped
// lazily on read and swept opportunistically on write, so no background
// goroutine is needed. All methods are safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration

	ll    *list.List
	items map[string]*list.Element

	setsSinceSweep int
	lastSweep      time.Time

	stats Stats

	// now is replaceable in tests.
	now func() time.Time
}

func New(capacity int, defaultTTL time.Duration) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
	c.lastSweep = c.now()
	return c
}

// Get returns the cached value for key. Placeholder entries written by
// predictive warming are reported as misses; they mark work in flight, not
// answers.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return "", false
	}
	en := el.Value.(*entry)
	if c.now().After(en.expiresAt) {
		c.removeElement(el)
		c.stats.Expirations++
		c.stats.Misses++
		return "", false
	}
	if en.placeholder {
		c.stats.Misses++
		return "", false
	}
	c.ll.MoveToFront(el)
	c.stats.Hits++
	return en.value, true
}

// Has reports whether key is present and unexpired, placeholders included.
// Warming uses it to avoid enqueueing the same question twice.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	if c.now().After(el.Value.(*entry).expiresAt) {
		c.removeElement(el)
		c.stats.Expirations++
		return false
	}
	return true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key, value string) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

func (c *Cache) SetWithTTL(key, value string, ttl time.Duration) {
	c.set(key, value, ttl, false)
}

// SetPlaceholder reserves key for an answer being computed. A later Set with
// the real value overwrites it; until then Get treats the key as a miss.
func (c *Cache) SetPlaceholder(key string, ttl time.Duration) {
	c.set(key, "", ttl, true)
}

func (c *Cache) set(key, value string, ttl time.Duration, placeholder bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		en := el.Value.(*entry)
		en.value = value
		en.expiresAt = now.Add(ttl)
		en.placeholder = placeholder
		c.ll.MoveToFront(el)
	} else {
		el := c.ll.PushFront(&entry{key: key, value: value, expiresAt: now.Add(ttl), placeholder: placeholder})
		c.items[key] = el
		for c.ll.Len() > c.capacity {
			c.removeElement(c.ll.Back())
			c.stats.Evictions++
		}
	}

	c.setsSinceSweep++
	if c.setsSinceSweep >= sweepEverySets || now.Sub(c.lastSweep) >= sweepInterval {
		c.sweep(now)
	}
}

// Invalidate removes every entry whose key starts with prefix and returns how
// many were removed.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.ll.Len()
	s.Capacity = c.capacity
	return s
}

// sweep drops all expired entries. Called with the lock held.
func (c *Cache) sweep(now time.Time) {
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expiresAt) {
			c.removeElement(el)
			c.stats.Expirations++
		}
		el = prev
	}
	c.setsSinceSweep = 0
	c.lastSweep = now
}

func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
