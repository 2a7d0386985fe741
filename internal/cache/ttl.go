package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 1000
	// evictFraction of maxSize is dropped, oldest first, when a full cache
	// receives a new key.
	evictFraction = 0.10
)

// TTLCache is a size-bounded cache whose entries expire a fixed time after
// they were written. Eviction under pressure follows insertion order
// (createdAt), not access order.
type TTLCache[T any] struct {
	mu         sync.Mutex
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
	items      map[string]*list.Element
	order      *list.List // front is newest

	hits      uint64
	misses    uint64
	evictions uint64
	expired   uint64
}

type cacheItem[T any] struct {
	key       string
	data      T
	createdAt time.Time
	ttl       time.Duration
}

func (it *cacheItem[T]) expiredAt(now time.Time) bool {
	return now.Sub(it.createdAt) > it.ttl
}

type config struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTLCache.
type Option func(*config)

func WithMaxSize(n int) Option {
	return func(c *config) { c.maxSize = n }
}

func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewTTLCache creates a cache with DefaultMaxSize and DefaultTTL unless
// overridden.
func NewTTLCache[T any](opts ...Option) *TTLCache[T] {
	cfg := config{maxSize: DefaultMaxSize, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSize < 1 {
		cfg.maxSize = DefaultMaxSize
	}
	if cfg.ttl <= 0 {
		cfg.ttl = DefaultTTL
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &TTLCache[T]{
		maxSize:    cfg.maxSize,
		defaultTTL: cfg.ttl,
		now:        cfg.now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get retrieves a value. An expired entry is removed and reported absent.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if item.expiredAt(c.now()) {
		c.removeElement(elem)
		c.expired++
		c.misses++
		return zero, false
	}

	c.hits++
	return item.data, true
}

// Set stores a value with the default TTL.
func (c *TTLCache[T]) Set(key string, data T) {
	c.SetWithTTL(key, data, c.defaultTTL)
}

// SetWithTTL stores a value that expires ttl after now.
func (c *TTLCache[T]) SetWithTTL(key string, data T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	item := &cacheItem[T]{
		key:       key,
		data:      data,
		createdAt: c.now(),
		ttl:       ttl,
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxSize {
		c.evictOldest(evictCount(c.maxSize))
	}

	c.items[key] = c.order.PushFront(item)
}

func evictCount(maxSize int) int {
	n := int(float64(maxSize) * evictFraction)
	if n < 1 {
		n = 1
	}
	return n
}

func (c *TTLCache[T]) evictOldest(n int) {
	for i := 0; i < n; i++ {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.removeElement(oldest)
		c.evictions++
	}
}

// Delete removes a key from the cache
func (c *TTLCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// Clear drops every entry. Counters are kept.
func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *TTLCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.order.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *TTLCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var toRemove []*list.Element

	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*cacheItem[T]).expiredAt(now) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	c.expired += uint64(len(toRemove))

	return len(toRemove)
}

// Size returns the current number of items in the cache, expired or not.
func (c *TTLCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Size      int    `json:"size"`
	MaxSize   int    `json:"maxSize"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Expired   uint64 `json:"expired"`
}

func (c *TTLCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      len(c.items),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
}
