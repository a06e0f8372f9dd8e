package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU of feed bodies, so a
// location read twice in one run is downloaded once.
type CachedFetcher struct {
	inner   domain.Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator holding up to maxEntries feeds.
func NewCachedFetcher(inner domain.Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Fetch implements domain.Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if body, ok := c.cache.get(location); ok {
		c.observe("hit")
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	c.observe("miss")

	rc, err := c.inner.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, location, err)
	}
	// Only complete bodies are cached; failures above are retried on the next call.
	c.cache.put(location, body)
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (c *CachedFetcher) observe(result string) {
	if c.metrics != nil {
		c.metrics.FeedCache.WithLabelValues(result).Inc()
	}
}

// lruCache is a small thread-safe LRU of feed bodies keyed by location.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []byte
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
