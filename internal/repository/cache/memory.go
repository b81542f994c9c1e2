package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key      TileCacheKey
	value    TileCacheValue
	storedAt time.Time
}

// MemoryCache is a bounded in-memory LRU cache of raw tile bytes with a lazy
// TTL: expiry is only checked on Get, there is no background sweeper.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[TileCacheKey]*list.Element
	lruList *list.List
}

var _ TileCache = (*MemoryCache)(nil)

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[TileCacheKey]*list.Element),
		lruList: list.New(),
	}
}

func (c *MemoryCache) Get(key TileCacheKey) (TileCacheValue, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}

	ent := elem.Value.(*entry)
	if c.ttl > 0 && time.Since(ent.storedAt) > c.ttl {
		delete(c.items, key)
		c.lruList.Remove(elem)
		return nil, false, nil
	}

	c.lruList.MoveToFront(elem)
	return ent.value, true, nil
}

func (c *MemoryCache) Set(key TileCacheKey, value TileCacheValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Refreshing an existing key must never evict another entry.
	if elem, ok := c.items[key]; ok {
		delete(c.items, key)
		c.lruList.Remove(elem)
	}

	if c.lruList.Len() >= c.maxSize {
		oldest := c.lruList.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(*entry).key)
			c.lruList.Remove(oldest)
		}
	}

	ent := &entry{key: key, value: value, storedAt: time.Now()}
	c.items[key] = c.lruList.PushFront(ent)

	return nil
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
	}
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[TileCacheKey]*list.Element)
	c.lruList = list.New()
}
