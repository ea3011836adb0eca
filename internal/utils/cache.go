package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem wraps cached data with its expiry.
type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// TTLCache is a small LRU cache whose entries expire after a fixed duration.
type TTLCache[K comparable, V any] struct {
	lruCache *lru.Cache[K, cacheItem[V]]
	ttl      time.Duration
}

func NewTTLCache[K comparable, V any](size int, ttl time.Duration) (*TTLCache[K, V], error) {
	l, err := lru.New[K, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[K, V]{lruCache: l, ttl: ttl}, nil
}

func (c *TTLCache[K, V]) Set(key K, data V) {
	c.lruCache.Add(key, cacheItem[V]{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Get returns the cached value, or false if absent or expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}

	return val.data, true
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.lruCache.Remove(key)
}
