// Package inmemcache provides a process-local LocalCache, the default
// backend for development and tests.
package inmemcache

import (
	"sync"

	"github.com/trezcool/shule/core/store"
)

type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ store.LocalCache = (*Cache)(nil)

func New() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.entries[key]
	return raw, ok
}

func (c *Cache) Set(key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(val))
	copy(cp, val)
	c.entries[key] = cp
	return nil
}

func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
