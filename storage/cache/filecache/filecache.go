// Package filecache persists each cache entry as one file under a data
// directory, giving the synced store a durable synchronous local cache
// across restarts.
package filecache

import (
	"encoding/base32"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/store"
)

type Cache struct {
	dir string
	mu  sync.RWMutex
}

var _ store.LocalCache = (*Cache)(nil)

func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	return &Cache{dir: dir}, nil
}

// path encodes the key so Arabic slot names and separators stay filesystem-safe.
func (c *Cache) path(key string) string {
	name := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(key))
	return filepath.Join(c.dir, name+".json")
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *Cache) Set(key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// write-then-rename keeps readers from seeing partial writes
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, val, 0o644); err != nil {
		return errors.Wrap(err, "writing cache entry")
	}
	return errors.Wrap(os.Rename(tmp, c.path(key)), "publishing cache entry")
}

func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting cache entry")
	}
	return nil
}
