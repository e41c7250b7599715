// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package itembank

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds loaded banks keyed by directory. Entries are loaded lazily,
// concurrent loads of the same directory share one read, and an entry is
// replaced when the manifest version on disk changes.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Bank
	group   singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Bank)}
}

// Get returns the bank in dir, loading and validating it on first use or
// after a version bump.
func (c *Cache) Get(dir string) (*Bank, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	b, ok := c.entries[dir]
	c.mu.RUnlock()
	if ok && b.Version() == m.Version {
		return b, nil
	}

	v, err, _ := c.group.Do(dir+"@"+m.Version, func() (any, error) {
		raw, err := Load(dir)
		if err != nil {
			return nil, err
		}
		nb, err := New(raw)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[dir] = nb
		c.mu.Unlock()
		return nb, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bank), nil
}

// Invalidate drops the cached bank for dir.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	delete(c.entries, dir)
	c.mu.Unlock()
}

// Len returns the number of cached banks.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
