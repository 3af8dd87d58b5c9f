package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture name to a decoded image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error // load failure, remembered so the file is not retried every frame
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	if index == nil {
		index = NewIndex()
	}
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if the name is
// unknown or the file failed to decode.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	img, _ := c.Load(texName)
	return img
}

// Load is Resolve with the load error exposed. Unknown names return
// (nil, nil).
func (c *Cache) Load(texName string) (*image.NRGBA, error) {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil, nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.img, entry.err
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
