package graph

import (
	"sync/atomic"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/transforms"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of transformed modules kept between builds
const DefaultCacheSize = 4096

// CacheKey identifies one transform of one file version
type CacheKey struct {
	Path     string
	Query    string
	Rule     int
	Checksum uint64
}

// CacheEntry is a transformed module with the assets it emitted
type CacheEntry struct {
	Source string
	Assets []transforms.EmittedAsset
}

// Cache keeps transformed modules so unchanged files are not transformed
// again on rebuild. It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[CacheKey, CacheEntry]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache creates a cache holding up to size modules
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[CacheKey, CacheEntry](size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create transform cache")
	}
	return &Cache{entries: entries}, nil
}

// Get returns the entry for key
func (c *Cache) Get(key CacheKey) (CacheEntry, bool) {
	entry, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return entry, ok
}

// Put stores the entry for key
func (c *Cache) Put(key CacheKey, entry CacheEntry) {
	c.entries.Add(key, entry)
}

// Len returns the number of cached modules
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counts since the cache was created
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.entries.Purge()
}
