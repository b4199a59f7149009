package llm

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of completions kept in memory.
const DefaultCacheSize = 1000

// Cache provides in-memory LRU caching of completion text by request hash.
// Re-running generation over an unchanged corpus hits the cache instead of
// re-billing identical chunk requests.
type Cache struct {
	cache *lru.Cache[string, string]
}

// NewCache creates a new completion cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, string](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which is normalized above.
		cache, _ = lru.New[string, string](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves a cached completion.
func (c *Cache) Get(hash string) (string, bool) {
	return c.cache.Get(hash)
}

// Set stores a completion with automatic LRU eviction.
func (c *Cache) Set(hash, completion string) {
	c.cache.Add(hash, completion)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}
