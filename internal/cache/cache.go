// ABOUTME: TTL'd LRU cache of serialized topic-list responses
// ABOUTME: Keyed by canonical query string, purged wholesale on topic writes

package cache

import (
	"fmt"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ListCache holds marshaled JSON bodies for GET /topics responses so
// repeated identical queries skip the database. Entries expire after the
// configured TTL; any topic write purges everything, so staleness is
// bounded by the TTL only for reads racing a write.
type ListCache struct {
	entries *lru.LRU[string, []byte]
}

// New creates a cache holding up to size entries for at most ttl each.
func New(size int, ttl time.Duration) *ListCache {
	return &ListCache{
		entries: lru.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Key canonicalizes list-query parameters so equivalent requests share an
// entry regardless of parameter order.
func Key(course, title string, page, size int, sort string, desc bool) string {
	v := url.Values{}
	v.Set("course", course)
	v.Set("title", title)
	v.Set("page", fmt.Sprint(page))
	v.Set("size", fmt.Sprint(size))
	v.Set("sort", sort)
	v.Set("desc", fmt.Sprint(desc))
	return v.Encode()
}

// Get returns the cached body for key, if present and unexpired.
func (c *ListCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

// Add stores a body under key.
func (c *ListCache) Add(key string, body []byte) {
	if c == nil {
		return
	}
	c.entries.Add(key, body)
}

// Purge drops every entry. Called after any topic create/update/delete.
func (c *ListCache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

// Len returns the current entry count.
func (c *ListCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
