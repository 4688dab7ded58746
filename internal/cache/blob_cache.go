// Package cache provides the in-process blob cache used by the content
// delivery gateway. Entries memoize ciphertext fetched from the storage
// provider and are never authoritative.
package cache

import (
	"container/list"
	"sync"
)

type blobEntry struct {
	blobID string
	data   []byte
}

// BlobCache is a capacity-bounded LRU cache keyed by blob ID. It is safe
// for concurrent readers and writers and holds no lock shared with any
// other component.
type BlobCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

// NewBlobCache creates a cache bounded to capacity entries. A capacity
// of zero or less disables caching (every Get misses).
func NewBlobCache(capacity int) *BlobCache {
	return &BlobCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached blob and true, or nil and false on a miss.
func (c *BlobCache) Get(blobID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[blobID]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*blobEntry).data, true
}

// Put stores the blob, evicting the least recently used entry when the
// cache is full. Re-putting an existing blob ID refreshes its position.
func (c *BlobCache) Put(blobID string, data []byte) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[blobID]; ok {
		el.Value.(*blobEntry).data = data
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*blobEntry).blobID)
		}
	}

	c.entries[blobID] = c.order.PushFront(&blobEntry{blobID: blobID, data: data})
}

// Clear drops every entry.
func (c *BlobCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the number of cached blobs.
func (c *BlobCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
