package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlobCache_PutAndGet(t *testing.T) {
	c := NewBlobCache(4)

	c.Put("blob-a", []byte("ciphertext-a"))

	got, ok := c.Get("blob-a")
	assert.True(t, ok)
	assert.Equal(t, []byte("ciphertext-a"), got)

	_, ok = c.Get("blob-b")
	assert.False(t, ok)
}

func TestBlobCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewBlobCache(2)

	c.Put("blob-a", []byte("a"))
	c.Put("blob-b", []byte("b"))

	// Touch blob-a so blob-b becomes the eviction candidate.
	_, ok := c.Get("blob-a")
	assert.True(t, ok)

	c.Put("blob-c", []byte("c"))

	_, ok = c.Get("blob-b")
	assert.False(t, ok)

	_, ok = c.Get("blob-a")
	assert.True(t, ok)
	_, ok = c.Get("blob-c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestBlobCache_RePutRefreshesEntry(t *testing.T) {
	c := NewBlobCache(2)

	c.Put("blob-a", []byte("old"))
	c.Put("blob-b", []byte("b"))
	c.Put("blob-a", []byte("new"))
	c.Put("blob-c", []byte("c"))

	got, ok := c.Get("blob-a")
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), got)

	_, ok = c.Get("blob-b")
	assert.False(t, ok)
}

func TestBlobCache_ZeroCapacityDisablesCaching(t *testing.T) {
	c := NewBlobCache(0)

	c.Put("blob-a", []byte("a"))

	_, ok := c.Get("blob-a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestBlobCache_Clear(t *testing.T) {
	c := NewBlobCache(4)

	c.Put("blob-a", []byte("a"))
	c.Put("blob-b", []byte("b"))
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("blob-a")
	assert.False(t, ok)
}

func TestBlobCache_ConcurrentAccess(t *testing.T) {
	c := NewBlobCache(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("blob-%d", (n+j)%32)
				c.Put(key, []byte(key))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
