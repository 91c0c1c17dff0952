package cache

import (
	"testing"

	"github.com/hupe1980/termq/resource"
	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	c := NewLRU(30, nil)

	c.Set("a", make([]byte, 10))
	c.Set("b", make([]byte, 10))
	c.Set("c", make([]byte, 10))
	assert.Equal(t, int64(30), c.Size())

	// touch a so b is the eviction candidate
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Set("d", make([]byte, 10))
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 3, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_EdgeCases(t *testing.T) {
	c := NewLRU(50, nil)

	c.Set("big", make([]byte, 60))
	_, ok := c.Get("big")
	assert.False(t, ok, "item larger than capacity is not cached")

	c.Set("k", make([]byte, 10))
	c.Set("k", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	c.Set("k", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())

	c.Invalidate("k")
	assert.Zero(t, c.Size())
	c.Invalidate("missing")
}

func TestLRU_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 25})
	c := NewLRU(100, rc)

	c.Set("a", make([]byte, 20))
	assert.Equal(t, int64(20), rc.MemoryUsage())

	// refused by the controller, not cached
	c.Set("b", make([]byte, 10))
	_, ok := c.Get("b")
	assert.False(t, ok)

	c.Purge()
	assert.Zero(t, rc.MemoryUsage())
	assert.Zero(t, c.Len())
}
