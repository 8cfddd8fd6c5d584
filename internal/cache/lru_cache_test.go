package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_Basic(t *testing.T) {
	cache := NewLRUCache[[]string](2)

	// Test Set and Get
	cache.Set(1, []string{"doc1", "doc2"})
	value, exists := cache.Get(1)
	assert.True(t, exists)
	assert.Equal(t, []string{"doc1", "doc2"}, value)

	// Test non-existent key
	_, exists = cache.Get(42)
	assert.False(t, exists)

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestLRUCache_Capacity(t *testing.T) {
	cache := NewLRUCache[string](2)

	cache.Set(1, "value1")
	cache.Set(2, "value2")

	// Add one more item, should evict key 1
	cache.Set(3, "value3")
	assert.Equal(t, 2, cache.Len())

	_, exists := cache.Get(1)
	assert.False(t, exists)

	value, exists := cache.Get(2)
	assert.True(t, exists)
	assert.Equal(t, "value2", value)

	value, exists = cache.Get(3)
	assert.True(t, exists)
	assert.Equal(t, "value3", value)
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	cache := NewLRUCache[string](2)
	cache.Set(1, "value1")
	cache.Set(1, "newvalue1")

	value, exists := cache.Get(1)
	assert.True(t, exists)
	assert.Equal(t, "newvalue1", value)
	assert.Equal(t, 1, cache.Len())
}

func TestLRUCache_LRUOrder(t *testing.T) {
	cache := NewLRUCache[string](2)
	cache.Set(1, "value1")
	cache.Set(2, "value2")

	// Access key 1, making it most recently used
	cache.Get(1)

	// Add new item, should evict key 2 instead of key 1
	cache.Set(3, "value3")

	value, exists := cache.Get(1)
	assert.True(t, exists)
	assert.Equal(t, "value1", value)

	_, exists = cache.Get(2)
	assert.False(t, exists)
}

func TestLRUCache_ZeroSizeStoresNothing(t *testing.T) {
	cache := NewLRUCache[int](0)
	cache.Set(1, 1)
	_, exists := cache.Get(1)
	assert.False(t, exists)
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCache_Purge(t *testing.T) {
	cache := NewLRUCache[int](4)
	for i := 0; i < 4; i++ {
		cache.Set(uint64(i), i)
	}
	cache.Purge()
	assert.Equal(t, 0, cache.Len())
	_, exists := cache.Get(0)
	assert.False(t, exists)

	cache.Set(9, 9)
	assert.Equal(t, 1, cache.Len())
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRUCache[int](64)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := uint64(w*1000 + i%100)
				cache.Set(key, i)
				cache.Get(key)
			}
		}(w)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Len(), 64)
}

func TestSearchKey(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	base := SearchKey("docs", 10, 5, false, vec)

	assert.Equal(t, base, SearchKey("docs", 10, 5, false, []float32{0.1, 0.2, 0.3}))
	assert.NotEqual(t, base, SearchKey("docs", 11, 5, false, vec))
	assert.NotEqual(t, base, SearchKey("docs", 10, 6, false, vec))
	assert.NotEqual(t, base, SearchKey("other", 10, 5, false, vec))
	assert.NotEqual(t, base, SearchKey("docs", 10, 5, false, []float32{0.1, 0.2, 0.4}))
	assert.NotEqual(t, base, SearchKey("docs", 10, 5, true, vec))
}
