package filter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBloomFilter(t *testing.T) {
	tests := []struct {
		name     string
		m        int
		expected int
	}{
		{"default size", 0, DefaultBloomFilterM},
		{"custom size", 2048, 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := NewBloomFilter(tt.m, 0)
			assert.Equal(t, tt.expected, bf.m)
			assert.Len(t, bf.bitmap, (tt.expected+63)/64)
		})
	}
}

func TestBloomFilter_NoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(1<<14, 1000)

	for i := 0; i < 1000; i++ {
		bf.Add([]byte(fmt.Sprintf("key-%d", i)))
	}
	for i := 0; i < 1000; i++ {
		assert.True(t, bf.MayContain([]byte(fmt.Sprintf("key-%d", i))), "key-%d", i)
	}
	assert.Equal(t, 1000, bf.KeyLen())
}

func TestBloomFilter_FalsePositiveRate(t *testing.T) {
	bf := NewBloomFilter(1<<14, 1000)
	for i := 0; i < 1000; i++ {
		bf.Add([]byte(fmt.Sprintf("in-%d", i)))
	}

	falsePositives := 0
	for i := 0; i < 10000; i++ {
		if bf.MayContain([]byte(fmt.Sprintf("out-%d", i))) {
			falsePositives++
		}
	}
	// ~16 bits per key gives well under 1%
	assert.Less(t, falsePositives, 200)
}

func TestBloomFilter_GetBestK(t *testing.T) {
	assert.Equal(t, 1, NewBloomFilter(64, 1000).GetBestK())
	assert.Equal(t, 11, NewBloomFilter(1<<14, 1000).GetBestK())
	assert.Equal(t, 30, NewBloomFilter(1<<20, 10).GetBestK())
}

func TestBloomFilter_Reset(t *testing.T) {
	bf := NewBloomFilter(1024, 16)

	testKeys := [][]byte{
		[]byte("key1"),
		[]byte("key2"),
	}
	for _, key := range testKeys {
		bf.Add(key)
	}
	assert.Equal(t, 2, bf.KeyLen())

	bf.Reset()

	assert.Equal(t, 0, bf.KeyLen())
	for _, key := range testKeys {
		assert.False(t, bf.MayContain(key), "key %s after reset", key)
	}
}

func TestBloomFilter_Concurrent(t *testing.T) {
	var f Filter = NewBloomFilter(1<<12, 256)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 64; i++ {
				key := []byte(fmt.Sprintf("%d/%d", w, i))
				f.Add(key)
				f.MayContain(key)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 256, f.KeyLen())
	for w := 0; w < 4; w++ {
		for i := 0; i < 64; i++ {
			assert.True(t, f.MayContain([]byte(fmt.Sprintf("%d/%d", w, i))))
		}
	}
}
