package filter

import (
	"math"
	"sync"

	"github.com/twmb/murmur3"
)

// BloomFilter is an incrementally built bloom filter safe for concurrent use.
// Bit positions come from double hashing the two halves of murmur3's
// 128-bit sum.
type BloomFilter struct {
	mu     sync.RWMutex
	m      int // len of bitmap in bits
	k      int // probes per key
	bitmap []uint64
	keys   int
}

const (
	DefaultBloomFilterM = 1 << 16
	DefaultExpectedKeys = 4096
)

// NewBloomFilter creates a filter of m bits tuned for expectedKeys insertions.
// Non-positive arguments fall back to the defaults.
func NewBloomFilter(m, expectedKeys int) *BloomFilter {
	if m <= 0 {
		m = DefaultBloomFilterM
	}
	if expectedKeys <= 0 {
		expectedKeys = DefaultExpectedKeys
	}
	return &BloomFilter{
		m:      m,
		k:      bestK(m, expectedKeys),
		bitmap: make([]uint64, (m+63)/64),
	}
}

// bestK returns m/n*ln2 clamped to [1, 30]
func bestK(m, n int) int {
	k := int(math.Round(float64(m) / float64(n) * math.Ln2))
	if k < 1 {
		return 1
	}
	if k > 30 {
		return 30
	}
	return k
}

func (b *BloomFilter) Add(key []byte) {
	h1, h2 := murmur3.Sum128(key)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < b.k; i++ {
		bit := (h1 + uint64(i)*h2) % uint64(b.m)
		b.bitmap[bit/64] |= 1 << (bit % 64)
	}
	b.keys++
}

func (b *BloomFilter) MayContain(key []byte) bool {
	h1, h2 := murmur3.Sum128(key)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := 0; i < b.k; i++ {
		bit := (h1 + uint64(i)*h2) % uint64(b.m)
		if b.bitmap[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// GetBestK returns the number of probes per key.
func (b *BloomFilter) GetBestK() int {
	return b.k
}

func (b *BloomFilter) KeyLen() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.keys
}

func (b *BloomFilter) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.bitmap)
	b.keys = 0
}
