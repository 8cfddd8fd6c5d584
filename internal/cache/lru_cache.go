package cache

import (
	"container/list"
	"encoding/binary"
	"math"
	"sync"

	"github.com/twmb/murmur3"
)

// entry represents a key-value pair in the cache
type entry[V any] struct {
	key   uint64
	value V
}

// LRUCache is a Least Recently Used cache safe for concurrent use.
type LRUCache[V any] struct {
	mu         sync.Mutex
	maxSize    int
	cache      map[uint64]*list.Element
	doubleList *list.List
	hits       uint64
	misses     uint64
}

// NewLRUCache creates a new LRU cache with the given maximum size.
// A non-positive size yields a cache that stores nothing.
func NewLRUCache[V any](maxSize int) *LRUCache[V] {
	return &LRUCache[V]{
		maxSize:    maxSize,
		cache:      make(map[uint64]*list.Element),
		doubleList: list.New(),
	}
}

// Set adds or updates a key-value pair in the cache
func (l *LRUCache[V]) Set(key uint64, value V) {
	if l.maxSize <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	// If key exists, update its value and move to front
	if element, exists := l.cache[key]; exists {
		l.doubleList.MoveToFront(element)
		element.Value.(*entry[V]).value = value
		return
	}

	ele := l.doubleList.PushFront(&entry[V]{key: key, value: value})
	l.cache[key] = ele

	// Remove oldest if cache is full
	if l.doubleList.Len() > l.maxSize {
		if oldest := l.doubleList.Back(); oldest != nil {
			l.removeElement(oldest)
		}
	}
}

// Get retrieves a value from the cache by key
func (l *LRUCache[V]) Get(key uint64) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	element, exists := l.cache[key]
	if !exists {
		l.misses++
		var zero V
		return zero, false
	}
	l.hits++
	l.doubleList.MoveToFront(element)
	return element.Value.(*entry[V]).value, true
}

// Purge drops every entry.
func (l *LRUCache[V]) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
	l.doubleList.Init()
}

func (l *LRUCache[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doubleList.Len()
}

// Stats returns the hit and miss counts since creation.
func (l *LRUCache[V]) Stats() (hits, misses uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits, l.misses
}

// removeElement removes an element from the cache
func (l *LRUCache[V]) removeElement(element *list.Element) {
	l.doubleList.Remove(element)
	delete(l.cache, element.Value.(*entry[V]).key)
}

// SearchKey hashes a search request. The collection size and index state are
// part of the key so a response computed before an insert or an index build
// is never served after it.
func SearchKey(collection string, size, limit int, indexBuilt bool, vector []float32) uint64 {
	h := murmur3.New64()
	var buf [8]byte

	h.Write([]byte(collection))
	binary.LittleEndian.PutUint64(buf[:], uint64(len(collection)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(size))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(limit))
	h.Write(buf[:])
	if indexBuilt {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	for _, v := range vector {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
		h.Write(buf[:4])
	}
	return h.Sum64()
}
