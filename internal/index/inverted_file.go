package index

import (
	"fmt"
	"math"
	"sync"

	pkgerrors "mifile/pkg/errors"
)

// InvertedFile maps every reference object to its posting list and owns the
// arena of indexed objects that postings point into.
//
// Each posting list carries its own lock, so inserts touching different
// reference objects proceed in parallel. The arena lock only guards the
// append that assigns an object its ID.
type InvertedFile[T any] struct {
	mu          sync.RWMutex
	objects     []T
	lists       []*PostingList
	maxPosition int
}

func newInvertedFile[T any](numRefs, maxPosition int) *InvertedFile[T] {
	lists := make([]*PostingList, numRefs)
	for i := range lists {
		lists[i] = newPostingList(maxPosition)
	}
	return &InvertedFile[T]{lists: lists, maxPosition: maxPosition}
}

// insert stores object and records one posting per entry of its projection,
// at the entry's rank. A projection that cannot be posted in full is
// rejected before the object gets an ID.
func (f *InvertedFile[T]) insert(object T, projection []RankedReference) (uint32, error) {
	if len(projection) > f.maxPosition {
		return 0, fmt.Errorf("%w: projection of %d entries exceeds %d positions", pkgerrors.ErrInvalidPosition, len(projection), f.maxPosition)
	}
	for _, entry := range projection {
		if entry.Ref < 0 || entry.Ref >= len(f.lists) {
			return 0, fmt.Errorf("%w: reference %d outside [0, %d)", pkgerrors.ErrInvalidPosition, entry.Ref, len(f.lists))
		}
	}

	f.mu.Lock()
	if uint64(len(f.objects)) >= math.MaxUint32 {
		f.mu.Unlock()
		return 0, fmt.Errorf("inverted file is full: %d objects", len(f.objects))
	}
	id := uint32(len(f.objects))
	f.objects = append(f.objects, object)
	f.mu.Unlock()

	for pos, entry := range projection {
		if err := f.lists[entry.Ref].Insert(pos, id); err != nil {
			return id, err
		}
	}
	return id, nil
}

// postingList returns the live list of a reference object.
func (f *InvertedFile[T]) postingList(ref int) *PostingList {
	return f.lists[ref]
}

// object returns the object stored under id.
func (f *InvertedFile[T]) object(id uint32) T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.objects[id]
}

// numObjects returns the number of stored objects.
func (f *InvertedFile[T]) numObjects() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.objects)
}
