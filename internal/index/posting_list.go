package index

import (
	"errors"
	"fmt"
	"sync"

	pkgerrors "mifile/pkg/errors"
)

var errReadOnlySnapshot = errors.New("posting list snapshot is read-only")

// Posting records that object ID ranked the owning reference object at
// Position when it was indexed.
type Posting struct {
	ID       uint32
	Position int
}

// PostingList holds the postings of one reference object bucketed by
// position. Positions are valid in [0, maxPosition).
//
// A live list is mutated only by Insert. SubRange returns a snapshot that
// shares no memory with the live list and is never mutated afterwards, so
// a query can scan it while inserts continue.
type PostingList struct {
	mu          sync.RWMutex
	buckets     [][]Posting
	maxPosition int
	count       int
	snapshot    bool
}

func newPostingList(maxPosition int) *PostingList {
	return &PostingList{
		buckets:     make([][]Posting, maxPosition),
		maxPosition: maxPosition,
	}
}

// Insert appends a posting to the bucket of position.
func (l *PostingList) Insert(position int, id uint32) error {
	if l.snapshot {
		return errReadOnlySnapshot
	}
	if position < 0 || position >= l.maxPosition {
		return fmt.Errorf("%w: position %d outside [0, %d)", pkgerrors.ErrInvalidPosition, position, l.maxPosition)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buckets[position] == nil {
		l.buckets[position] = make([]Posting, 0, 4)
	}
	l.buckets[position] = append(l.buckets[position], Posting{ID: id, Position: position})
	l.count++
	return nil
}

// SubRange copies every posting whose position lies in [from, to] into an
// immutable snapshot. The range is clipped to the valid positions.
func (l *PostingList) SubRange(from, to int) *PostingList {
	if from < 0 {
		from = 0
	}
	if to > l.maxPosition-1 {
		to = l.maxPosition - 1
	}

	snap := &PostingList{
		buckets:     make([][]Posting, l.maxPosition),
		maxPosition: l.maxPosition,
		snapshot:    true,
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for pos := from; pos <= to; pos++ {
		if len(l.buckets[pos]) == 0 {
			continue
		}
		snap.buckets[pos] = append([]Posting(nil), l.buckets[pos]...)
		snap.count += len(l.buckets[pos])
	}
	return snap
}

// AllEntries returns every posting ordered by position, then insertion.
func (l *PostingList) AllEntries() []Posting {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Posting, 0, l.count)
	for _, bucket := range l.buckets {
		entries = append(entries, bucket...)
	}
	return entries
}

// Len returns the number of postings.
func (l *PostingList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}
