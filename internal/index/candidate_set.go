package index

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	pkgerrors "mifile/pkg/errors"
)

// combine folds the disagreement observed for one pivot into a running
// footrule score. The prior score charged this pivot the full penalty, which
// is replaced by the observed increment.
func combine(prior, increment, penalty int) int {
	return prior - penalty + increment
}

// candidate is the query-scoped record of one data object.
type candidate struct {
	id        uint32
	score     int
	lastPivot int
	heapIndex int // position in the best-n heap, -1 when not tracked
}

// better orders candidates by (score, id) ascending.
func (c *candidate) better(o *candidate) bool {
	if c.score != o.score {
		return c.score < o.score
	}
	return c.id < o.id
}

// bestHeap is a max-heap on (score, id); its top is the current worst
// tracked candidate.
type bestHeap []*candidate

func (h bestHeap) Len() int           { return len(h) }
func (h bestHeap) Less(i, j int) bool { return h[j].better(h[i]) }

func (h bestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *bestHeap) Push(x any) {
	c := x.(*candidate)
	c.heapIndex = len(*h)
	*h = append(*h, c)
}

func (h *bestHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.heapIndex = -1
	*h = old[:n-1]
	return c
}

// CandidateSet accumulates posting evidence for one query and keeps the
// capacity best candidates by approximate score.
//
// Every candidate starts at pivots*penalty: each query pivot is assumed to be
// missing from its projection. Evidence for a pivot replaces that penalty by
// the observed rank disagreement, so scores only decrease. A candidate whose
// score could not reach the current threshold even if every remaining pivot
// matched exactly is pruned; its score stays in the side table.
type CandidateSet struct {
	capacity int
	penalty  int
	pivots   int

	records map[uint32]*candidate
	best    bestHeap
	pruned  *roaring.Bitmap
}

// NewCandidateSet creates an accumulator keeping capacity candidates for a
// query projection of pivots entries. penalty is the disagreement charged for
// a pivot absent from a candidate's projection and bounds every increment.
func NewCandidateSet(capacity, penalty, pivots int) *CandidateSet {
	return &CandidateSet{
		capacity: capacity,
		penalty:  penalty,
		pivots:   pivots,
		records:  make(map[uint32]*candidate),
		best:     make(bestHeap, 0, capacity+1),
		pruned:   roaring.New(),
	}
}

func (s *CandidateSet) full() bool {
	return len(s.best) >= s.capacity
}

// Threshold returns the score of the worst tracked candidate once the set is
// full, and false before that.
func (s *CandidateSet) Threshold() (int, bool) {
	if !s.full() || len(s.best) == 0 {
		return 0, false
	}
	return s.best[0].score, true
}

// Offer records that object id holds indexPosition in the posting list of the
// pivot at query rank pivot. Pivots must be offered in ascending order.
func (s *CandidateSet) Offer(id uint32, pivot, indexPosition int) error {
	if indexPosition < 0 || indexPosition >= s.penalty {
		return fmt.Errorf("%w: index position %d outside [0, %d)", pkgerrors.ErrInvalidPosition, indexPosition, s.penalty)
	}
	if pivot < 0 || pivot >= s.pivots {
		return fmt.Errorf("%w: pivot %d outside [0, %d)", pkgerrors.ErrInvalidPosition, pivot, s.pivots)
	}
	increment := indexPosition - pivot
	if increment < 0 {
		increment = -increment
	}
	if increment > s.penalty {
		return fmt.Errorf("%w: disagreement %d exceeds penalty %d", pkgerrors.ErrInvalidPosition, increment, s.penalty)
	}

	c, seen := s.records[id]
	if !seen {
		c = &candidate{id: id, score: s.pivots * s.penalty, lastPivot: -1, heapIndex: -1}
		s.records[id] = c
	} else if c.lastPivot == pivot {
		return fmt.Errorf("%w: object %d at pivot %d", pkgerrors.ErrDuplicateEvidence, id, pivot)
	}
	c.lastPivot = pivot
	c.score = combine(c.score, increment, s.penalty)

	if c.heapIndex >= 0 {
		heap.Fix(&s.best, c.heapIndex)
		return nil
	}

	remaining := s.pivots - (pivot + 1)
	minPossible := c.score - s.penalty*remaining
	if threshold, ok := s.Threshold(); ok && minPossible > threshold {
		s.pruned.Add(id)
		return nil
	}
	s.pruned.Remove(id)

	if !s.full() {
		heap.Push(&s.best, c)
		return nil
	}
	if worst := s.best[0]; c.better(worst) {
		heap.Pop(&s.best)
		heap.Push(&s.best, c)
	}
	return nil
}

// Score returns the running score of a candidate from the side table.
func (s *CandidateSet) Score(id uint32) (int, bool) {
	c, ok := s.records[id]
	if !ok {
		return 0, false
	}
	return c.score, true
}

// Tracked reports whether id is currently among the best candidates.
func (s *CandidateSet) Tracked(id uint32) bool {
	c, ok := s.records[id]
	return ok && c.heapIndex >= 0
}

// Len returns the number of tracked candidates.
func (s *CandidateSet) Len() int {
	return len(s.best)
}

// Seen returns the number of distinct candidates that received evidence.
func (s *CandidateSet) Seen() int {
	return len(s.records)
}

// Pruned returns the number of candidates currently excluded by the bound.
func (s *CandidateSet) Pruned() int {
	return int(s.pruned.GetCardinality())
}

// Scored is a tracked candidate and its approximate score.
type Scored struct {
	ID    uint32
	Score int
}

// Results returns the tracked candidates ascending by (score, id).
func (s *CandidateSet) Results() []Scored {
	tracked := make([]*candidate, len(s.best))
	copy(tracked, s.best)
	sort.Slice(tracked, func(i, j int) bool { return tracked[i].better(tracked[j]) })

	out := make([]Scored, len(tracked))
	for i, c := range tracked {
		out[i] = Scored{ID: c.id, Score: c.score}
	}
	return out
}
