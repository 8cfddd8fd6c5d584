package index

import (
	"container/heap"
	"sort"

	"mifile/internal/metric"
)

// RankedReference is one entry of a ranked projection: a reference object
// identified by its index in the reference set, and its distance.
type RankedReference struct {
	Ref      int
	Distance float64
}

// worseThan orders projection entries by (distance, reference index).
// Equidistant reference objects never compare equal, so none is dropped.
func (r RankedReference) worseThan(o RankedReference) bool {
	if r.Distance != o.Distance {
		return r.Distance > o.Distance
	}
	return r.Ref > o.Ref
}

// projectionHeap is a max-heap whose top is the worst kept entry.
type projectionHeap []RankedReference

func (h projectionHeap) Len() int           { return len(h) }
func (h projectionHeap) Less(i, j int) bool { return h[i].worseThan(h[j]) }
func (h projectionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *projectionHeap) Push(x any) { *h = append(*h, x.(RankedReference)) }

func (h *projectionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// projector ranks reference objects by their distance to an object.
type projector[T any] struct {
	metric metric.Metric[T]
	refs   []T
}

// kNearest returns the min(k, len(refs)) reference objects closest to
// object, ascending. It evaluates len(refs) distances and keeps at most k
// entries, O(len(refs) log k).
func (p *projector[T]) kNearest(object T, k int) []RankedReference {
	if k > len(p.refs) {
		k = len(p.refs)
	}
	if k <= 0 {
		return nil
	}

	h := make(projectionHeap, 0, k)
	for i, ref := range p.refs {
		entry := RankedReference{Ref: i, Distance: p.metric.Distance(object, ref)}
		if h.Len() < k {
			heap.Push(&h, entry)
			continue
		}
		if h[0].worseThan(entry) {
			h[0] = entry
			heap.Fix(&h, 0)
		}
	}

	ranked := []RankedReference(h)
	sort.Slice(ranked, func(i, j int) bool { return ranked[j].worseThan(ranked[i]) })
	return ranked
}
