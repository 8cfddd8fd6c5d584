// Package metric defines the distance contract consumed by the indexes and a
// few concrete metrics for points and dense vectors.
package metric

import (
	"math"
	"sync/atomic"
)

// Metric computes a distance between two objects. Implementations must be
// symmetric, non-negative, zero iff the objects are equal and satisfy the
// triangle inequality. They must be safe for concurrent use.
type Metric[T any] interface {
	Distance(a, b T) float64
}

// MetricFunc adapts a plain function to Metric.
type MetricFunc[T any] func(a, b T) float64

// Distance calls f(a, b).
func (f MetricFunc[T]) Distance(a, b T) float64 {
	return f(a, b)
}

// Counting wraps a metric and counts how many distances were evaluated.
type Counting[T any] struct {
	inner Metric[T]
	calls atomic.Int64
}

func NewCounting[T any](inner Metric[T]) *Counting[T] {
	return &Counting[T]{inner: inner}
}

func (c *Counting[T]) Distance(a, b T) float64 {
	c.calls.Add(1)
	return c.inner.Distance(a, b)
}

// Calls returns the number of evaluations so far.
func (c *Counting[T]) Calls() int64 {
	return c.calls.Load()
}

// Reset sets the evaluation counter back to zero.
func (c *Counting[T]) Reset() {
	c.calls.Store(0)
}

// Euclidean is the L2 distance between points of equal dimension.
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// SpaceType names a distance over float32 vectors
type SpaceType string

const (
	L2Space        SpaceType = "l2"
	ManhattanSpace SpaceType = "manhattan"
	CosSpace       SpaceType = "cos"
	HammingSpace   SpaceType = "hamming"
)

// ForSpace returns the vector metric for a space, or false if unknown.
func ForSpace(space SpaceType) (Metric[[]float32], bool) {
	switch space {
	case L2Space, "":
		return MetricFunc[[]float32](L2), true
	case ManhattanSpace:
		return MetricFunc[[]float32](Manhattan), true
	case CosSpace:
		return MetricFunc[[]float32](Angular), true
	case HammingSpace:
		return MetricFunc[[]float32](Hamming), true
	default:
		return nil, false
	}
}

// L2 is the Euclidean distance between float32 vectors.
func L2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i] - b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Manhattan is the L1 distance between float32 vectors.
func Manhattan(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i] - b[i]))
	}
	return sum
}

// Angular is the angle between two vectors normalised to [0, 1]. Unlike
// 1 - cos it satisfies the triangle inequality on non-zero vectors.
func Angular(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		if na == nb {
			return 0
		}
		return 1.0 // maximal distance
	}
	cos := dot / math.Sqrt(na*nb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) / math.Pi
}

// Hamming counts the positions where the vectors differ.
func Hamming(a, b []float32) float64 {
	var hamming float64
	for i := range a {
		if a[i] != b[i] {
			hamming++
		}
	}
	return hamming
}
