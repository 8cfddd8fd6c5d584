package index

import (
	"context"
	"fmt"
	"sync"

	"mifile/internal/metric"
	pkgerrors "mifile/pkg/errors"
)

// Flat ranks every indexed object by true distance. It answers exactly and
// costs one distance evaluation per object and query.
type Flat[T any] struct {
	mu      sync.RWMutex
	metric  metric.Metric[T]
	objects []T
}

var _ NeighbourIndex[[]float64] = (*Flat[[]float64])(nil)

// NewFlat creates an empty exact index.
func NewFlat[T any](m metric.Metric[T]) *Flat[T] {
	return &Flat[T]{metric: m}
}

// Add 添加单个对象
func (f *Flat[T]) Add(object T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, object)
	return nil
}

// AddBatch 批量添加对象
func (f *Flat[T]) AddBatch(ctx context.Context, objects []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, objects...)
	return nil
}

// NearestN 进行k近邻暴力检索
func (f *Flat[T]) NearestN(query T, n int) ([]Result[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidN, n)
	}

	f.mu.RLock()
	results := make([]Result[T], len(f.objects))
	for i, object := range f.objects {
		results[i] = Result[T]{Object: object, Distance: f.metric.Distance(query, object), ID: uint32(i)}
	}
	f.mu.RUnlock()

	sortResults(results)
	if n < len(results) {
		results = results[:n]
	}
	return results, nil
}

// Contains reports whether an object at distance zero from query was added.
func (f *Flat[T]) Contains(query T) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, object := range f.objects {
		if f.metric.Distance(query, object) == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *Flat[T]) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.objects)
}

// Objects returns a copy of the indexed objects in insertion order.
func (f *Flat[T]) Objects() []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]T(nil), f.objects...)
}
