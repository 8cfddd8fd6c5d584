package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mifile/internal/filter"
	"mifile/internal/metric"
	pkgerrors "mifile/pkg/errors"
	"mifile/pkg/logger"
)

// Option configures an MIFile at construction.
type Option[T any] func(*MIFile[T])

// WithMaxPosDiff limits the rank disagreement scanned per pivot. Defaults to ki.
func WithMaxPosDiff[T any](d int) Option[T] {
	return func(m *MIFile[T]) { m.maxPosDiff = d }
}

// WithAmplification keeps n*a candidates before true-distance re-ranking.
func WithAmplification[T any](a int) Option[T] {
	return func(m *MIFile[T]) { m.amplification = a }
}

// WithEqual replaces the equality used by Contains (default: distance zero).
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(m *MIFile[T]) { m.equal = eq }
}

// WithKeyFunc enables a bloom filter over key(object) so Contains can answer
// false without running a query.
func WithKeyFunc[T any](key func(T) []byte) Option[T] {
	return func(m *MIFile[T]) { m.key = key }
}

// WithBuildWorkers bounds the goroutines AddBatch uses for projections.
func WithBuildWorkers[T any](n int) Option[T] {
	return func(m *MIFile[T]) { m.workers = n }
}

// MIFile is an approximate k-NN index over any metric space. Objects are
// represented by the ranks of their closest reference objects, stored in an
// inverted file, and queried by a footrule-style comparison of rankings.
// Only surviving candidates have their true distance evaluated.
//
// Add and NearestN may be called concurrently.
type MIFile[T any] struct {
	metric    metric.Metric[T]
	projector *projector[T]
	inverted  *InvertedFile[T]

	ki, ks        int
	maxPosDiff    int
	amplification int
	workers       int

	equal func(a, b T) bool
	key   func(T) []byte
	bloom filter.Filter

	size atomic.Int64
	log  *zap.SugaredLogger
}

var _ NeighbourIndex[[]float64] = (*MIFile[[]float64])(nil)

// New creates an MI-File over refs. ki reference objects represent each
// indexed object and ks represent each query; both must be smaller than
// len(refs). refs is owned by the index afterwards and must not be mutated.
func New[T any](m metric.Metric[T], refs []T, ki, ks int, opts ...Option[T]) (*MIFile[T], error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil metric", pkgerrors.ErrInvalidConfig)
	}
	if len(refs) == 0 {
		return nil, pkgerrors.ErrNoReferenceObjects
	}
	if ki < 1 || ki >= len(refs) {
		return nil, fmt.Errorf("%w: ki=%d must be in [1, %d)", pkgerrors.ErrInvalidConfig, ki, len(refs))
	}
	if ks < 1 || ks >= len(refs) {
		return nil, fmt.Errorf("%w: ks=%d must be in [1, %d)", pkgerrors.ErrInvalidConfig, ks, len(refs))
	}

	idx := &MIFile[T]{
		metric:        m,
		projector:     &projector[T]{metric: m, refs: refs},
		inverted:      newInvertedFile[T](len(refs), ki),
		ki:            ki,
		ks:            ks,
		maxPosDiff:    ki,
		amplification: DEFAULT_AMPLIFICATION,
		workers:       DEFAULT_BUILD_WORKERS,
		log:           logger.Named("mifile"),
	}
	for _, opt := range opts {
		opt(idx)
	}

	if idx.maxPosDiff < 0 || idx.maxPosDiff > ki {
		return nil, fmt.Errorf("%w: max position difference %d must be in [0, %d]", pkgerrors.ErrInvalidConfig, idx.maxPosDiff, ki)
	}
	if idx.amplification < 1 {
		return nil, fmt.Errorf("%w: amplification %d must be positive", pkgerrors.ErrInvalidConfig, idx.amplification)
	}
	if idx.workers < 1 {
		idx.workers = runtime.GOMAXPROCS(0)
	}
	if idx.equal == nil {
		idx.equal = func(a, b T) bool { return m.Distance(a, b) == 0 }
	}
	if idx.key != nil {
		idx.bloom = filter.NewBloomFilter(DEFAULT_BLOOM_BITS, DEFAULT_BLOOM_KEYS)
	}

	idx.log.Debugw("index created",
		"references", len(refs), "ki", ki, "ks", ks,
		"maxPosDiff", idx.maxPosDiff, "amplification", idx.amplification)
	return idx, nil
}

// Add indexes object. Equal objects may be added any number of times and
// each addition creates its own postings.
func (m *MIFile[T]) Add(object T) error {
	return m.insert(object, m.projector.kNearest(object, m.ki))
}

func (m *MIFile[T]) insert(object T, projection []RankedReference) error {
	if _, err := m.inverted.insert(object, projection); err != nil {
		m.log.Errorw("insert failed", "error", err)
		return err
	}
	if m.bloom != nil {
		m.bloom.Add(m.key(object))
	}
	m.size.Add(1)
	return nil
}

// AddBatch indexes objects in order. Projections are computed in parallel,
// inserts keep the input order so IDs match a sequence of Add calls.
func (m *MIFile[T]) AddBatch(ctx context.Context, objects []T) error {
	if len(objects) == 0 {
		return nil
	}

	projections := make([][]RankedReference, len(objects))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i := range objects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			projections[i] = m.projector.kNearest(objects[i], m.ki)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, object := range objects {
		if err := m.insert(object, projections[i]); err != nil {
			return fmt.Errorf("add batch item %d: %w", i, err)
		}
	}
	m.log.Infow("batch indexed", "objects", len(objects), "size", m.Size())
	return nil
}

// NearestN returns at most n indexed objects ascending by true distance to
// query. The answer is approximate: the true nearest objects may be missing.
func (m *MIFile[T]) NearestN(query T, n int) ([]Result[T], error) {
	results, _, err := m.NearestNWithStats(query, n)
	return results, err
}

// NearestNWithStats is NearestN that also reports the work it did.
func (m *MIFile[T]) NearestNWithStats(query T, n int) ([]Result[T], QueryStats, error) {
	var stats QueryStats
	if n <= 0 {
		return nil, stats, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidN, n)
	}

	queryProjection := m.projector.kNearest(query, m.ks)
	stats.Pivots = len(queryProjection)
	stats.DistanceEvaluations = len(m.projector.refs)

	candidates := NewCandidateSet(n*m.amplification, m.ki, len(queryProjection))
	for pos, pivot := range queryProjection {
		from, to := pos-m.maxPosDiff, min(pos+m.maxPosDiff, m.ki)
		window := m.inverted.postingList(pivot.Ref).SubRange(from, to)
		for _, p := range window.AllEntries() {
			stats.PostingsRead++
			if p.Position < from || p.Position > to {
				err := fmt.Errorf("%w: posting at %d outside window [%d, %d]", pkgerrors.ErrInvalidPosition, p.Position, from, to)
				m.log.Errorw("corrupt posting window", "error", err)
				return nil, stats, err
			}
			if err := candidates.Offer(p.ID, pos, p.Position); err != nil {
				m.log.Errorw("candidate update failed", "error", err)
				return nil, stats, err
			}
		}
	}
	stats.Candidates = candidates.Seen()
	stats.Pruned = candidates.Pruned()

	survivors := candidates.Results()
	stats.Survivors = len(survivors)
	stats.DistanceEvaluations += len(survivors)

	results := make([]Result[T], len(survivors))
	for i, s := range survivors {
		object := m.inverted.object(s.ID)
		results[i] = Result[T]{Object: object, Distance: m.metric.Distance(query, object), ID: s.ID}
	}
	sortResults(results)
	if len(results) > n {
		results = results[:n]
	}
	return results, stats, nil
}

// Contains reports whether an object equal to query was indexed. It checks
// the n_ro best candidates only, so a positive answer is certain and a
// negative one is approximate unless a key function was configured.
func (m *MIFile[T]) Contains(query T) (bool, error) {
	if m.bloom != nil && !m.bloom.MayContain(m.key(query)) {
		return false, nil
	}
	results, err := m.NearestN(query, len(m.projector.refs))
	if err != nil {
		return false, err
	}
	for _, r := range results {
		if m.equal(r.Object, query) {
			return true, nil
		}
	}
	return false, nil
}

// Size returns the number of objects added.
func (m *MIFile[T]) Size() int {
	return int(m.size.Load())
}

// MaxPosDiff returns the rank disagreement scanned per pivot.
func (m *MIFile[T]) MaxPosDiff() int {
	return m.maxPosDiff
}

// ReferenceObjects returns the reference set. Callers must not modify it.
func (m *MIFile[T]) ReferenceObjects() []T {
	return m.projector.refs
}

// KNearestReferenceObjects returns the ranked projection of object on its
// k closest reference objects.
func (m *MIFile[T]) KNearestReferenceObjects(object T, k int) []RankedReference {
	return m.projector.kNearest(object, k)
}

// sortResults orders results by (distance, id).
func sortResults[T any](results []Result[T]) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
}
