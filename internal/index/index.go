package index

import "context"

// Result is one neighbour returned by a query
type Result[T any] struct {
	Object   T       // the indexed object
	Distance float64 // true metric distance to the query
	ID       uint32  // insertion sequence number, breaks distance ties
}

// QueryStats describes the work done by one approximate query.
type QueryStats struct {
	Pivots              int `json:"pivots"`               // reference objects of the query projection that were scanned
	PostingsRead        int `json:"postings_read"`        // postings decoded from all windows
	Candidates          int `json:"candidates"`           // distinct objects that received evidence
	Pruned              int `json:"pruned"`               // candidates whose lower bound exceeded the threshold at the end
	Survivors           int `json:"survivors"`            // candidates re-ranked by true distance
	DistanceEvaluations int `json:"distance_evaluations"` // metric calls, projection included
}

// NeighbourIndex is implemented by the exact and the approximate index
type NeighbourIndex[T any] interface {
	// Add indexes one object; equal objects may be added repeatedly
	Add(object T) error

	// AddBatch indexes many objects, preserving their order
	AddBatch(ctx context.Context, objects []T) error

	// NearestN returns at most n objects ascending by true distance
	NearestN(query T, n int) ([]Result[T], error)

	// Contains reports whether an object equal to query was indexed
	Contains(query T) (bool, error)

	// Size returns the number of Add calls
	Size() int
}

// MapValues drops distances and returns the plain objects in result order.
func MapValues[T any](results []Result[T]) []T {
	values := make([]T, len(results))
	for i, r := range results {
		values[i] = r.Object
	}
	return values
}
