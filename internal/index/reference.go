package index

import (
	"fmt"
	"math/rand/v2"

	pkgerrors "mifile/pkg/errors"
)

// SelectReferenceObjects draws n distinct elements of corpus uniformly at
// random. The same seed always selects the same elements. corpus is not
// modified.
func SelectReferenceObjects[T any](corpus []T, n int, seed uint64) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d reference objects requested", pkgerrors.ErrInvalidConfig, n)
	}
	if n > len(corpus) {
		return nil, fmt.Errorf("%w: %d requested from %d", pkgerrors.ErrNotEnoughObjects, n, len(corpus))
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	order := make([]int, len(corpus))
	for i := range order {
		order[i] = i
	}
	// partial Fisher-Yates: the first n slots end up uniformly sampled
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(order)-i)
		order[i], order[j] = order[j], order[i]
	}

	refs := make([]T, n)
	for i := range refs {
		refs[i] = corpus[order[i]]
	}
	return refs, nil
}
