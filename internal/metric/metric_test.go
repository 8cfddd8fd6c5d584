package metric

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEuclidean(t *testing.T) {
	assert.Equal(t, 5.0, Euclidean([]float64{0, 0}, []float64{3, 4}))
	assert.Equal(t, 0.0, Euclidean([]float64{1, 1}, []float64{1, 1}))
	assert.Equal(t, Euclidean([]float64{1, 2}, []float64{4, 6}), Euclidean([]float64{4, 6}, []float64{1, 2}))
}

func TestVectorMetrics(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	c := []float32{-1, 0, 0}

	tests := []struct {
		name string
		fn   func(a, b []float32) float64
		ab   float64
		ac   float64
	}{
		{"l2", L2, math.Sqrt2, 2},
		{"manhattan", Manhattan, 2, 2},
		{"angular", Angular, 0.5, 1},
		{"hamming", Hamming, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.ab, tt.fn(a, b), 1e-9)
			assert.InDelta(t, tt.ac, tt.fn(a, c), 1e-9)
			assert.Equal(t, 0.0, tt.fn(a, a))
			assert.InDelta(t, tt.fn(a, b), tt.fn(b, a), 1e-12)
		})
	}
}

func TestAngularZeroVectors(t *testing.T) {
	zero := []float32{0, 0}
	assert.Equal(t, 0.0, Angular(zero, zero))
	assert.Equal(t, 1.0, Angular(zero, []float32{1, 0}))
}

func TestForSpace(t *testing.T) {
	for _, space := range []SpaceType{"", L2Space, ManhattanSpace, CosSpace, HammingSpace} {
		m, ok := ForSpace(space)
		assert.True(t, ok, "space %q", space)
		assert.Equal(t, 0.0, m.Distance([]float32{1, 2}, []float32{1, 2}))
	}
	_, ok := ForSpace("ip")
	assert.False(t, ok)
}

func TestCounting(t *testing.T) {
	c := NewCounting[[]float64](MetricFunc[[]float64](Euclidean))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				c.Distance([]float64{0}, []float64{float64(j)})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), c.Calls())
	c.Reset()
	assert.Equal(t, int64(0), c.Calls())
}
