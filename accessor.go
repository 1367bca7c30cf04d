package kdtree

import (
	"github.com/ar90n/kdtree/number"
)

// Accessor reads and rewrites the indexed coordinates of a point. The tree
// never looks at a point other than through its Accessor.
type Accessor[P any, K comparable] interface {
	Get(p P, key K) float64
	// With returns a copy of p whose coordinate at key is v. p itself must
	// not be modified.
	With(p P, key K, v float64) P
}

// Metric is the distance between two points. Nearest neighbor pruning is
// only exact when moving one coordinate away from another point never makes
// the distance shrink.
type Metric[P any] func(lhs, rhs P) float64

// SliceAccessor indexes points stored as coordinate slices; keys are slice
// indices.
type SliceAccessor[T number.Number] struct{}

var _ Accessor[[]float64, int] = SliceAccessor[float64]{}

func (SliceAccessor[T]) Get(p []T, key int) float64 {
	return float64(p[key])
}

func (SliceAccessor[T]) With(p []T, key int, v float64) []T {
	q := make([]T, len(p))
	copy(q, p)
	q[key] = T(v)
	return q
}

// MapAccessor indexes points stored as records of named fields.
type MapAccessor[T number.Number] struct{}

var _ Accessor[map[string]float64, string] = MapAccessor[float64]{}

func (MapAccessor[T]) Get(p map[string]T, key string) float64 {
	return float64(p[key])
}

func (MapAccessor[T]) With(p map[string]T, key string, v float64) map[string]T {
	q := make(map[string]T, len(p))
	for k, x := range p {
		q[k] = x
	}
	q[key] = T(v)
	return q
}
