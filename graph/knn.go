package graph

import (
	"context"

	"github.com/ar90n/kdtree"
	"github.com/cockroachdb/errors"
)

var ErrInvalidFeatureDim = errors.New("invalid feature dim")

// item carries a feature's position in the input next to its coordinates so
// that neighbors can be reported by index.
type item struct {
	Index   uint
	Feature []float64
}

type itemAccessor struct{}

func (itemAccessor) Get(p item, key int) float64 {
	return p.Feature[key]
}

func (itemAccessor) With(p item, key int, v float64) item {
	feature := make([]float64, len(p.Feature))
	copy(feature, p.Feature)
	feature[key] = v
	return item{Index: p.Index, Feature: feature}
}

type KnnGraphBuilder struct {
	k             uint
	radius        float64
	maxGoroutines uint
}

func NewKnnGraphBuilder() *KnnGraphBuilder {
	const defaultK = 15
	return &KnnGraphBuilder{k: defaultK}
}

func (kgb *KnnGraphBuilder) SetK(k uint) *KnnGraphBuilder {
	kgb.k = k
	return kgb
}

// SetRadius drops neighbors at or beyond radius. Zero means unbounded.
func (kgb *KnnGraphBuilder) SetRadius(radius float64) *KnnGraphBuilder {
	kgb.radius = radius
	return kgb
}

func (kgb *KnnGraphBuilder) SetMaxGoroutines(maxGoroutines uint) *KnnGraphBuilder {
	kgb.maxGoroutines = maxGoroutines
	return kgb
}

// Build links every feature to its k nearest other features, closest first.
func (kgb *KnnGraphBuilder) Build(ctx context.Context, features [][]float64, metric func(lhs, rhs []float64) float64) (Graph, error) {
	if len(features) == 0 {
		return Graph{}, nil
	}

	dim := len(features[0])
	items := make([]item, len(features))
	dims := make([]int, dim)
	for i := range dims {
		dims[i] = i
	}
	for i, feature := range features {
		if len(feature) != dim {
			return Graph{}, errors.Wrapf(ErrInvalidFeatureDim, "feature %d has %d values, want %d", i, len(feature), dim)
		}
		items[i] = item{Index: uint(i), Feature: feature}
	}

	distance := func(lhs, rhs item) float64 {
		return metric(lhs.Feature, rhs.Feature)
	}
	tree, err := kdtree.Build[item, int](items, distance, itemAccessor{}, dims)
	if err != nil {
		return Graph{}, err
	}

	// every point finds itself, so ask for one more than k
	maxResults := len(items)
	if kgb.k < uint(len(items)) {
		maxResults = int(kgb.k) + 1
	}
	results, err := tree.NearestBatch(ctx, items, maxResults, kgb.radius, kgb.maxGoroutines)
	if err != nil {
		return Graph{}, err
	}

	nodes := make([]Node, len(items))
	for i, candidates := range results {
		neighbors := make([]uint, 0, kgb.k)
		for _, c := range candidates {
			if c.Item.Index == uint(i) || uint(len(neighbors)) == kgb.k {
				continue
			}
			neighbors = append(neighbors, c.Item.Index)
		}
		nodes[i].Neighbors = neighbors
	}

	return Graph{Nodes: nodes}, nil
}
