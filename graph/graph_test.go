package graph

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/ar90n/kdtree"
	"github.com/ar90n/kdtree/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConvertToUndirected(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{Neighbors: []uint{1, 2, 3}},
			{Neighbors: []uint{0, 2}},
			{Neighbors: []uint{0, 1, 3}},
			{Neighbors: []uint{0, 4}},
			{Neighbors: []uint{2, 5, 6}},
			{Neighbors: []uint{}},
			{Neighbors: []uint{3, 4, 5}},
		},
	}

	g = ConvertToUndirected(g)

	for i := range g.Nodes {
		for _, j := range g.Nodes[i].Neighbors {
			found := false
			for _, k := range g.Nodes[j].Neighbors {
				if k == uint(i) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("node %d is not neighbor of node %d", i, j)
			}
		}
	}
	assert.Equal(t, []uint{2, 4, 6}, g.Nodes[5].Neighbors)
}

func bruteForceNeighbors(features [][]float64, i int, k int) []uint {
	others := make([]uint, 0, len(features)-1)
	for j := range features {
		if j != i {
			others = append(others, uint(j))
		}
	}
	sort.SliceStable(others, func(a, b int) bool {
		return metric.SqEuclidean(features[i], features[others[a]]) < metric.SqEuclidean(features[i], features[others[b]])
	})
	if k < len(others) {
		others = others[:k]
	}
	return others
}

func TestKnnGraphBuilder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	features := make([][]float64, 200)
	for i := range features {
		features[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64()}
	}

	const k = 5
	g, err := NewKnnGraphBuilder().SetK(k).SetMaxGoroutines(4).Build(context.Background(), features, metric.SqEuclidean[float64])
	require.NoError(t, err)
	require.Len(t, g.Nodes, len(features))

	for i, node := range g.Nodes {
		assert.Equal(t, bruteForceNeighbors(features, i, k), node.Neighbors, "node %d", i)
	}
}

func TestKnnGraphBuilderSmallInput(t *testing.T) {
	features := [][]float64{{0, 0}, {1, 0}, {5, 0}}

	g, err := NewKnnGraphBuilder().SetK(10).Build(context.Background(), features, metric.Euclidean[float64])
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, g.Nodes[0].Neighbors)
	assert.Equal(t, []uint{0, 2}, g.Nodes[1].Neighbors)
	assert.Equal(t, []uint{1, 0}, g.Nodes[2].Neighbors)

	g, err = NewKnnGraphBuilder().SetK(10).SetRadius(2).Build(context.Background(), features, metric.Euclidean[float64])
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, g.Nodes[0].Neighbors)
	assert.Empty(t, g.Nodes[2].Neighbors)
}

func TestKnnGraphBuilderErrors(t *testing.T) {
	g, err := NewKnnGraphBuilder().Build(context.Background(), nil, metric.Euclidean[float64])
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)

	_, err = NewKnnGraphBuilder().Build(context.Background(), [][]float64{{0, 0}, {1}}, metric.Euclidean[float64])
	assert.ErrorIs(t, err, ErrInvalidFeatureDim)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewKnnGraphBuilder().Build(ctx, [][]float64{{0, 0}, {1, 1}}, metric.Euclidean[float64])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDOT(t *testing.T) {
	g := Graph{Nodes: []Node{{Neighbors: []uint{1}}, {Neighbors: []uint{0, 2}}, {}}}

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, g))
	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "n0 -> n1")
	assert.Contains(t, out, "n1 -> n2")

	var discard bytes.Buffer
	assert.Error(t, WriteDOT(&discard, Graph{Nodes: []Node{{Neighbors: []uint{3}}}}))
}

func TestWriteTreeDOT(t *testing.T) {
	points := [][]float64{{1, 1}, {2, 5}, {7, 3}}
	tree, err := kdtree.Build[[]float64, int](points, metric.Euclidean[float64], kdtree.SliceAccessor[float64]{}, []int{0, 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	label := func(p []float64) string { return fmt.Sprintf("%g_%g", p[0], p[1]) }
	require.NoError(t, WriteTreeDOT(&buf, tree, label))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "->"))
	for _, p := range points {
		assert.Contains(t, out, label(p))
	}
}
