package plot

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/ar90n/kdtree"
	"github.com/ar90n/kdtree/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, points [][]float64, dims []int) *kdtree.Tree[[]float64, int] {
	t.Helper()
	tree, err := kdtree.Build[[]float64, int](points, metric.Euclidean[float64], kdtree.SliceAccessor[float64]{}, dims)
	require.NoError(t, err)
	return tree
}

func TestRenderPartition(t *testing.T) {
	tree := buildTree(t, [][]float64{{2, 3}, {5, 4}, {9, 6}, {4, 7}, {8, 1}, {7, 2}}, []int{0, 1})

	opts := DefaultOptions()
	opts.Width, opts.Height = 120, 80

	var buf bytes.Buffer
	require.NoError(t, RenderPartition(&buf, tree, opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestRenderPartitionEdgeCases(t *testing.T) {
	var buf bytes.Buffer

	empty := buildTree(t, nil, []int{0, 1})
	require.NoError(t, RenderPartition(&buf, empty, DefaultOptions()))

	buf.Reset()
	single := buildTree(t, [][]float64{{1, 1}}, []int{0, 1})
	require.NoError(t, RenderPartition(&buf, single, DefaultOptions()))

	line := buildTree(t, [][]float64{{1}, {2}}, []int{0})
	assert.ErrorIs(t, RenderPartition(&buf, line, DefaultOptions()), ErrNotPlanar)

	opts := DefaultOptions()
	opts.Width = 0
	assert.Error(t, RenderPartition(&buf, single, opts))
}
