// Package plot draws the cells of a two dimensional tree.
package plot

import (
	"io"
	"math"

	"github.com/ar90n/kdtree"
	"github.com/ar90n/kdtree/number"
	"github.com/cockroachdb/errors"
	"github.com/fogleman/gg"
)

var ErrNotPlanar = errors.New("tree is not two dimensional")

type Options struct {
	Width  int
	Height int
	// Margin is the blank border in pixels around the bounding box.
	Margin     float64
	PointSize  float64
	SplitWidth float64
}

func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     800,
		Margin:     16,
		PointSize:  3,
		SplitWidth: 1,
	}
}

type bounds struct {
	min [2]float64
	max [2]float64
}

type cellTask[P any] struct {
	node *kdtree.Node[P]
	cell bounds
}

type canvas struct {
	dc     *gg.Context
	box    bounds
	scale  [2]float64
	margin float64
	height float64
}

func newCanvas(box bounds, opts Options) *canvas {
	c := &canvas{
		dc:     gg.NewContext(opts.Width, opts.Height),
		box:    box,
		margin: opts.Margin,
		height: float64(opts.Height),
	}
	for i := 0; i < 2; i++ {
		extent := box.max[i] - box.min[i]
		if extent == 0 {
			extent = 1
		}
		size := float64(opts.Width)
		if i == 1 {
			size = float64(opts.Height)
		}
		c.scale[i] = (size - 2*opts.Margin) / extent
	}
	return c
}

// project maps tree coordinates to pixels with the y axis pointing up.
func (c *canvas) project(x, y float64) (float64, float64) {
	px := c.margin + (x-c.box.min[0])*c.scale[0]
	py := c.height - c.margin - (y-c.box.min[1])*c.scale[1]
	return px, py
}

// RenderPartition writes a PNG showing every stored point and the split line
// each node draws across its cell. Left cells are below or left of the
// line.
func RenderPartition[P any, K comparable](w io.Writer, tree *kdtree.Tree[P, K], opts Options) error {
	dims := tree.Dimensions()
	if len(dims) != 2 {
		return errors.Wrapf(ErrNotPlanar, "got %d dimensions", len(dims))
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.Newf("invalid image size %dx%d", opts.Width, opts.Height)
	}

	accessor := tree.Accessor()
	coord := func(p P, i int) float64 {
		return accessor.Get(p, dims[i])
	}

	box := bounds{
		min: [2]float64{math.Inf(1), math.Inf(1)},
		max: [2]float64{math.Inf(-1), math.Inf(-1)},
	}
	tree.Walk(func(node *kdtree.Node[P], _ int) bool {
		for i := 0; i < 2; i++ {
			v := coord(node.Data(), i)
			box.min[i] = number.Min(box.min[i], v)
			box.max[i] = number.Max(box.max[i], v)
		}
		return true
	})
	if tree.Root() == nil {
		box = bounds{max: [2]float64{1, 1}}
	}

	c := newCanvas(box, opts)
	c.dc.SetRGB(1, 1, 1)
	c.dc.Clear()

	c.dc.SetRGB(0.6, 0.6, 0.6)
	c.dc.SetLineWidth(opts.SplitWidth)
	if root := tree.Root(); root != nil {
		queue := []cellTask[P]{{node: root, cell: box}}
		for 0 < len(queue) {
			task := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			node, cell := task.node, task.cell
			d := node.Dimension()
			v := coord(node.Data(), d)
			if d == 0 {
				x1, y1 := c.project(v, cell.min[1])
				x2, y2 := c.project(v, cell.max[1])
				c.dc.DrawLine(x1, y1, x2, y2)
			} else {
				x1, y1 := c.project(cell.min[0], v)
				x2, y2 := c.project(cell.max[0], v)
				c.dc.DrawLine(x1, y1, x2, y2)
			}
			c.dc.Stroke()

			if node.Left() != nil {
				left := cell
				left.max[d] = v
				queue = append(queue, cellTask[P]{node: node.Left(), cell: left})
			}
			if node.Right() != nil {
				right := cell
				right.min[d] = v
				queue = append(queue, cellTask[P]{node: node.Right(), cell: right})
			}
		}
	}

	c.dc.SetRGB(0.8, 0.1, 0.1)
	tree.Walk(func(node *kdtree.Node[P], _ int) bool {
		x, y := c.project(coord(node.Data(), 0), coord(node.Data(), 1))
		c.dc.DrawCircle(x, y, opts.PointSize)
		c.dc.Fill()
		return true
	})

	return c.dc.EncodePNG(w)
}
