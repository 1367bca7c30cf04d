// Package kdtree implements a k-dimensional binary search tree over caller
// defined points. Points are read through an Accessor on an ordered list of
// dimension keys and compared with a caller supplied Metric.
//
// A Tree is not safe for concurrent mutation. Concurrent Nearest calls are
// fine as long as no Insert or Remove runs at the same time.
package kdtree

import (
	"github.com/ar90n/kdtree/collection"
	"github.com/cockroachdb/errors"
)

type Node[P any] struct {
	data      P
	dimension int
	left      *Node[P]
	right     *Node[P]
	parent    *Node[P]
}

func (n *Node[P]) Data() P {
	return n.data
}

func (n *Node[P]) Dimension() int {
	return n.dimension
}

func (n *Node[P]) Left() *Node[P] {
	return n.left
}

func (n *Node[P]) Right() *Node[P] {
	return n.right
}

func (n *Node[P]) Parent() *Node[P] {
	return n.parent
}

func (n *Node[P]) IsLeaf() bool {
	return n.left == nil && n.right == nil
}

type Tree[P any, K comparable] struct {
	root     *Node[P]
	size     int
	dims     []K
	metric   Metric[P]
	accessor Accessor[P, K]
}

// New returns an empty tree.
func New[P any, K comparable](metric Metric[P], accessor Accessor[P, K], dims []K) (*Tree[P, K], error) {
	if len(dims) == 0 {
		return nil, ErrNoDimensions
	}
	if metric == nil {
		return nil, ErrNilMetric
	}
	if accessor == nil {
		return nil, ErrNilAccessor
	}

	return &Tree[P, K]{
		dims:     append([]K{}, dims...),
		metric:   metric,
		accessor: accessor,
	}, nil
}

// Build bulk loads points into a balanced tree. points is copied and left in
// its original order.
func Build[P any, K comparable](points []P, metric Metric[P], accessor Accessor[P, K], dims []K) (*Tree[P, K], error) {
	t, err := New(metric, accessor, dims)
	if err != nil {
		return nil, err
	}

	root, err := t.buildTree(points)
	if err != nil {
		return nil, err
	}
	t.root = root
	t.size = len(points)
	return t, nil
}

type buildTask[P any] struct {
	node  *Node[P]
	items []P
}

// buildTree splits every range at its median along the node's dimension.
// Values equal to the median are moved right of it so that the left subtree
// only holds strictly smaller values.
func (t *Tree[P, K]) buildTree(points []P) (*Node[P], error) {
	if len(points) == 0 {
		return nil, nil
	}

	items := make([]P, len(points))
	copy(items, points)

	root := &Node[P]{}
	queue := []buildTask[P]{{node: root, items: items}}
	for 0 < len(queue) {
		task := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		node, items := task.node, task.items
		if len(items) == 1 {
			node.data = items[0]
			continue
		}

		key := t.dims[node.dimension]
		value := func(p P) float64 {
			return t.accessor.Get(p, key)
		}

		median := len(items) / 2
		pivot, err := collection.SelectKth(items, median, value)
		if err != nil {
			return nil, errors.Wrap(err, "select median")
		}
		pivotValue := value(pivot)
		mid := collection.Partition(items[:median], func(p P) bool {
			return pivotValue <= value(p)
		})
		items[mid], items[median] = items[median], items[mid]
		node.data = items[mid]

		next := (node.dimension + 1) % len(t.dims)
		if mid+1 < len(items) {
			node.right = &Node[P]{dimension: next, parent: node}
			queue = append(queue, buildTask[P]{node: node.right, items: items[mid+1:]})
		}
		if 0 < mid {
			node.left = &Node[P]{dimension: next, parent: node}
			queue = append(queue, buildTask[P]{node: node.left, items: items[:mid]})
		}
	}

	return root, nil
}

// NodeGraph is the parent free form of a tree used to dump and restore it.
type NodeGraph[P any] struct {
	Data      P             `json:"data"`
	Dimension int           `json:"dimension"`
	Left      *NodeGraph[P] `json:"left"`
	Right     *NodeGraph[P] `json:"right"`
}

type restoreTask[P any] struct {
	src  *NodeGraph[P]
	node *Node[P]
}

// Restore rebuilds a tree from a node graph, linking every node to its
// parent. The graph is copied, so later changes to it do not affect the tree.
// A graph that reaches any node twice is rejected with ErrInvalidSnapshot.
func Restore[P any, K comparable](graph *NodeGraph[P], metric Metric[P], accessor Accessor[P, K], dims []K) (*Tree[P, K], error) {
	t, err := New(metric, accessor, dims)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return t, nil
	}

	root := &Node[P]{}
	seen := map[*NodeGraph[P]]struct{}{}
	queue := []restoreTask[P]{{src: graph, node: root}}
	for 0 < len(queue) {
		task := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		src, node := task.src, task.node
		if _, ok := seen[src]; ok {
			return nil, errors.Wrap(ErrInvalidSnapshot, "node graph is not a tree")
		}
		seen[src] = struct{}{}
		if src.Dimension < 0 || len(t.dims) <= src.Dimension {
			return nil, errors.Wrapf(ErrInvalidDimension, "dimension %d with %d keys", src.Dimension, len(t.dims))
		}
		node.data = src.Data
		node.dimension = src.Dimension

		if src.Left != nil {
			node.left = &Node[P]{parent: node}
			queue = append(queue, restoreTask[P]{src: src.Left, node: node.left})
		}
		if src.Right != nil {
			node.right = &Node[P]{parent: node}
			queue = append(queue, restoreTask[P]{src: src.Right, node: node.right})
		}
	}

	t.root = root
	t.size = len(seen)
	return t, nil
}

type serializeTask[P any] struct {
	node *Node[P]
	dst  *NodeGraph[P]
}

// Serialize copies the node structure without parent links. Point values are
// shared with the tree; the tree itself never modifies a point it holds.
func (t *Tree[P, K]) Serialize() *NodeGraph[P] {
	if t.root == nil {
		return nil
	}

	graph := &NodeGraph[P]{}
	queue := []serializeTask[P]{{node: t.root, dst: graph}}
	for 0 < len(queue) {
		task := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		node, dst := task.node, task.dst
		dst.Data = node.data
		dst.Dimension = node.dimension
		if node.left != nil {
			dst.Left = &NodeGraph[P]{}
			queue = append(queue, serializeTask[P]{node: node.left, dst: dst.Left})
		}
		if node.right != nil {
			dst.Right = &NodeGraph[P]{}
			queue = append(queue, serializeTask[P]{node: node.right, dst: dst.Right})
		}
	}

	return graph
}

func (t *Tree[P, K]) Root() *Node[P] {
	return t.root
}

func (t *Tree[P, K]) Dimensions() []K {
	return append([]K{}, t.dims...)
}

func (t *Tree[P, K]) Metric() Metric[P] {
	return t.metric
}

func (t *Tree[P, K]) Accessor() Accessor[P, K] {
	return t.accessor
}

func (t *Tree[P, K]) value(p P, dimension int) float64 {
	return t.accessor.Get(p, t.dims[dimension])
}
