package kdtree

import (
	"math"

	"github.com/cockroachdb/errors"
)

type walkTask[P any] struct {
	node  *Node[P]
	depth int
}

// Walk visits nodes in pre-order together with their depth, the root being
// at depth 0. Returning false from fn skips the node's subtrees.
func (t *Tree[P, K]) Walk(fn func(node *Node[P], depth int) bool) {
	if t.root == nil {
		return
	}

	queue := []walkTask[P]{{node: t.root}}
	for 0 < len(queue) {
		task := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if !fn(task.node, task.depth) {
			continue
		}
		if task.node.right != nil {
			queue = append(queue, walkTask[P]{node: task.node.right, depth: task.depth + 1})
		}
		if task.node.left != nil {
			queue = append(queue, walkTask[P]{node: task.node.left, depth: task.depth + 1})
		}
	}
}

// Len is the number of stored points.
func (t *Tree[P, K]) Len() int {
	return t.size
}

// Height is the number of nodes on the longest root to leaf path.
func (t *Tree[P, K]) Height() int {
	height := 0
	t.Walk(func(_ *Node[P], depth int) bool {
		if height < depth+1 {
			height = depth + 1
		}
		return true
	})
	return height
}

// BalanceFactor is Height divided by log2(Len). It is close to 1 for a
// freshly built tree and grows as inserts and removals skew it. Trees with
// fewer than two points report 1 instead of the +Inf or NaN of the plain
// formula.
func (t *Tree[P, K]) BalanceFactor() float64 {
	count := t.Len()
	if count < 2 {
		return 1
	}
	return float64(t.Height()) / math.Log2(float64(count))
}

type checkTask[P any] struct {
	node  *Node[P]
	lower []float64
	upper []float64
}

// Check verifies parent links, the depth cycling of split dimensions, and
// that every left descendant is strictly smaller and every right descendant
// not smaller than its ancestor along the ancestor's dimension.
func (t *Tree[P, K]) Check() error {
	if t.root == nil {
		if t.size != 0 {
			return errors.Wrapf(ErrInvariantViolation, "empty tree counts %d points", t.size)
		}
		return nil
	}
	if t.root.parent != nil {
		return errors.Wrap(ErrInvariantViolation, "root has a parent")
	}

	lower := make([]float64, len(t.dims))
	upper := make([]float64, len(t.dims))
	for i := range t.dims {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}

	count := 0
	queue := []checkTask[P]{{node: t.root, lower: lower, upper: upper}}
	for 0 < len(queue) {
		task := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		count++

		node := task.node
		if node.dimension < 0 || len(t.dims) <= node.dimension {
			return errors.Wrapf(ErrInvalidDimension, "dimension %d with %d keys", node.dimension, len(t.dims))
		}
		for i := range t.dims {
			v := t.value(node.data, i)
			if v < task.lower[i] || task.upper[i] <= v {
				return errors.Wrapf(ErrInvariantViolation, "value %v on dimension %d outside [%v, %v)", v, i, task.lower[i], task.upper[i])
			}
		}

		split := t.value(node.data, node.dimension)
		for _, child := range []*Node[P]{node.left, node.right} {
			if child == nil {
				continue
			}
			if child.parent != node {
				return errors.Wrap(ErrInvariantViolation, "broken parent link")
			}
			if child.dimension != (node.dimension+1)%len(t.dims) {
				return errors.Wrapf(ErrInvariantViolation, "child of dimension %d splits on %d", node.dimension, child.dimension)
			}

			lower := append([]float64{}, task.lower...)
			upper := append([]float64{}, task.upper...)
			if child == node.left {
				upper[node.dimension] = split
			} else {
				lower[node.dimension] = split
			}
			queue = append(queue, checkTask[P]{node: child, lower: lower, upper: upper})
		}
	}

	if count != t.size {
		return errors.Wrapf(ErrInvariantViolation, "tree holds %d points but counts %d", count, t.size)
	}
	return nil
}
