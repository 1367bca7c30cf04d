package kdtree

import (
	"github.com/cockroachdb/errors"
)

// findNode descends from the root towards the side p belongs to on every
// split and stops where that side is empty. It returns the last node visited
// and the deepest visited node whose coordinates all equal p's. Any stored
// point equal to p lies on this path.
func (t *Tree[P, K]) findNode(p P) (last *Node[P], match *Node[P]) {
	node := t.root
	for node != nil {
		last = node
		if t.equal(p, node.data) {
			match = node
		}

		if t.less(p, node.data, node.dimension) {
			node = node.left
		} else {
			node = node.right
		}
	}
	return last, match
}

func (t *Tree[P, K]) less(p, q P, dimension int) bool {
	return t.value(p, dimension) < t.value(q, dimension)
}

func (t *Tree[P, K]) equal(p, q P) bool {
	for i := range t.dims {
		if t.value(p, i) != t.value(q, i) {
			return false
		}
	}
	return true
}

// Contains reports whether a point with p's coordinates is stored.
func (t *Tree[P, K]) Contains(p P) bool {
	_, match := t.findNode(p)
	return match != nil
}

// Insert adds p below the node where its search path ends. The tree is not
// rebalanced.
func (t *Tree[P, K]) Insert(p P) *Node[P] {
	t.size++
	if t.root == nil {
		t.root = &Node[P]{data: p}
		return t.root
	}

	parent, _ := t.findNode(p)
	node := &Node[P]{
		data:      p,
		dimension: (parent.dimension + 1) % len(t.dims),
		parent:    parent,
	}
	if t.less(p, parent.data, parent.dimension) {
		parent.left = node
	} else {
		parent.right = node
	}
	return node
}

// Remove deletes one stored point whose coordinates equal p's and returns p.
// Removing a point that is not stored is a no-op.
func (t *Tree[P, K]) Remove(p P) (P, error) {
	if t.root == nil {
		return p, ErrEmptyTree
	}

	_, node := t.findNode(p)
	if node == nil {
		return p, nil
	}
	if err := t.removeNode(node); err != nil {
		return p, err
	}
	t.size--
	return p, nil
}

// findMin returns the node holding the smallest value along dimension in
// the subtree rooted at node.
func (t *Tree[P, K]) findMin(node *Node[P], dimension int) *Node[P] {
	if node == nil {
		return nil
	}

	if node.dimension == dimension {
		if node.left != nil {
			return t.findMin(node.left, dimension)
		}
		return node
	}

	best := node
	if left := t.findMin(node.left, dimension); left != nil && t.less(left.data, best.data, dimension) {
		best = left
	}
	if right := t.findMin(node.right, dimension); right != nil && t.less(right.data, best.data, dimension) {
		best = right
	}
	return best
}

type removalStep[P any] struct {
	node    *Node[P]
	next    *Node[P]
	promote bool
}

// removeNode replaces node's point by the minimum of its right subtree along
// node's dimension and then removes that minimum in turn, until a leaf is
// reached and unlinked. Without a right subtree the minimum is taken from the
// left one, which then becomes the right subtree. All replacements are
// planned before the tree is touched.
func (t *Tree[P, K]) removeNode(node *Node[P]) error {
	var steps []removalStep[P]
	for !node.IsLeaf() {
		step := removalStep[P]{node: node}
		if node.right != nil {
			step.next = t.findMin(node.right, node.dimension)
		} else {
			step.next = t.findMin(node.left, node.dimension)
			step.promote = true
		}
		if step.next == nil {
			return errors.AssertionFailedf("no replacement below inner node on dimension %d", node.dimension)
		}

		steps = append(steps, step)
		node = step.next
	}

	parent := node.parent
	if parent != nil && parent.left != node && parent.right != node {
		return errors.Wrap(ErrInvariantViolation, "leaf is not a child of its parent")
	}

	for _, step := range steps {
		step.node.data = step.next.data
		if step.promote {
			step.node.right, step.node.left = step.node.left, nil
		}
	}

	switch {
	case parent == nil:
		t.root = nil
	case parent.left == node:
		parent.left = nil
	default:
		parent.right = nil
	}
	node.parent = nil
	return nil
}
