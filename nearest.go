package kdtree

import (
	"math"

	"github.com/ar90n/kdtree/collection"
	"github.com/ar90n/kdtree/number"
)

type Candidate[P any] struct {
	Item     P
	Distance float64
}

// Nearest returns up to maxResults stored points closest to q in ascending
// distance. A positive maxDistance only admits points strictly closer than
// it.
func (t *Tree[P, K]) Nearest(q P, maxResults int, maxDistance float64) ([]Candidate[P], error) {
	if maxResults < 1 {
		return nil, ErrInvalidMaxResults
	}
	if maxDistance < 0 || math.IsNaN(maxDistance) {
		return nil, ErrInvalidMaxDistance
	}

	// No more than Len points can ever be retained.
	capacity := number.Min(maxResults, t.size)
	if capacity == 0 {
		return []Candidate[P]{}, nil
	}

	// nil entries are placeholders that shrink the search radius to
	// maxDistance before any point is found.
	best := collection.NewBoundedQueue[*Node[P]](capacity)
	if 0 < maxDistance {
		for i := 0; i < capacity; i++ {
			best.Push(nil, maxDistance)
		}
	}

	t.nearestSearch(t.root, q, best)

	items := best.Drain()
	results := make([]Candidate[P], 0, len(items))
	for _, item := range items {
		if item.Item == nil {
			continue
		}
		results = append(results, Candidate[P]{
			Item:     item.Item.data,
			Distance: item.Priority,
		})
	}
	return results, nil
}

func (t *Tree[P, K]) nearestSearch(node *Node[P], q P, best *collection.BoundedQueue[*Node[P]]) {
	ownDistance := t.metric(q, node.data)
	if node.IsLeaf() {
		admit(best, node, ownDistance)
		return
	}

	near, far := node.left, node.right
	switch {
	case node.right == nil:
		far = nil
	case node.left == nil:
		near, far = node.right, nil
	case !t.less(q, node.data, node.dimension):
		near, far = node.right, node.left
	}

	t.nearestSearch(near, q, best)
	admit(best, node, ownDistance)

	if far == nil {
		return
	}
	if !best.Full() || math.Abs(t.linearDistance(q, node)) < best.WorstPriority() {
		t.nearestSearch(far, q, best)
	}
}

// linearDistance is the distance from node's point to its projection onto
// q's position along node's split dimension. No point across the split plane
// can be closer to q than that.
func (t *Tree[P, K]) linearDistance(q P, node *Node[P]) float64 {
	key := t.dims[node.dimension]
	projected := t.accessor.With(node.data, key, t.accessor.Get(q, key))
	return t.metric(projected, node.data)
}

func admit[P any](best *collection.BoundedQueue[*Node[P]], node *Node[P], distance float64) {
	if !best.Full() || distance < best.WorstPriority() {
		best.Push(node, distance)
	}
}
