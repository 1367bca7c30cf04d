package collection

import (
	"container/heap"
	"math"

	"github.com/ar90n/kdtree/number"
)

type WithPriority[T any] struct {
	Item     T
	Priority float64
}

// boundedHeap keeps the largest priority on top so the worst retained
// candidate is the one evicted first.
type boundedHeap[T any] []WithPriority[T]

func (bh boundedHeap[T]) Len() int { return len(bh) }

func (bh boundedHeap[T]) Less(i, j int) bool {
	return bh[j].Priority < bh[i].Priority
}

func (bh boundedHeap[T]) Swap(i, j int) {
	bh[i], bh[j] = bh[j], bh[i]
}

func (bh *boundedHeap[T]) Push(x interface{}) {
	*bh = append(*bh, x.(WithPriority[T]))
}

func (bh *boundedHeap[T]) Pop() interface{} {
	old := *bh
	n := len(old)
	item := old[n-1]
	old[n-1] = WithPriority[T]{} // avoid memory leak
	*bh = old[0 : n-1]
	return item
}

// preallocated bounds the storage reserved up front; larger queues grow on
// demand.
const preallocated = 1024

// BoundedQueue retains at most Cap items with the smallest priorities seen.
type BoundedQueue[T comparable] struct {
	heap     boundedHeap[T]
	capacity int
}

func NewBoundedQueue[T comparable](capacity int) *BoundedQueue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &BoundedQueue[T]{
		heap:     make(boundedHeap[T], 0, number.Min(capacity, preallocated)),
		capacity: capacity,
	}
}

// Push offers item to the queue and reports whether it was retained. Once the
// queue is full an item is only retained if it beats the current worst one,
// which is then evicted.
func (bq *BoundedQueue[T]) Push(item T, priority float64) bool {
	if bq.capacity == 0 {
		return false
	}

	entry := WithPriority[T]{
		Item:     item,
		Priority: priority,
	}
	if len(bq.heap) < bq.capacity {
		heap.Push(&bq.heap, entry)
		return true
	}

	if bq.heap[0].Priority <= priority {
		return false
	}
	bq.heap[0] = entry
	heap.Fix(&bq.heap, 0)
	return true
}

// Peek returns the worst retained item without removing it.
func (bq *BoundedQueue[T]) Peek() (ret WithPriority[T], _ error) {
	if len(bq.heap) == 0 {
		return ret, ErrEmptyQueue
	}
	return bq.heap[0], nil
}

// Pop removes and returns the worst retained item.
func (bq *BoundedQueue[T]) Pop() (ret WithPriority[T], _ error) {
	if len(bq.heap) == 0 {
		return ret, ErrEmptyQueue
	}
	return heap.Pop(&bq.heap).(WithPriority[T]), nil
}

// Remove deletes the first retained entry holding item.
func (bq *BoundedQueue[T]) Remove(item T) error {
	for i := range bq.heap {
		if bq.heap[i].Item == item {
			heap.Remove(&bq.heap, i)
			return nil
		}
	}
	return ErrItemNotFound
}

// WorstPriority is +Inf while the queue is empty.
func (bq *BoundedQueue[T]) WorstPriority() float64 {
	if len(bq.heap) == 0 {
		return math.Inf(1)
	}
	return bq.heap[0].Priority
}

func (bq *BoundedQueue[T]) Len() int {
	return len(bq.heap)
}

func (bq *BoundedQueue[T]) Cap() int {
	return bq.capacity
}

func (bq *BoundedQueue[T]) Full() bool {
	return bq.capacity <= len(bq.heap)
}

// Drain empties the queue and returns its items in ascending priority.
func (bq *BoundedQueue[T]) Drain() []WithPriority[T] {
	items := make([]WithPriority[T], len(bq.heap))
	for i := len(items) - 1; 0 <= i; i-- {
		items[i] = heap.Pop(&bq.heap).(WithPriority[T])
	}
	return items
}
