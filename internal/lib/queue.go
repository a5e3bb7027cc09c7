package lib

// Queue is a FIFO used by the breadth-first traversals. It is not thread-safe and
// should be held as a pointer.
type Queue[T any] struct {
	items []T
	head  int
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, capacity)}
}

func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue pops from the front of the queue, ok is false when the queue is empty.
func (q *Queue[T]) Dequeue() (item T, ok bool) {
	if q.head >= len(q.items) {
		return item, false
	}
	item = q.items[q.head]
	q.head++
	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return item, true
}

func (q *Queue[T]) Size() int {
	return len(q.items) - q.head
}

// Reset empties the queue while keeping its capacity.
func (q *Queue[T]) Reset() {
	q.items = q.items[:0]
	q.head = 0
}
