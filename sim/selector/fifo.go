package selector

import "github.com/ef-ds/deque"

// FIFO releases items one at a time in insertion order.
type FIFO[T any] struct {
	queue *deque.Deque
}

// NewFIFO creates an empty FIFO selector.
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{queue: deque.New()}
}

// Add appends item to the back of the queue.
func (f *FIFO[T]) Add(item T) {
	f.queue.PushBack(item)
}

// Pick releases the oldest pending item as a singleton batch.
func (f *FIFO[T]) Pick() ([]T, bool) {
	v, ok := f.queue.PopFront()
	if !ok {
		return nil, false
	}
	return []T{v.(T)}, true
}

// Len returns the number of pending items.
func (f *FIFO[T]) Len() int {
	return f.queue.Len()
}
