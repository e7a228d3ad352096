package selector

import "fmt"

// Delayed holds each item back for a lag measured in picks. An item added
// while the internal clock reads t with lag L is released by the pick that
// runs at clock t+L; a lag of 0 releases on the very next pick. The lag is
// resolved once, when the item is added.
type Delayed[T any] struct {
	lag     func() int
	clock   int
	due     map[int][]T
	pending int
}

// NewDelayed creates a Delayed selector with a fixed, non-negative lag.
func NewDelayed[T any](lag int) (*Delayed[T], error) {
	if lag < 0 {
		return nil, fmt.Errorf("%w: lag must be >= 0, got %d", ErrInvalidConfiguration, lag)
	}
	return NewDelayedFunc[T](func() int { return lag }), nil
}

// NewDelayedFunc creates a Delayed selector that computes a fresh lag for
// every added item. The function must not return a negative lag.
func NewDelayedFunc[T any](lag func() int) *Delayed[T] {
	if lag == nil {
		panic("NewDelayedFunc: lag must not be nil")
	}
	return &Delayed[T]{lag: lag, due: make(map[int][]T)}
}

// Add stamps item with its release time.
func (d *Delayed[T]) Add(item T) {
	lag := d.lag()
	if lag < 0 {
		panic(fmt.Sprintf("Delayed.Add: lag function returned %d, must be >= 0", lag))
	}
	at := d.clock + lag
	d.due[at] = append(d.due[at], item)
	d.pending++
}

// Pick releases every item due at the current clock, then advances the clock.
// Items sharing a release time come out together, in the order they were added.
func (d *Delayed[T]) Pick() ([]T, bool) {
	if d.pending == 0 {
		return nil, false
	}
	batch := d.due[d.clock]
	delete(d.due, d.clock)
	d.pending -= len(batch)
	d.clock++
	if batch == nil {
		batch = []T{}
	}
	return batch, true
}

// Len returns the number of pending items.
func (d *Delayed[T]) Len() int {
	return d.pending
}

// Clock returns the number of picks made while items were pending.
func (d *Delayed[T]) Clock() int {
	return d.clock
}
