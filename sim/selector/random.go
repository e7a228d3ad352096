package selector

import (
	"fmt"
	"math/rand"
)

// Random releases up to n uniformly chosen pending items per pick, without
// replacement. n is fixed or drawn fresh before every pick.
type Random[T any] struct {
	rng       *rand.Rand
	items     []T
	batchSize func() int
}

// RandomOption configures a Random selector.
type RandomOption func(*randomConfig) error

type randomConfig struct {
	batchSize func() int
}

// WithBatchSize fixes the number of items released per pick. n must be positive.
func WithBatchSize(n int) RandomOption {
	return func(c *randomConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: batch size must be >= 1, got %d", ErrInvalidConfiguration, n)
		}
		c.batchSize = func() int { return n }
		return nil
	}
}

// WithBatchSizeFunc draws the batch size before every pick. Draws below 1
// release nothing for that pick.
func WithBatchSizeFunc(f func() int) RandomOption {
	return func(c *randomConfig) error {
		if f == nil {
			return fmt.Errorf("%w: nil batch size func", ErrInvalidConfiguration)
		}
		c.batchSize = f
		return nil
	}
}

// NewRandom creates a Random selector drawing from rng. The default batch size is 1.
func NewRandom[T any](rng *rand.Rand, opts ...RandomOption) (*Random[T], error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", ErrInvalidConfiguration)
	}
	cfg := randomConfig{batchSize: func() int { return 1 }}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Random[T]{rng: rng, batchSize: cfg.batchSize}, nil
}

// Add puts item in the pending pool.
func (r *Random[T]) Add(item T) {
	r.items = append(r.items, item)
}

// Pick removes and returns min(n, Len()) random items.
func (r *Random[T]) Pick() ([]T, bool) {
	if len(r.items) == 0 {
		return nil, false
	}
	n := min(max(r.batchSize(), 0), len(r.items))

	// Partial Fisher-Yates over the indices: the first n positions are the draw.
	idx := make([]int, len(r.items))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + r.rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	picked := make([]T, 0, n)
	taken := make([]bool, len(r.items))
	for _, i := range idx[:n] {
		picked = append(picked, r.items[i])
		taken[i] = true
	}
	remaining := make([]T, 0, len(r.items)-n)
	for i, item := range r.items {
		if !taken[i] {
			remaining = append(remaining, item)
		}
	}
	r.items = remaining
	return picked, true
}

// Len returns the number of pending items.
func (r *Random[T]) Len() int {
	return len(r.items)
}
