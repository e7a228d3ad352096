// Package selector provides the scheduling policies that decide in what order,
// and at what simulated step, pending candidate edges are evaluated by a
// broadcast transmission.
//
// Every policy has two states: it holds pending items, or it is empty. Pick on
// an empty selector reports false; that is not terminal, since later Add calls
// make it pick again.
//
// Selectors are not safe for concurrent use.
package selector

import (
	"fmt"
	"math/rand"

	"github.com/inference-sim/broadcast-sim/sim/graph"
)

// ErrInvalidConfiguration wraps graph.ErrInvalidConfiguration so one errors.Is
// check covers configuration errors from the whole core.
var ErrInvalidConfiguration = fmt.Errorf("selector: %w", graph.ErrInvalidConfiguration)

// Selector orders and times pending items.
type Selector[T any] interface {
	// Add queues an item.
	Add(item T)
	// Pick releases the next batch. The batch may be empty while items are
	// still pending (e.g. not yet due). ok is false when nothing is pending.
	Pick() (batch []T, ok bool)
	// Len returns the number of pending items.
	Len() int
}

// Selector type names accepted by New.
const (
	TypeFIFO    = "fifo"
	TypeRandom  = "random"
	TypeDelayed = "delayed"
)

// ValidTypes is the set of recognized selector names. Empty means fifo.
var ValidTypes = map[string]bool{"": true, TypeFIFO: true, TypeRandom: true, TypeDelayed: true}

// Config selects and parameterizes a selector.
// For random selectors BatchSizeFunc wins over BatchSize when set; for delayed
// selectors LagFunc wins over Lag.
type Config struct {
	Type          string
	BatchSize     int
	BatchSizeFunc func() int
	Lag           int
	LagFunc       func() int
}

// New creates the selector named by cfg.Type. rng is only used by the random
// selector and must be non-nil for it.
func New[T any](cfg Config, rng *rand.Rand) (Selector[T], error) {
	switch cfg.Type {
	case "", TypeFIFO:
		return NewFIFO[T](), nil
	case TypeRandom:
		if rng == nil {
			return nil, fmt.Errorf("%w: random selector needs an rng", ErrInvalidConfiguration)
		}
		if cfg.BatchSizeFunc != nil {
			return NewRandom[T](rng, WithBatchSizeFunc(cfg.BatchSizeFunc))
		}
		n := cfg.BatchSize
		if n == 0 {
			n = 1
		}
		return NewRandom[T](rng, WithBatchSize(n))
	case TypeDelayed:
		if cfg.LagFunc != nil {
			return NewDelayedFunc[T](cfg.LagFunc), nil
		}
		return NewDelayed[T](cfg.Lag)
	default:
		return nil, fmt.Errorf("%w: unknown selector type %q", ErrInvalidConfiguration, cfg.Type)
	}
}
