package sim

import (
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/broadcast-sim/sim/graph"
	"github.com/inference-sim/broadcast-sim/sim/selector"
)

// TestFunc decides whether a candidate edge carries the broadcast.
// It receives the running transmission so policies can depend on its state
// (e.g. the current step for time-varying strengths).
type TestFunc[N comparable] func(tr *Transmission[N], e graph.Edge[N]) bool

// Option configures a Transmission.
type Option[N comparable] func(*Transmission[N]) error

// WithTestTransmit sets the edge acceptance test. The default accepts every edge.
func WithTestTransmit[N comparable](f TestFunc[N]) Option[N] {
	return func(t *Transmission[N]) error {
		if f == nil {
			return fmt.Errorf("%w: nil transmit test", graph.ErrInvalidConfiguration)
		}
		t.testTransmit = f
		return nil
	}
}

// WithPersist makes every node keep re-broadcasting for n steps after it is
// first reached. Zero (the default) disables persistence.
func WithPersist[N comparable](n int) Option[N] {
	return func(t *Transmission[N]) error {
		if n < 0 {
			return fmt.Errorf("%w: persist must be >= 0, got %d", graph.ErrInvalidConfiguration, n)
		}
		t.persist = func() int { return n }
		return nil
	}
}

// WithPersistFunc draws a persist duration for every newly reached node.
// The function must not return a negative duration.
func WithPersistFunc[N comparable](f func() int) Option[N] {
	return func(t *Transmission[N]) error {
		if f == nil {
			return fmt.Errorf("%w: nil persist func", graph.ErrInvalidConfiguration)
		}
		t.persist = f
		return nil
	}
}

// Transmission propagates one broadcast over a graph, one step per Step call.
//
// A node is tested at most once: once it is in the broadcasted set it is never
// a target again. Persistence only controls how long a node keeps re-sending
// to its neighbors.
//
// States: active -> exhausted. The transmission is exhausted by the first step
// that finds the selector empty and reaches no node, counting persistent
// re-broadcasts as reaching their sender.
type Transmission[N comparable] struct {
	graph        *graph.Graph[N]
	origin       N
	selector     selector.Selector[graph.Edge[N]]
	testTransmit TestFunc[N]
	persist      func() int

	// broadcasted maps a node to its remaining persist countdown. A node stays
	// present at 0; presence is what marks it as reached.
	broadcasted map[N]int
	order       []N

	stepIndex int
	tests     int
	history   []Snapshot
	exhausted bool
}

// NewTransmission starts a broadcast from origin. The origin counts as
// broadcasting immediately and its outbound edges are queued on sel.
func NewTransmission[N comparable](g *graph.Graph[N], origin N, sel selector.Selector[graph.Edge[N]], opts ...Option[N]) (*Transmission[N], error) {
	if g == nil || sel == nil {
		return nil, fmt.Errorf("%w: graph and selector are required", graph.ErrInvalidConfiguration)
	}
	if !g.ContainsNode(origin) {
		return nil, fmt.Errorf("originating node: %w: %v", graph.ErrNodeNotFound, origin)
	}
	t := &Transmission[N]{
		graph:        g,
		origin:       origin,
		selector:     sel,
		testTransmit: AlwaysTransmit[N],
		persist:      func() int { return 0 },
		broadcasted:  make(map[N]int),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	t.markBroadcast(origin)
	t.enqueueOutbound(origin)
	return t, nil
}

func (t *Transmission[N]) markBroadcast(n N) {
	countdown := t.persist()
	if countdown < 0 {
		panic(fmt.Sprintf("Transmission: persist func returned %d, must be >= 0", countdown))
	}
	t.broadcasted[n] = countdown
	t.order = append(t.order, n)
}

func (t *Transmission[N]) enqueueOutbound(n N) {
	edges, err := t.graph.OutboundEdges(n)
	if err != nil {
		// Nodes are never removed from a graph, so a broadcasted node must exist.
		panic(fmt.Sprintf("Transmission: %v", err))
	}
	for _, e := range edges {
		t.selector.Add(e)
	}
}

// Step advances the broadcast by one step and returns the edges that carried
// it to newly reached nodes. done is true once the transmission is exhausted;
// the returned edges are then nil and further calls are no-ops.
//
// Edges re-sent by persisting nodes are queued for later steps but never
// returned.
func (t *Transmission[N]) Step() (edges []graph.Edge[N], done bool) {
	if t.exhausted {
		return nil, true
	}
	t.stepIndex++

	batch, pending := t.selector.Pick()

	reached := make(map[N]struct{})
	var newly []N
	edges = make([]graph.Edge[N], 0)
	for _, e := range batch {
		if _, ok := t.broadcasted[e.To]; ok {
			continue
		}
		if _, ok := reached[e.To]; ok {
			continue
		}
		t.tests++
		if t.testTransmit(t, e) {
			reached[e.To] = struct{}{}
			newly = append(newly, e.To)
			edges = append(edges, e)
			t.enqueueOutbound(e.To)
		}
	}

	persisting := 0
	for _, n := range t.order {
		if t.broadcasted[n] > 0 {
			t.enqueueOutbound(n)
			t.broadcasted[n]--
			persisting++
		}
	}

	if !pending && len(newly) == 0 && persisting == 0 {
		t.stepIndex--
		t.exhausted = true
		logrus.Debugf("[step %05d] transmission from %v exhausted: %d broadcasts, %d tests",
			t.stepIndex, t.origin, len(t.broadcasted), t.tests)
		return nil, true
	}

	for _, n := range newly {
		t.markBroadcast(n)
	}
	t.history = append(t.history, t.snapshot())
	logrus.Debugf("[step %05d] %d candidates, %d reached, %d persisting, %d pending",
		t.stepIndex, len(batch), len(newly), persisting, t.selector.Len())
	return edges, false
}

// All iterates over the remaining steps until the transmission is exhausted.
func (t *Transmission[N]) All() iter.Seq[[]graph.Edge[N]] {
	return func(yield func([]graph.Edge[N]) bool) {
		for {
			edges, done := t.Step()
			if done || !yield(edges) {
				return
			}
		}
	}
}

func (t *Transmission[N]) snapshot() Snapshot {
	return Snapshot{Steps: t.stepIndex, Broadcasts: len(t.broadcasted), Tests: t.tests}
}

// Steps returns the number of completed steps. While a transmit test runs it
// reports the step being computed.
func (t *Transmission[N]) Steps() int {
	return t.stepIndex
}

// Broadcasts returns the number of nodes reached so far, origin included.
func (t *Transmission[N]) Broadcasts() int {
	return len(t.broadcasted)
}

// Tests returns the number of transmit tests performed.
func (t *Transmission[N]) Tests() int {
	return t.tests
}

// History returns one snapshot per completed step. The slice is a copy.
func (t *Transmission[N]) History() []Snapshot {
	out := make([]Snapshot, len(t.history))
	copy(out, t.history)
	return out
}

// Broadcasted reports whether n has been reached and, if so, how many more
// steps it will keep re-broadcasting.
func (t *Transmission[N]) Broadcasted(n N) (remaining int, ok bool) {
	remaining, ok = t.broadcasted[n]
	return remaining, ok
}

// BroadcastOrder returns the reached nodes in the order they were reached.
func (t *Transmission[N]) BroadcastOrder() []N {
	out := make([]N, len(t.order))
	copy(out, t.order)
	return out
}

// Exhausted reports whether the transmission has terminated.
func (t *Transmission[N]) Exhausted() bool {
	return t.exhausted
}

// OriginatingNode returns the node the broadcast started from.
func (t *Transmission[N]) OriginatingNode() N {
	return t.origin
}

// Graph returns the graph being broadcast over. Callers may mutate it between
// steps; edges are read when a node (re-)broadcasts.
func (t *Transmission[N]) Graph() *graph.Graph[N] {
	return t.graph
}
