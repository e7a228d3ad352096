package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/broadcast-sim/sim/graph"
)

var (
	// ErrEmptyPath indicates a query that needs at least one computed step.
	ErrEmptyPath = errors.New("sim: path has no computed steps")

	// ErrHistoryIndex indicates a negative history index reaching past the
	// first computed step.
	ErrHistoryIndex = errors.New("sim: history index out of range")
)

// AllSteps asks Path for every step until the transmission is exhausted.
const AllSteps = -1

// Hook runs around every step of a Simulation. Hooks may mutate the graph,
// e.g. to rewire weak ties or toggle edge strengths between steps.
type Hook[N comparable] func(tr *Transmission[N])

// SimulationOption configures a Simulation.
type SimulationOption[N comparable] func(*Simulation[N])

// WithBefore runs h before every step attempt, including the one that finds
// the transmission exhausted.
func WithBefore[N comparable](h Hook[N]) SimulationOption[N] {
	return func(s *Simulation[N]) { s.before = h }
}

// WithAfter runs h after every step that produced a result.
func WithAfter[N comparable](h Hook[N]) SimulationOption[N] {
	return func(s *Simulation[N]) { s.after = h }
}

// Simulation lazily drives a Transmission and caches every step result with
// the snapshot taken after it. Steps are computed at most once: the selector
// and RNG are stateful, so a step cannot be re-derived.
type Simulation[N comparable] struct {
	tr        *Transmission[N]
	before    Hook[N]
	after     Hook[N]
	savedPath [][]graph.Edge[N]
	history   []Snapshot
	completed bool
}

// NewSimulation wraps tr. tr should not be stepped directly afterwards.
func NewSimulation[N comparable](tr *Transmission[N], opts ...SimulationOption[N]) *Simulation[N] {
	s := &Simulation[N]{tr: tr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// advance computes steps until n are cached (n < 0: until exhaustion).
func (s *Simulation[N]) advance(n int) {
	for !s.completed && (n < 0 || len(s.savedPath) < n) {
		if s.before != nil {
			s.before(s.tr)
		}
		edges, done := s.tr.Step()
		if done {
			s.completed = true
			logrus.Debugf("simulation from %v completed after %d steps", s.tr.OriginatingNode(), len(s.savedPath))
			return
		}
		s.savedPath = append(s.savedPath, edges)
		s.history = append(s.history, s.tr.snapshot())
		if s.after != nil {
			s.after(s.tr)
		}
	}
}

// Path returns the first k step results, computing only the steps not cached
// yet. Fewer than k are returned if the transmission is exhausted first.
// k == AllSteps (or any negative k) runs to exhaustion.
// Earlier results are never recomputed, so repeated calls agree.
func (s *Simulation[N]) Path(k int) [][]graph.Edge[N] {
	s.advance(k)
	n := len(s.savedPath)
	if k >= 0 && k < n {
		n = k
	}
	out := make([][]graph.Edge[N], n)
	copy(out, s.savedPath[:n])
	return out
}

// FullPath runs the transmission to exhaustion and returns every step result.
func (s *Simulation[N]) FullPath() [][]graph.Edge[N] {
	return s.Path(AllSteps)
}

// History returns the snapshot after step i (0-based). A non-negative i
// computes steps up to i first; if the transmission is exhausted before i the
// last snapshot is returned. A negative i counts back from the last computed
// step and never computes anything.
func (s *Simulation[N]) History(i int) (Snapshot, error) {
	if i >= 0 {
		s.advance(i + 1)
	}
	n := len(s.history)
	if n == 0 {
		return Snapshot{}, ErrEmptyPath
	}
	switch {
	case i >= n:
		return s.history[n-1], nil
	case i >= 0:
		return s.history[i], nil
	case -i <= n:
		return s.history[n+i], nil
	default:
		return Snapshot{}, fmt.Errorf("%w: %d with %d computed steps", ErrHistoryIndex, i, n)
	}
}

// Len returns the number of computed steps.
func (s *Simulation[N]) Len() int {
	return len(s.savedPath)
}

// Completed reports whether the transmission has been run to exhaustion.
func (s *Simulation[N]) Completed() bool {
	return s.completed
}

// Final returns the snapshot after the last computed step.
func (s *Simulation[N]) Final() (Snapshot, error) {
	return s.History(-1)
}

// OriginatingNode returns the node the broadcast started from.
func (s *Simulation[N]) OriginatingNode() N {
	return s.tr.OriginatingNode()
}

// Transmission returns the wrapped transmission.
func (s *Simulation[N]) Transmission() *Transmission[N] {
	return s.tr
}
