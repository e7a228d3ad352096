// Package testutil provides shared test infrastructure for the broadcast
// simulator: reference graphs and helpers to compare step paths.
package testutil

import (
	"math"
	"testing"

	"github.com/inference-sim/broadcast-sim/sim/graph"
)

// Pair is an edge reduced to its endpoints.
type Pair struct {
	From, To int
}

// ReferenceEdges is the eight-edge directed graph most transmission tests
// run on. Node 1 reaches everything; node 5 is a sink.
var ReferenceEdges = []Pair{
	{1, 2}, {2, 3}, {1, 3}, {1, 4}, {4, 3}, {3, 5}, {3, 2}, {2, 1},
}

// BuildGraph creates a graph from pairs, failing the test on any error.
func BuildGraph(t *testing.T, pairs []Pair, opts ...graph.Option) *graph.Graph[int] {
	t.Helper()
	g := graph.New[int](opts...)
	for _, p := range pairs {
		if err := g.AddEdge(p.From, p.To); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", p.From, p.To, err)
		}
	}
	return g
}

// ReferenceGraph returns a fresh copy of the ReferenceEdges graph.
func ReferenceGraph(t *testing.T) *graph.Graph[int] {
	t.Helper()
	return BuildGraph(t, ReferenceEdges)
}

// StepPairs reduces one step's edges to their endpoints.
func StepPairs(step []graph.Edge[int]) []Pair {
	out := make([]Pair, 0, len(step))
	for _, e := range step {
		out = append(out, Pair{e.From, e.To})
	}
	return out
}

// PathPairs reduces a whole path to endpoints, step by step.
func PathPairs(path [][]graph.Edge[int]) [][]Pair {
	out := make([][]Pair, 0, len(path))
	for _, step := range path {
		out = append(out, StepPairs(step))
	}
	return out
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
