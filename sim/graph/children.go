package graph

import "fmt"

// ChildrenOptions controls a Children traversal.
type ChildrenOptions[N comparable] struct {
	// Degree is the number of batches to produce. Zero means unbounded: the
	// iterator keeps returning (eventually empty) batches forever.
	Degree int
	// Predicate filters neighbors; nil accepts all.
	Predicate func(N) bool
	// KeepDuplicates disables the visited-set filter, so a node reachable
	// through several parents (or already seen at a lower degree) repeats.
	KeepDuplicates bool
}

// ChildrenIter produces neighbor batches by degree: batch 0 holds the direct
// neighbors of the root, batch k the neighbors of batch k-1.
// Each iterator owns its visited set, so iterators are independent.
type ChildrenIter[N comparable] struct {
	g        *Graph[N]
	root     N
	opts     ChildrenOptions[N]
	produced int
	frontier []N
	visited  map[N]struct{}
}

// Children starts a degree-by-degree traversal from node.
func (g *Graph[N]) Children(node N, opts ChildrenOptions[N]) (*ChildrenIter[N], error) {
	if !g.ContainsNode(node) {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, node)
	}
	if opts.Degree < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDegree, opts.Degree)
	}
	return &ChildrenIter[N]{
		g:       g,
		root:    node,
		opts:    opts,
		visited: map[N]struct{}{node: {}},
	}, nil
}

// Next returns the next batch. The bool is false once Degree batches have
// been produced; an unbounded iterator never reports false.
func (it *ChildrenIter[N]) Next() ([]N, bool) {
	if it.opts.Degree > 0 && it.produced >= it.opts.Degree {
		return nil, false
	}
	parents := it.frontier
	if it.produced == 0 {
		parents = []N{it.root}
	}
	batch := make([]N, 0)
	for _, parent := range parents {
		nb, ok := it.g.adj[parent]
		if !ok {
			continue
		}
		for _, child := range nb.order {
			if it.opts.Predicate != nil && !it.opts.Predicate(child) {
				continue
			}
			if it.produced > 0 && !it.opts.KeepDuplicates {
				if _, seen := it.visited[child]; seen {
					continue
				}
			}
			batch = append(batch, child)
			it.visited[child] = struct{}{}
		}
	}
	it.frontier = batch
	it.produced++
	return batch, true
}

// Collect drains a bounded iterator. It returns ErrInvalidConfiguration for
// unbounded iterators, which never end.
func (it *ChildrenIter[N]) Collect() ([][]N, error) {
	if it.opts.Degree == 0 {
		return nil, fmt.Errorf("%w: cannot collect an unbounded traversal", ErrInvalidConfiguration)
	}
	var out [][]N
	for batch, ok := it.Next(); ok; batch, ok = it.Next() {
		out = append(out, batch)
	}
	return out, nil
}
