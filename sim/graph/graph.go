// Package graph provides the attributed graph store the broadcast simulation
// propagates over.
//
// Nodes are opaque comparable identifiers. Every node owns an insertion-ordered
// list of neighbors, each mapped to an attribute bag. Insertion order is kept
// for nodes and neighbors alike so traversals (and therefore FIFO-driven
// broadcasts) are reproducible.
//
// In an undirected graph the edge (u,v) and its mirror (v,u) point to the same
// *Attrs, so an UpdateEdge through either endpoint is visible from both.
//
// Graph is not safe for concurrent use.
package graph

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Sentinel errors for graph operations. All returned errors wrap one of these.
var (
	// ErrNodeNotFound indicates an operation referenced a node absent from the graph.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrEdgeNotFound indicates an operation referenced an absent edge.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrEdgeExists indicates AddEdge was called for an edge already present.
	ErrEdgeExists = errors.New("graph: edge already exists")

	// ErrDuplicateNode indicates AddNode was called for a node already present.
	ErrDuplicateNode = errors.New("graph: node already exists")

	// ErrInvalidConfiguration indicates a caller-supplied parameter is out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidDegree indicates a negative Children degree.
	ErrInvalidDegree = fmt.Errorf("%w: degree must be >= 0 (0 = unbounded)", ErrInvalidConfiguration)
)

// neighbors is one node's ordered adjacency row.
type neighbors[N comparable] struct {
	order []N
	attrs map[N]*Attrs
}

func newNeighbors[N comparable]() *neighbors[N] {
	return &neighbors[N]{attrs: make(map[N]*Attrs)}
}

func (nb *neighbors[N]) put(to N, a *Attrs) {
	nb.order = append(nb.order, to)
	nb.attrs[to] = a
}

func (nb *neighbors[N]) remove(to N) {
	delete(nb.attrs, to)
	if i := slices.Index(nb.order, to); i >= 0 {
		nb.order = slices.Delete(nb.order, i, i+1)
	}
}

// Option configures a Graph at construction.
type Option func(*config)

type config struct {
	directed bool
}

// Undirected makes every added edge reachable from both endpoints.
func Undirected() Option {
	return func(c *config) { c.directed = false }
}

// Directed is the default; provided for symmetry with Undirected.
func Directed() Option {
	return func(c *config) { c.directed = true }
}

// Graph is an attributed adjacency-list graph.
type Graph[N comparable] struct {
	directed bool
	order    []N
	adj      map[N]*neighbors[N]
	numEdges int
}

// New creates an empty graph. Graphs are directed unless Undirected is passed.
func New[N comparable](opts ...Option) *Graph[N] {
	cfg := config{directed: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Graph[N]{
		directed: cfg.directed,
		adj:      make(map[N]*neighbors[N]),
	}
}

// NewWithNodes creates a graph pre-populated with isolated nodes.
// Repeated entries in nodes are collapsed.
func NewWithNodes[N comparable](nodes []N, opts ...Option) *Graph[N] {
	g := New[N](opts...)
	for _, n := range nodes {
		g.ensureNode(n)
	}
	return g
}

// Directed reports whether edges are one-way.
func (g *Graph[N]) Directed() bool {
	return g.directed
}

// Nodes returns all nodes in insertion order. The slice is a copy.
func (g *Graph[N]) Nodes() []N {
	return slices.Clone(g.order)
}

// NumNodes returns the number of nodes.
func (g *Graph[N]) NumNodes() int {
	return len(g.order)
}

// NumEdges returns the number of logical edges; an undirected edge counts once.
func (g *Graph[N]) NumEdges() int {
	return g.numEdges
}

// ContainsNode reports whether n is in the graph.
func (g *Graph[N]) ContainsNode(n N) bool {
	_, ok := g.adj[n]
	return ok
}

// ContainsEdge reports whether the edge from -> to exists.
func (g *Graph[N]) ContainsEdge(from, to N) bool {
	_, ok := g.lookup(from, to)
	return ok
}

func (g *Graph[N]) lookup(from, to N) (*Attrs, bool) {
	nb, ok := g.adj[from]
	if !ok {
		return nil, false
	}
	a, ok := nb.attrs[to]
	return a, ok
}

func (g *Graph[N]) ensureNode(n N) *neighbors[N] {
	if nb, ok := g.adj[n]; ok {
		return nb
	}
	nb := newNeighbors[N]()
	g.adj[n] = nb
	g.order = append(g.order, n)
	return nb
}

// AddNode adds an isolated node.
func (g *Graph[N]) AddNode(n N) error {
	if g.ContainsNode(n) {
		return fmt.Errorf("%w: %v", ErrDuplicateNode, n)
	}
	g.ensureNode(n)
	return nil
}

// AddEdge adds the edge from -> to, creating missing endpoints. In an
// undirected graph the mirror shares the same attribute bag, and an existing
// edge in either direction is a conflict.
func (g *Graph[N]) AddEdge(from, to N, opts ...AttrOption) error {
	if g.ContainsEdge(from, to) || (!g.directed && g.ContainsEdge(to, from)) {
		return fmt.Errorf("%w: (%v, %v)", ErrEdgeExists, from, to)
	}
	a := &Attrs{}
	a.apply(opts)

	g.ensureNode(from).put(to, a)
	toRow := g.ensureNode(to)
	if !g.directed && from != to {
		toRow.put(from, a)
	}
	g.numEdges++
	return nil
}

// RemoveEdge deletes the edge from -> to (and its mirror when undirected) and
// returns the removed attributes. The bool is false when no such edge exists.
func (g *Graph[N]) RemoveEdge(from, to N) (Attrs, bool) {
	a, ok := g.lookup(from, to)
	if !ok {
		return Attrs{}, false
	}
	g.adj[from].remove(to)
	if !g.directed && from != to {
		g.adj[to].remove(from)
	}
	g.numEdges--
	return a.clone(), true
}

// UpdateEdge merges opts into the existing attribute bag of from -> to.
func (g *Graph[N]) UpdateEdge(from, to N, opts ...AttrOption) error {
	a, ok := g.lookup(from, to)
	if !ok {
		return fmt.Errorf("%w: (%v, %v)", ErrEdgeNotFound, from, to)
	}
	a.apply(opts)
	return nil
}

// GetEdgeAttrs returns a copy of the attributes of from -> to.
func (g *Graph[N]) GetEdgeAttrs(from, to N) (Attrs, error) {
	a, ok := g.lookup(from, to)
	if !ok {
		return Attrs{}, fmt.Errorf("%w: (%v, %v)", ErrEdgeNotFound, from, to)
	}
	return a.clone(), nil
}

// OutboundEdges returns views of every edge leaving node, in insertion order.
func (g *Graph[N]) OutboundEdges(node N) ([]Edge[N], error) {
	nb, ok := g.adj[node]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, node)
	}
	edges := make([]Edge[N], 0, len(nb.order))
	for _, to := range nb.order {
		edges = append(edges, Edge[N]{From: node, To: to, Attrs: nb.attrs[to].clone()})
	}
	return edges, nil
}

// IterEdges yields every logical edge once. For undirected graphs the mirror
// of an edge already yielded from an earlier node is suppressed.
func (g *Graph[N]) IterEdges() iter.Seq[Edge[N]] {
	return func(yield func(Edge[N]) bool) {
		visited := make(map[N]struct{}, len(g.order))
		for _, from := range g.order {
			nb := g.adj[from]
			for _, to := range nb.order {
				if !g.directed {
					if _, seen := visited[to]; seen {
						continue
					}
				}
				if !yield(Edge[N]{From: from, To: to, Attrs: nb.attrs[to].clone()}) {
					return
				}
			}
			visited[from] = struct{}{}
		}
	}
}

// Clone returns a deep copy. Mirrored undirected edges keep sharing one bag
// inside the copy, but nothing is shared with g.
func (g *Graph[N]) Clone() *Graph[N] {
	c := &Graph[N]{
		directed: g.directed,
		order:    slices.Clone(g.order),
		adj:      make(map[N]*neighbors[N], len(g.adj)),
		numEdges: g.numEdges,
	}
	copied := make(map[*Attrs]*Attrs)
	for _, from := range g.order {
		src := g.adj[from]
		dst := newNeighbors[N]()
		for _, to := range src.order {
			a := src.attrs[to]
			ca, ok := copied[a]
			if !ok {
				cloned := a.clone()
				ca = &cloned
				copied[a] = ca
			}
			dst.put(to, ca)
		}
		c.adj[from] = dst
	}
	return c
}
