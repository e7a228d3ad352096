package graph

import "maps"

// Recognized attribute keys. Anything else lands in Attrs.Extra.
const (
	KeyStrength = "strength"
	KeyKind     = "kind"
)

// Attrs is the attribute bag stored on an edge.
// Strength is the probability-like value transmit tests read; Kind tags the
// edge (e.g. "core", "strong", "weak"). Extra holds any other key.
type Attrs struct {
	Strength float64
	Kind     string
	Extra    map[string]any
}

// AttrOption sets one attribute on an edge's bag.
type AttrOption func(*Attrs)

// WithStrength sets the edge strength.
func WithStrength(strength float64) AttrOption {
	return func(a *Attrs) { a.Strength = strength }
}

// WithKind sets the edge kind.
func WithKind(kind string) AttrOption {
	return func(a *Attrs) { a.Kind = kind }
}

// WithAttr sets an attribute by key. The recognized keys are routed to their
// typed fields when the value has the matching type (float64 or int for
// strength, string for kind); everything else is stored in Extra.
func WithAttr(key string, value any) AttrOption {
	return func(a *Attrs) { a.set(key, value) }
}

func (a *Attrs) set(key string, value any) {
	switch key {
	case KeyStrength:
		switch v := value.(type) {
		case float64:
			a.Strength = v
			return
		case int:
			a.Strength = float64(v)
			return
		}
	case KeyKind:
		if v, ok := value.(string); ok {
			a.Kind = v
			return
		}
	}
	if a.Extra == nil {
		a.Extra = make(map[string]any)
	}
	a.Extra[key] = value
}

// Get looks up an attribute by key, recognized or extension.
// The recognized keys are always present.
func (a Attrs) Get(key string) (any, bool) {
	switch key {
	case KeyStrength:
		return a.Strength, true
	case KeyKind:
		return a.Kind, true
	}
	v, ok := a.Extra[key]
	return v, ok
}

// clone returns a copy that shares nothing mutable with a.
func (a *Attrs) clone() Attrs {
	c := *a
	c.Extra = maps.Clone(a.Extra)
	return c
}

func (a *Attrs) apply(opts []AttrOption) {
	for _, opt := range opts {
		opt(a)
	}
}

// Edge is a read-only view of one edge, built on every read.
// Its Attrs are a snapshot; later UpdateEdge calls are not reflected.
type Edge[N comparable] struct {
	From  N
	To    N
	Attrs Attrs
}

// Nodes returns the (from, to) pair.
func (e Edge[N]) Nodes() (N, N) {
	return e.From, e.To
}

// Strength returns the edge strength attribute.
func (e Edge[N]) Strength() float64 {
	return e.Attrs.Strength
}

// Kind returns the edge kind attribute.
func (e Edge[N]) Kind() string {
	return e.Attrs.Kind
}
