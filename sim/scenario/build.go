package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/broadcast-sim/sim"
	"github.com/inference-sim/broadcast-sim/sim/graph"
	"github.com/inference-sim/broadcast-sim/sim/rv"
	"github.com/inference-sim/broadcast-sim/sim/selector"
)

// Build validates the spec and assembles a simulation from it. Every random
// draw comes from a PartitionedRNG keyed by the spec's seed, so equal specs
// build simulations with identical paths.
func (s *Spec) Build() (*sim.Simulation[string], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(s.Seed))

	g, err := s.buildGraph(rng)
	if err != nil {
		return nil, err
	}
	sel, err := s.buildSelector(rng)
	if err != nil {
		return nil, err
	}
	opts, err := s.transmissionOptions(rng)
	if err != nil {
		return nil, err
	}
	tr, err := sim.NewTransmission(g, s.Origin, sel, opts...)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("scenario: %d nodes, %d edges, origin %q, selector %q, policy %q",
		g.NumNodes(), g.NumEdges(), s.Origin, s.Selector.Type, s.Transmit.Policy)
	return sim.NewSimulation(tr), nil
}

func (s *Spec) buildGraph(rng *sim.PartitionedRNG) (*graph.Graph[string], error) {
	var gopts []graph.Option
	if !s.IsDirected() {
		gopts = append(gopts, graph.Undirected())
	}
	g := graph.New[string](gopts...)
	for _, n := range s.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("nodes: %w", err)
		}
	}

	var drawStrength func() float64
	if s.DefaultStrength != nil {
		v, err := rv.New(*s.DefaultStrength)
		if err != nil {
			return nil, fmt.Errorf("default_strength: %w", err)
		}
		drawStrength = rv.FloatFunc(v, rng.ForSubsystem(sim.SubsystemStrength))
	}

	for i, e := range s.Edges {
		var aopts []graph.AttrOption
		for k, v := range e.Attrs {
			aopts = append(aopts, graph.WithAttr(k, v))
		}
		switch {
		case e.Strength != nil:
			aopts = append(aopts, graph.WithStrength(*e.Strength))
		case drawStrength != nil:
			aopts = append(aopts, graph.WithStrength(clamp01(drawStrength())))
		}
		if e.Kind != "" {
			aopts = append(aopts, graph.WithKind(e.Kind))
		}
		if err := g.AddEdge(e.From, e.To, aopts...); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}
	return g, nil
}

func (s *Spec) buildSelector(rng *sim.PartitionedRNG) (selector.Selector[graph.Edge[string]], error) {
	cfg := selector.Config{Type: s.Selector.Type}
	if s.Selector.Batch != nil && s.Selector.Type == selector.TypeRandom {
		v, err := rv.New(*s.Selector.Batch)
		if err != nil {
			return nil, fmt.Errorf("selector.batch: %w", err)
		}
		cfg.BatchSizeFunc = atLeastOne(rv.IntFunc(v, rng.ForSubsystem(sim.SubsystemBatch)))
	}
	if s.Selector.Lag != nil && s.Selector.Type == selector.TypeDelayed {
		v, err := rv.New(*s.Selector.Lag)
		if err != nil {
			return nil, fmt.Errorf("selector.lag: %w", err)
		}
		cfg.LagFunc = rv.IntFunc(v, rng.ForSubsystem(sim.SubsystemLag))
	}
	return selector.New[graph.Edge[string]](cfg, rng.ForSubsystem(sim.SubsystemSelector))
}

func (s *Spec) transmissionOptions(rng *sim.PartitionedRNG) ([]sim.Option[string], error) {
	var opts []sim.Option[string]
	transmitRNG := rng.ForSubsystem(sim.SubsystemTransmit)
	switch s.Transmit.Policy {
	case PolicyStrength:
		opts = append(opts, sim.WithTestTransmit(sim.StrengthTest[string](transmitRNG)))
	case PolicyKind:
		opts = append(opts, sim.WithTestTransmit(sim.KindStrengthTest[string](transmitRNG, s.Transmit.Strengths)))
	}
	if s.Persist != nil {
		v, err := rv.New(*s.Persist)
		if err != nil {
			return nil, fmt.Errorf("persist: %w", err)
		}
		opts = append(opts, sim.WithPersistFunc[string](rv.IntFunc(v, rng.ForSubsystem(sim.SubsystemPersist))))
	}
	return opts, nil
}

// atLeastOne clamps drawn batch sizes to 1, so every pick releases an item.
func atLeastOne(f func() int) func() int {
	return func() int { return max(f(), 1) }
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// Factory returns a builder that assembles this scenario under another seed.
// The spec must not be mutated while the factory is in use.
func (s *Spec) Factory() func(seed int64) (*sim.Simulation[string], error) {
	return func(seed int64) (*sim.Simulation[string], error) {
		c := *s
		c.Seed = seed
		return c.Build()
	}
}
