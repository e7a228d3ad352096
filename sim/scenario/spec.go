// Package scenario loads broadcast scenarios from YAML and builds simulations
// from them. A scenario names a graph, an originating node, a selector, a
// transmit policy, and the random variables that parameterize them.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/broadcast-sim/sim/rv"
	"github.com/inference-sim/broadcast-sim/sim/selector"
)

// Transmit policy names.
const (
	PolicyAlways   = "always"
	PolicyStrength = "strength"
	PolicyKind     = "kind"
)

var validPolicies = map[string]bool{"": true, PolicyAlways: true, PolicyStrength: true, PolicyKind: true}

// Spec is the top-level scenario configuration.
// Loaded from YAML via Load(path).
type Spec struct {
	Seed     int64 `yaml:"seed"`
	Directed *bool `yaml:"directed,omitempty"` // nil = directed
	// Nodes lists nodes up front, including isolated ones. Edge endpoints are
	// created on demand and need not be listed.
	Nodes           []string     `yaml:"nodes,omitempty"`
	Edges           []EdgeSpec   `yaml:"edges"`
	DefaultStrength *rv.Spec     `yaml:"default_strength,omitempty"`
	Origin          string       `yaml:"origin"`
	Steps           int          `yaml:"steps,omitempty"` // 0 = run to exhaustion
	Persist         *rv.Spec     `yaml:"persist,omitempty"`
	Selector        SelectorSpec `yaml:"selector"`
	Transmit        TransmitSpec `yaml:"transmit"`
}

// EdgeSpec is one edge of the scenario graph. Strength, when set, wins over
// the scenario's default_strength distribution.
type EdgeSpec struct {
	From     string         `yaml:"from"`
	To       string         `yaml:"to"`
	Strength *float64       `yaml:"strength,omitempty"`
	Kind     string         `yaml:"kind,omitempty"`
	Attrs    map[string]any `yaml:"attrs,omitempty"`
}

// SelectorSpec picks the selector. Batch applies to random selectors, Lag to
// delayed ones.
type SelectorSpec struct {
	Type  string   `yaml:"type"`
	Batch *rv.Spec `yaml:"batch,omitempty"`
	Lag   *rv.Spec `yaml:"lag,omitempty"`
}

// TransmitSpec picks the edge acceptance test. Strengths maps edge kinds to
// acceptance probabilities for the kind policy.
type TransmitSpec struct {
	Policy    string             `yaml:"policy"`
	Strengths map[string]float64 `yaml:"strengths,omitempty"`
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario from YAML bytes with strict field checking.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// IsDirected reports whether the scenario graph is directed (the default).
func (s *Spec) IsDirected() bool {
	return s.Directed == nil || *s.Directed
}

// Validate checks that all fields in the spec are valid.
func (s *Spec) Validate() error {
	if s.Origin == "" {
		return fmt.Errorf("origin is required")
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", s.Steps)
	}
	known := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n == "" {
			return fmt.Errorf("nodes: empty node name")
		}
		known[n] = true
	}
	for i, e := range s.Edges {
		if err := validateEdge(&e, i); err != nil {
			return err
		}
		known[e.From], known[e.To] = true, true
	}
	if !known[s.Origin] {
		return fmt.Errorf("origin %q is not a node of the graph", s.Origin)
	}
	if s.DefaultStrength != nil {
		if _, err := rv.New(*s.DefaultStrength); err != nil {
			return fmt.Errorf("default_strength: %w", err)
		}
	}
	if s.Persist != nil {
		if err := validateCount("persist", s.Persist, 0); err != nil {
			return err
		}
	}
	if err := s.Selector.validate(); err != nil {
		return err
	}
	return s.Transmit.validate()
}

func validateEdge(e *EdgeSpec, idx int) error {
	prefix := fmt.Sprintf("edges[%d]", idx)
	if e.From == "" || e.To == "" {
		return fmt.Errorf("%s: from and to are required", prefix)
	}
	if e.Strength != nil {
		if err := validateProbability(prefix+".strength", *e.Strength); err != nil {
			return err
		}
	}
	return nil
}

func (s *SelectorSpec) validate() error {
	if !selector.ValidTypes[s.Type] {
		return fmt.Errorf("selector: unknown type %q; valid: fifo, random, delayed", s.Type)
	}
	if s.Batch != nil {
		if s.Type != selector.TypeRandom {
			logrus.Warnf("selector.batch is ignored for selector type %q", s.Type)
		} else if err := validateBatch(s.Batch); err != nil {
			return err
		}
	}
	if s.Lag != nil {
		if s.Type != selector.TypeDelayed {
			logrus.Warnf("selector.lag is ignored for selector type %q", s.Type)
		} else if err := validateCount("selector.lag", s.Lag, 0); err != nil {
			return err
		}
	}
	return nil
}

func (t *TransmitSpec) validate() error {
	if !validPolicies[t.Policy] {
		return fmt.Errorf("transmit: unknown policy %q; valid: always, strength, kind", t.Policy)
	}
	if len(t.Strengths) > 0 && t.Policy != PolicyKind {
		logrus.Warnf("transmit.strengths is ignored for policy %q", t.Policy)
	}
	for kind, p := range t.Strengths {
		if err := validateProbability("transmit.strengths."+kind, p); err != nil {
			return err
		}
	}
	return nil
}

// validateCount rejects distributions whose rounded draws can fall below floor.
func validateCount(name string, spec *rv.Spec, floor float64) error {
	if _, err := rv.New(*spec); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	lowest, _ := drawRange(spec)
	if math.Round(lowest) < floor {
		return fmt.Errorf("%s: draws must be >= %v, distribution %q can yield %v", name, floor, spec.Type, lowest)
	}
	return nil
}

// validateBatch requires batch draws that never go negative and can reach 1.
// A fixed batch must be at least 1.
func validateBatch(spec *rv.Spec) error {
	floor := 0.0
	if spec.Type == "fixed" {
		floor = 1
	}
	if err := validateCount("selector.batch", spec, floor); err != nil {
		return err
	}
	if _, highest := drawRange(spec); math.Round(highest) < 1 {
		return fmt.Errorf("selector.batch: draws never reach 1, distribution %q peaks at %v", spec.Type, highest)
	}
	return nil
}

// drawRange returns the bounds of the draws of a valid spec, scale applied.
// Beta draws lie in [0, 1] before scaling.
func drawRange(spec *rv.Spec) (lowest, highest float64) {
	scale := 1.0
	if f, ok := spec.Params["scale"]; ok {
		scale = f
	}
	var lo, hi float64
	switch spec.Type {
	case "fixed":
		lo, hi = spec.Params["value"], spec.Params["value"]
	case "uniform":
		lo, hi = spec.Params["min"], spec.Params["max"]
	case "beta":
		lo, hi = 0, 1
	}
	return math.Min(lo*scale, hi*scale), math.Max(lo*scale, hi*scale)
}

func validateProbability(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 || val > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", name, val)
	}
	return nil
}
