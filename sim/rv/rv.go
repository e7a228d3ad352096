// Package rv provides the random variables used to parameterize broadcast
// simulations: edge strengths, selector lags and batch sizes, and
// persist-broadcast durations.
//
// Variables never own randomness; every draw takes the caller's *rand.Rand so
// simulations stay reproducible under a PartitionedRNG.
package rv

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Variable draws real-valued samples.
type Variable interface {
	Sample(rng *rand.Rand) float64
}

// Spec parameterizes a Variable. Loaded from YAML as {type, params}.
type Spec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Fixed always returns the same value.
type Fixed struct {
	Value float64
}

func (f Fixed) Sample(_ *rand.Rand) float64 {
	return f.Value
}

// Uniform draws from [Min, Max).
type Uniform struct {
	Min, Max float64
}

func (u Uniform) Sample(rng *rand.Rand) float64 {
	return distuv.Uniform{Min: u.Min, Max: u.Max, Src: source{rng}}.Rand()
}

// Beta draws from Beta(Alpha, Beta); samples lie in [0, 1], which makes it the
// natural choice for edge strengths.
type Beta struct {
	Alpha, Beta float64
}

func (b Beta) Sample(rng *rand.Rand) float64 {
	return distuv.Beta{Alpha: b.Alpha, Beta: b.Beta, Src: source{rng}}.Rand()
}

// Scaled multiplies every draw of V by Factor.
type Scaled struct {
	V      Variable
	Factor float64
}

func (s Scaled) Sample(rng *rand.Rand) float64 {
	return s.Factor * s.V.Sample(rng)
}

// CalcBetaParams converts a mean and standard deviation into Beta shape
// parameters. It fails when no Beta distribution has those moments.
func CalcBetaParams(mean, sd float64) (alpha, beta float64, err error) {
	if sd <= 0 {
		return 0, 0, fmt.Errorf("cannot calculate alpha/beta for mean %v and sd %v: sd must be positive", mean, sd)
	}
	u, s2 := mean, sd*sd
	alpha = (-u*u*u + u*u - u*s2) / s2
	beta = (u*u*u - 2*u*u + u*s2 + u - s2) / s2
	if alpha <= 0 || beta <= 0 {
		return 0, 0, fmt.Errorf("cannot calculate alpha/beta for mean %v and sd %v", mean, sd)
	}
	return alpha, beta, nil
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// New creates a Variable from a Spec. Recognized types: fixed, uniform, beta.
// Beta accepts either {alpha, beta} or {mean, sd}. Any type also accepts an
// optional "scale" parameter that multiplies every draw.
func New(spec Spec) (Variable, error) {
	v, err := newUnscaled(spec)
	if err != nil {
		return nil, err
	}
	if scale, ok := spec.Params["scale"]; ok {
		return Scaled{V: v, Factor: scale}, nil
	}
	return v, nil
}

func newUnscaled(spec Spec) (Variable, error) {
	switch spec.Type {
	case "fixed":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return Fixed{Value: spec.Params["value"]}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if hi < lo {
			return nil, fmt.Errorf("uniform distribution needs min <= max, got [%v, %v]", lo, hi)
		}
		return Uniform{Min: lo, Max: hi}, nil

	case "beta":
		if _, ok := spec.Params["mean"]; ok {
			if err := requireParam(spec.Params, "sd"); err != nil {
				return nil, err
			}
			a, b, err := CalcBetaParams(spec.Params["mean"], spec.Params["sd"])
			if err != nil {
				return nil, err
			}
			return Beta{Alpha: a, Beta: b}, nil
		}
		if err := requireParam(spec.Params, "alpha", "beta"); err != nil {
			return nil, err
		}
		a, b := spec.Params["alpha"], spec.Params["beta"]
		if a <= 0 || b <= 0 {
			return nil, fmt.Errorf("beta distribution needs positive shape parameters, got alpha=%v beta=%v", a, b)
		}
		return Beta{Alpha: a, Beta: b}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}

// IntFunc binds v to rng and rounds every draw to the nearest integer. Used
// for lags, batch sizes, and persist durations.
func IntFunc(v Variable, rng *rand.Rand) func() int {
	return func() int {
		return int(math.Round(v.Sample(rng)))
	}
}

// FloatFunc binds v to rng.
func FloatFunc(v Variable, rng *rand.Rand) func() float64 {
	return func() float64 {
		return v.Sample(rng)
	}
}

// source adapts a math/rand generator to the Source interface gonum samplers draw from.
type source struct {
	rng *rand.Rand
}

func (s source) Uint64() uint64 { return s.rng.Uint64() }

func (s source) Seed(seed uint64) { s.rng.Seed(int64(seed)) }
