package sim

import (
	"math/rand"

	"github.com/inference-sim/broadcast-sim/sim/graph"
)

// AlwaysTransmit accepts every candidate edge.
func AlwaysTransmit[N comparable](_ *Transmission[N], _ graph.Edge[N]) bool {
	return true
}

// Bernoulli returns true with probability p. p outside [0, 1] saturates.
func Bernoulli(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// StrengthTest accepts an edge with probability equal to its strength.
func StrengthTest[N comparable](rng *rand.Rand) TestFunc[N] {
	return func(_ *Transmission[N], e graph.Edge[N]) bool {
		return Bernoulli(rng, e.Strength())
	}
}

// ScaledStrengthTest accepts an edge with probability strength*scale(step),
// where step is the step being computed. Use it for seasonal or decaying
// transmissibility.
func ScaledStrengthTest[N comparable](rng *rand.Rand, scale func(step int) float64) TestFunc[N] {
	return func(tr *Transmission[N], e graph.Edge[N]) bool {
		return Bernoulli(rng, e.Strength()*scale(tr.Steps()))
	}
}

// KindStrengthTest looks the acceptance probability up by edge kind, falling
// back to the edge's own strength for kinds missing from strengths.
func KindStrengthTest[N comparable](rng *rand.Rand, strengths map[string]float64) TestFunc[N] {
	return func(_ *Transmission[N], e graph.Edge[N]) bool {
		p, ok := strengths[e.Kind()]
		if !ok {
			p = e.Strength()
		}
		return Bernoulli(rng, p)
	}
}
