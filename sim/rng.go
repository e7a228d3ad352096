package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey, graph, and configuration
// MUST produce identical paths and histories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemTransmit is the RNG subsystem for stochastic edge acceptance.
	// Uses master seed directly so a single-subsystem run matches rand.NewSource(seed).
	SubsystemTransmit = "transmit"

	// SubsystemSelector is the RNG subsystem for random-sample selectors.
	SubsystemSelector = "selector"

	// SubsystemBatch is the RNG subsystem for per-pick batch size draws.
	SubsystemBatch = "batch"

	// SubsystemLag is the RNG subsystem for per-item lag draws.
	SubsystemLag = "lag"

	// SubsystemPersist is the RNG subsystem for persist-broadcast draws.
	SubsystemPersist = "persist"

	// SubsystemStrength is the RNG subsystem for sampling edge strengths
	// while a graph is being built.
	SubsystemStrength = "strength"
)

// SubsystemReplicate returns the subsystem name for ensemble replicate N.
func SubsystemReplicate(id int) string {
	return fmt.Sprintf("replicate_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem,
// so that e.g. changing the selector does not shift the transmit draws.
//
// Derivation formula:
//   - For SubsystemTransmit: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Each simulation owns its own PartitionedRNG.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SeedFor(name)))
	p.subsystems[name] = rng
	return rng
}

// SeedFor returns the seed ForSubsystem uses for name, without creating an RNG.
// Ensemble runners use it to hand each replicate its own SimulationKey.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	if name == SubsystemTransmit {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
