package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemSelector).Float64()
		v2 := rng2.ForSubsystem(SubsystemSelector).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from subsystem A doesn't affect subsystem B
	rngA := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemTransmit).Float64()
	}
	aSelectorFirst := rngA.ForSubsystem(SubsystemSelector).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	expectedFirst := fresh.ForSubsystem(SubsystemSelector).Float64()

	if aSelectorFirst != expectedFirst {
		t.Errorf("selector first value = %v, want %v (isolation broken)", aSelectorFirst, expectedFirst)
	}
}

func TestPartitionedRNG_TransmitUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	transmit := rng.ForSubsystem(SubsystemTransmit)
	direct := rand.New(rand.NewSource(seed))

	for i := 0; i < 10; i++ {
		if got, want := transmit.Float64(), direct.Float64(); got != want {
			t.Errorf("Value %d: transmit RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForSubsystem(SubsystemLag) != rng.ForSubsystem(SubsystemLag) {
		t.Error("ForSubsystem returned different instances for same name")
	}
}

func TestPartitionedRNG_SeedFor(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(7))
	if rng.SeedFor(SubsystemTransmit) != 7 {
		t.Errorf("SeedFor(transmit) = %d, want 7", rng.SeedFor(SubsystemTransmit))
	}
	if rng.SeedFor(SubsystemReplicate(0)) == rng.SeedFor(SubsystemReplicate(1)) {
		t.Error("replicates 0 and 1 derived the same seed")
	}
	if len(rng.subsystems) != 0 {
		t.Errorf("SeedFor created %d RNGs, want 0", len(rng.subsystems))
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(12345))
	if rng.Key() != SimulationKey(12345) {
		t.Errorf("Key() = %v, want 12345", rng.Key())
	}
}

// === fnv1a64 Tests ===

func TestFnv1a64_Collision(t *testing.T) {
	names := []string{
		SubsystemTransmit,
		SubsystemSelector,
		SubsystemBatch,
		SubsystemLag,
		SubsystemPersist,
		SubsystemStrength,
		SubsystemReplicate(0),
		SubsystemReplicate(1),
		"",
	}

	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemReplicate(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{0, "replicate_0"},
		{12, "replicate_12"},
	}
	for _, tt := range tests {
		if got := SubsystemReplicate(tt.id); got != tt.want {
			t.Errorf("SubsystemReplicate(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func BenchmarkPartitionedRNG_ForSubsystem_CacheHit(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	rng.ForSubsystem(SubsystemTransmit)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForSubsystem(SubsystemTransmit)
	}
}
