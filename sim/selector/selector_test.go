package selector

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/broadcast-sim/sim/graph"
)

func drain[T any](s Selector[T]) [][]T {
	var out [][]T
	for batch, ok := s.Pick(); ok; batch, ok = s.Pick() {
		out = append(out, batch)
	}
	return out
}

func TestFIFO_PicksInAddOrder(t *testing.T) {
	s := NewFIFO[int]()
	for i := 0; i < 3; i++ {
		s.Add(i)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, [][]int{{0}, {1}, {2}}, drain[int](s))
}

func TestFIFO_ExhaustedUntilNewItems(t *testing.T) {
	s := NewFIFO[string]()
	s.Add("a")
	_, ok := s.Pick()
	require.True(t, ok)

	_, ok = s.Pick()
	assert.False(t, ok)
	_, ok = s.Pick()
	assert.False(t, ok, "a second pick without Add stays exhausted")

	s.Add("b")
	batch, ok := s.Pick()
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, batch)
}

func TestRandom_PicksWithoutReplacement(t *testing.T) {
	s, err := NewRandom[int](rand.New(rand.NewSource(7)), WithBatchSize(2))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		s.Add(i)
	}

	batches := drain[int](s)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
	all := append(append([]int{}, batches[0]...), batches[1]...)
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2}, all)
	assert.Equal(t, 0, s.Len())
}

// scriptedSource replays fixed Int63 values so Intn results are known exactly.
type scriptedSource struct {
	values []int64
}

func (s *scriptedSource) Int63() int64 {
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func (s *scriptedSource) Seed(int64) {}

func TestRandom_PicksExactItemsForScriptedDraws(t *testing.T) {
	// GIVEN draws Intn(3)=2, Intn(2)=1, then Intn(1)=0 (Int31 is Int63>>32)
	src := &scriptedSource{values: []int64{2 << 32, 1 << 32, 0}}
	s, err := NewRandom[int](rand.New(src), WithBatchSize(2))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		s.Add(i)
	}

	// WHEN the selector is drained
	batches := drain[int](s)

	// THEN the swaps pick items 2 then 0, leaving 1 for the last pick
	assert.Equal(t, [][]int{{2, 0}, {1}}, batches)
	assert.Empty(t, src.values)
}

func TestRandom_SameSeedSameOrder(t *testing.T) {
	// GIVEN two selectors seeded identically
	run := func() [][]int {
		s, err := NewRandom[int](rand.New(rand.NewSource(42)), WithBatchSize(2))
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			s.Add(i)
		}
		return drain[int](s)
	}
	// THEN their picks are identical
	assert.Equal(t, run(), run())
}

func TestRandom_BatchSizeFunc(t *testing.T) {
	sizes := []int{3, 0, 5}
	calls := 0
	s, err := NewRandom[int](rand.New(rand.NewSource(1)), WithBatchSizeFunc(func() int {
		n := sizes[calls]
		calls++
		return n
	}))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		s.Add(i)
	}

	batches := drain[int](s)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Empty(t, batches[1], "a zero draw releases nothing but is not exhaustion")
	assert.Len(t, batches[2], 2)
}

func TestRandom_InvalidConfiguration(t *testing.T) {
	_, err := NewRandom[int](rand.New(rand.NewSource(1)), WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.ErrorIs(t, err, graph.ErrInvalidConfiguration)

	_, err = NewRandom[int](nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewRandom[int](rand.New(rand.NewSource(1)), WithBatchSizeFunc(nil))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDelayed_ReleasesAfterLag(t *testing.T) {
	s, err := NewDelayed[int](2)
	require.NoError(t, err)
	s.Add(0)
	s.Add(1)
	zeroth, ok := s.Pick()
	require.True(t, ok)
	s.Add(2)
	first, _ := s.Pick()
	second, _ := s.Pick()
	third, _ := s.Pick()

	assert.Empty(t, zeroth)
	assert.Empty(t, first)
	assert.Equal(t, []int{0, 1}, second)
	assert.Equal(t, []int{2}, third)
	assert.Equal(t, 4, s.Clock())

	_, ok = s.Pick()
	assert.False(t, ok)
	assert.Equal(t, 4, s.Clock(), "a pick with nothing pending leaves the clock")
}

func TestDelayed_ZeroLagReleasesOnNextPick(t *testing.T) {
	s, err := NewDelayed[string](0)
	require.NoError(t, err)
	s.Add("x")
	batch, ok := s.Pick()
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, batch)
	assert.Equal(t, 1, s.Clock())
}

func TestDelayed_LagResolvedAtAdd(t *testing.T) {
	lags := []int{3, 1, 1}
	i := 0
	s := NewDelayedFunc[string](func() int {
		l := lags[i]
		i++
		return l
	})
	s.Add("slow")
	s.Add("fast-a")
	s.Add("fast-b")

	batches := drain[string](s)

	assert.Equal(t, [][]string{{}, {"fast-a", "fast-b"}, {}, {"slow"}}, batches)
	assert.Equal(t, 3, i, "lag is drawn once per item, never at pick time")
}

func TestDelayed_EmptyPickDoesNotAdvanceClock(t *testing.T) {
	s, err := NewDelayed[int](1)
	require.NoError(t, err)
	_, ok := s.Pick()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Clock())
}

func TestDelayed_NegativeLag(t *testing.T) {
	_, err := NewDelayed[int](-1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	s := NewDelayedFunc[int](func() int { return -1 })
	assert.Panics(t, func() { s.Add(1) })
}

func TestNew_Factory(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{"default is fifo", Config{}, &FIFO[int]{}, false},
		{"fifo", Config{Type: TypeFIFO}, &FIFO[int]{}, false},
		{"random", Config{Type: TypeRandom, BatchSize: 2}, &Random[int]{}, false},
		{"random default size", Config{Type: TypeRandom}, &Random[int]{}, false},
		{"delayed", Config{Type: TypeDelayed, Lag: 2}, &Delayed[int]{}, false},
		{"delayed func", Config{Type: TypeDelayed, LagFunc: func() int { return 1 }}, &Delayed[int]{}, false},
		{"delayed negative", Config{Type: TypeDelayed, Lag: -2}, nil, true},
		{"unknown", Config{Type: "lifo"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New[int](tt.cfg, rng)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestNew_RandomNeedsRNG(t *testing.T) {
	_, err := New[int](Config{Type: TypeRandom}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
