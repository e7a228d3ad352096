package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildren_ImmediateChildren(t *testing.T) {
	g := newDirected(t)
	require.NoError(t, g.AddEdge(1, 4, WithStrength(0.6)))

	it, err := g.Children(1, ChildrenOptions[int]{})
	require.NoError(t, err)
	batch, ok := it.Next()

	require.True(t, ok)
	assert.Equal(t, []int{2, 4}, batch)
}

func TestChildren_SecondDegree(t *testing.T) {
	tests := []struct {
		name string
		keep bool
		want []int
	}{
		{"excluding duplicates", false, []int{3}},
		{"keeping duplicates", true, []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newDirected(t)
			require.NoError(t, g.AddEdge(1, 4, WithStrength(0.6)))

			it, err := g.Children(1, ChildrenOptions[int]{Degree: 2, KeepDuplicates: tt.keep})
			require.NoError(t, err)
			batches, err := it.Collect()
			require.NoError(t, err)

			require.Len(t, batches, 2)
			assert.Equal(t, []int{2, 4}, batches[0])
			assert.Equal(t, tt.want, batches[1])
		})
	}
}

func TestChildren_Predicate(t *testing.T) {
	g := newDirected(t)
	require.NoError(t, g.AddEdge(1, 4))
	require.NoError(t, g.AddEdge(4, 5))

	it, err := g.Children(1, ChildrenOptions[int]{Degree: 2, Predicate: func(n int) bool { return n != 2 }})
	require.NoError(t, err)
	batches, err := it.Collect()
	require.NoError(t, err)

	assert.Equal(t, [][]int{{4}, {5}}, batches)
}

func TestChildren_LeafIsEmpty(t *testing.T) {
	g := newDirected(t)
	it, err := g.Children(3, ChildrenOptions[int]{})
	require.NoError(t, err)
	batch, ok := it.Next()
	assert.True(t, ok)
	assert.Empty(t, batch)
}

func TestChildren_UnboundedKeepsYieldingEmptyBatches(t *testing.T) {
	g := newDirected(t)
	it, err := g.Children(3, ChildrenOptions[int]{})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		batch, ok := it.Next()
		assert.True(t, ok)
		assert.Empty(t, batch)
	}
	_, err = it.Collect()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestChildren_BoundedStops(t *testing.T) {
	g := newDirected(t)
	it, err := g.Children(1, ChildrenOptions[int]{Degree: 1})
	require.NoError(t, err)
	_, ok := it.Next()
	assert.True(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestChildren_IteratorsAreIndependent(t *testing.T) {
	g := newDirected(t)
	first, err := g.Children(1, ChildrenOptions[int]{Degree: 2})
	require.NoError(t, err)
	a, err := first.Collect()
	require.NoError(t, err)

	second, err := g.Children(1, ChildrenOptions[int]{Degree: 2})
	require.NoError(t, err)
	b, err := second.Collect()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestChildren_Errors(t *testing.T) {
	g := newDirected(t)
	_, err := g.Children(7, ChildrenOptions[int]{})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = g.Children(1, ChildrenOptions[int]{Degree: -1})
	assert.ErrorIs(t, err, ErrInvalidDegree)
	assert.Contains(t, err.Error(), "degree must be >= 0 (0 = unbounded)")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
