package vose

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestNew(t *testing.T) {
	t.Run("rejecting an empty distribution", func(t *testing.T) {
		_, err := New([]Weighted[string]{})

		require.ErrorIs(t, err, ErrInvalidDistribution,
			"Should reject an empty element list")
	})

	t.Run("rejecting a negative weight", func(t *testing.T) {
		_, err := New([]Weighted[string]{
			{Weight: 0.5, Item: "a"},
			{Weight: -0.1, Item: "b"},
		})

		require.ErrorIs(t, err, ErrInvalidDistribution,
			"Should reject negative weights")
	})

	t.Run("rejecting a zero total weight", func(t *testing.T) {
		_, err := New([]Weighted[string]{
			{Weight: 0, Item: "a"},
			{Weight: 0, Item: "b"},
		})

		require.ErrorIs(t, err, ErrInvalidDistribution,
			"Should reject a distribution summing to zero")
	})

	t.Run("building one slot per element", func(t *testing.T) {
		table, err := New([]Weighted[string]{
			{Weight: 0.5, Item: "A"},
			{Weight: 0.3, Item: "B"},
			{Weight: 0.2, Item: "C"},
		})

		require.NoError(t, err)
		require.Equal(t, 3, table.Len(), "Should build a 3-slot table")
	})

	t.Run("accepting unnormalized weights", func(t *testing.T) {
		table, err := New([]Weighted[string]{
			{Weight: 5, Item: "A"},
			{Weight: 3, Item: "B"},
			{Weight: 2, Item: "C"},
		})

		require.NoError(t, err)
		require.Equal(t, 3, table.Len(),
			"Should normalize weights internally")
	})

	t.Run("handling a single certain element", func(t *testing.T) {
		table, err := New([]Weighted[string]{{Weight: 1, Item: "only"}})

		require.NoError(t, err)
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 10; i++ {
			require.Equal(t, "only", table.Pick(rng),
				"Should always return the sole element")
		}
	})
}

func TestPick(t *testing.T) {
	t.Run("returning only known elements", func(t *testing.T) {
		table, err := New([]Weighted[string]{
			{Weight: 0.5, Item: "A"},
			{Weight: 0.3, Item: "B"},
			{Weight: 0.2, Item: "C"},
		})
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 1000; i++ {
			got := table.Pick(rng)
			require.Contains(t, []string{"A", "B", "C"}, got,
				"Should only ever return A, B or C")
		}
	})

	t.Run("converging to the weight proportions", func(t *testing.T) {
		weights := map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4}
		elements := make([]Weighted[string], 0, len(weights))
		for item, w := range weights {
			elements = append(elements, Weighted[string]{Weight: w, Item: item})
		}
		table, err := New(elements)
		require.NoError(t, err)

		const draws = 200000
		rng := rand.New(rand.NewSource(7))
		counts := map[string]int{}
		for i := 0; i < draws; i++ {
			counts[table.Pick(rng)]++
		}

		for item, w := range weights {
			expected := w / 10 * draws
			require.InEpsilon(t, expected, float64(counts[item]), 0.05,
				"Frequency of %q should be proportional to its weight", item)
		}
	})

	t.Run("drawing deterministically under a fixed seed", func(t *testing.T) {
		elements := []Weighted[int]{
			{Weight: 0.7, Item: 1},
			{Weight: 0.3, Item: 2},
		}
		table, err := New(elements)
		require.NoError(t, err)

		var first, second []int
		rng := rand.New(rand.NewSource(99))
		for i := 0; i < 50; i++ {
			first = append(first, table.Pick(rng))
		}
		rng = rand.New(rand.NewSource(99))
		for i := 0; i < 50; i++ {
			second = append(second, table.Pick(rng))
		}

		require.Equal(t, first, second,
			"Same seed should reproduce the same draw sequence")
	})
}
