// Package vose implements Vose's alias method for sampling from a discrete
// weighted distribution. Building the alias table is O(n); every draw costs
// exactly two uniform random numbers regardless of the distribution size.
// See http://www.keithschwarz.com/darts-dice-coins/ for a walkthrough.
package vose

import (
	"errors"

	"golang.org/x/exp/rand"
)

// ErrInvalidDistribution reports an empty distribution, a negative weight,
// or a total weight that is not strictly positive.
var ErrInvalidDistribution = errors.New("invalid distribution")

// Weighted pairs an item with its (unnormalized) weight.
type Weighted[T any] struct {
	Weight float64
	Item   T
}

// Each slot holds a cutoff probability and two candidate items: drawing a
// uniform below the cutoff yields the primary item, otherwise the alias.
type slot[T any] struct {
	cutoff  float64
	primary T
	alias   T
}

// Table is an immutable alias table over items of type T.
type Table[T any] struct {
	slots []slot[T]
}

// New builds an alias table from the given weighted items.
func New[T any](elements []Weighted[T]) (*Table[T], error) {
	if len(elements) == 0 {
		return nil, errors.Join(ErrInvalidDistribution, errors.New("no elements"))
	}

	total := 0.0
	for _, e := range elements {
		if e.Weight < 0 {
			return nil, errors.Join(ErrInvalidDistribution, errors.New("negative weight"))
		}
		total += e.Weight
	}
	if total <= 0 {
		return nil, errors.Join(ErrInvalidDistribution, errors.New("total weight must be positive"))
	}

	// Scale every weight so the average is exactly 1, then split the items
	// into those below the average and those at or above it.
	n := len(elements)
	var small, large []Weighted[T]
	for _, e := range elements {
		scaled := Weighted[T]{Weight: e.Weight / total * float64(n), Item: e.Item}
		if scaled.Weight < 1 {
			small = append(small, scaled)
		} else {
			large = append(large, scaled)
		}
	}

	// Pair each below-average item with an above-average one. The small item
	// keeps its probability as the slot cutoff, the large item fills the
	// remainder of the slot and re-enters with its leftover weight.
	slots := make([]slot[T], 0, n)
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		slots = append(slots, slot[T]{cutoff: s.Weight, primary: s.Item, alias: l.Item})

		l.Weight = (l.Weight + s.Weight) - 1
		if l.Weight < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	// Leftovers occupy a full slot on their own (cutoff 1, self-aliased).
	// Numerically both lists can end up non-empty, so drain both.
	for _, rest := range [][]Weighted[T]{large, small} {
		for _, e := range rest {
			slots = append(slots, slot[T]{cutoff: 1, primary: e.Item, alias: e.Item})
		}
	}

	return &Table[T]{slots: slots}, nil
}

// Len returns the number of slots in the table.
func (t *Table[T]) Len() int {
	return len(t.slots)
}

// Pick draws one item, distributed proportionally to the original weights.
func (t *Table[T]) Pick(rng *rand.Rand) T {
	s := t.slots[rng.Intn(len(t.slots))]
	if s.cutoff >= rng.Float64() {
		return s.primary
	}
	return s.alias
}
