// Package planning defines the probabilistic planning model: propositional
// states under the closed-world assumption, stochastic action effects, and
// the problem description tying them together with a goal condition.
package planning

import (
	"sort"
	"strings"
)

// Atom is an opaque proposition identifier.
type Atom string

// State is the set of atoms currently true; every absent atom is false.
// States are treated as immutable values: deriving operations always return
// a fresh State and never modify the receiver.
type State map[Atom]struct{}

// NewState returns a state containing the given atoms.
func NewState(atoms ...Atom) State {
	s := make(State, len(atoms))
	for _, a := range atoms {
		s[a] = struct{}{}
	}
	return s
}

// Has reports whether the atom is true in this state.
func (s State) Has(a Atom) bool {
	_, ok := s[a]
	return ok
}

// Contains reports whether every atom of other is true in this state.
func (s State) Contains(other State) bool {
	for a := range other {
		if !s.Has(a) {
			return false
		}
	}
	return true
}

// Disjoint reports whether no atom of other is true in this state.
func (s State) Disjoint(other State) bool {
	for a := range other {
		if s.Has(a) {
			return false
		}
	}
	return true
}

// Equal reports whether both states hold exactly the same atoms.
func (s State) Equal(other State) bool {
	return len(s) == len(other) && s.Contains(other)
}

// Atoms returns the atoms of the state in lexicographic order.
func (s State) Atoms() []Atom {
	atoms := make([]Atom, 0, len(s))
	for a := range s {
		atoms = append(atoms, a)
	}
	sort.Slice(atoms, func(i, j int) bool { return atoms[i] < atoms[j] })
	return atoms
}

func (s State) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, a := range s.Atoms() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(a))
	}
	b.WriteString("}")
	return b.String()
}

// Condition pairs a set of atoms that must be absent (Neg) with a set that
// must be present (Pos). Preconditions and goals are disjunctions of such
// conjunctive pairs.
type Condition struct {
	Neg State
	Pos State
}

// Holds reports whether the state satisfies this condition.
func (c Condition) Holds(s State) bool {
	return s.Contains(c.Pos) && s.Disjoint(c.Neg)
}

func (c Condition) String() string {
	parts := make([]string, 0, len(c.Pos)+len(c.Neg))
	for _, a := range c.Pos.Atoms() {
		parts = append(parts, string(a))
	}
	for _, a := range c.Neg.Atoms() {
		parts = append(parts, "-"+string(a))
	}
	return strings.Join(parts, ", ")
}
