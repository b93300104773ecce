package planning

import (
	"fmt"
	"strings"
)

// Effect is one possible stochastic outcome of applying an action: the atoms
// it removes, the atoms it makes true, the probability of this outcome, and
// the reward collected when it occurs. Effects are immutable once built.
type Effect struct {
	Delete      State
	Add         State
	Probability float64
	Reward      float64
}

// NewEffect builds an effect from its delete and add atom sets.
func NewEffect(delete, add []Atom, probability, reward float64) *Effect {
	return &Effect{
		Delete:      NewState(delete...),
		Add:         NewState(add...),
		Probability: probability,
		Reward:      reward,
	}
}

// Apply computes the successor of state s under this effect: (s \ Delete) ∪
// Add. The add set wins when an atom appears in both. The given state is not
// modified.
func (e *Effect) Apply(s State) State {
	next := make(State, len(s)+len(e.Add))
	for a := range s {
		if !e.Delete.Has(a) {
			next[a] = struct{}{}
		}
	}
	for a := range e.Add {
		next[a] = struct{}{}
	}
	return next
}

func (e *Effect) String() string {
	parts := make([]string, 0, len(e.Add)+len(e.Delete))
	for _, a := range e.Add.Atoms() {
		parts = append(parts, string(a))
	}
	for _, a := range e.Delete.Atoms() {
		parts = append(parts, "-"+string(a))
	}
	out := fmt.Sprintf("%0.2f", e.Probability)
	if len(parts) > 0 {
		out += "  " + strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s  (%+0.2f)", out, e.Reward)
}
