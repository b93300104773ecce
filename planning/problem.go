package planning

import (
	"fmt"
	"strings"
)

// Problem is one planning problem: an initial state, a goal condition
// expressed as a disjunction of conjunctive pairs, the reward for reaching
// any goal state, and the available actions. A Problem is built once (by the
// domain parser or by hand) and shared read-only across the search.
type Problem struct {
	Name       string
	Init       State
	Goals      []Condition
	GoalReward float64
	Actions    []*Action
}

// NewProblem assembles a problem description.
func NewProblem(name string, init State, goals []Condition, goalReward float64, actions []*Action) *Problem {
	return &Problem{
		Name:       name,
		Init:       init,
		Goals:      goals,
		GoalReward: goalReward,
		Actions:    actions,
	}
}

// GoalReached reports whether the state satisfies at least one of the goals.
func (p *Problem) GoalReached(s State) bool {
	for _, g := range p.Goals {
		if g.Holds(s) {
			return true
		}
	}
	return false
}

// Applicable returns the actions whose preconditions hold in the state.
func (p *Problem) Applicable(s State) []*Action {
	var actions []*Action
	for _, a := range p.Actions {
		if a.Applicable(s) {
			actions = append(actions, a)
		}
	}
	return actions
}

func (p *Problem) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem description of %s:\n", p.Name)
	fmt.Fprintf(&b, " init conditions:\n  %s\n", p.Init)
	b.WriteString(" goal conditions:\n")
	for _, g := range p.Goals {
		fmt.Fprintf(&b, "  -> %s\n", g)
	}
	fmt.Fprintf(&b, " goal reward: %0.2f\n", p.GoalReward)
	fmt.Fprintf(&b, " %d actions:\n", len(p.Actions))
	for _, a := range p.Actions {
		for _, line := range strings.Split(strings.TrimRight(a.String(), "\n"), "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}
