package searcher

import (
	"errors"
	"fmt"

	"sparseplan/planning"
)

// ErrIllegalAction reports an attempt to expand an action that is not in the
// node's untried set, e.g. re-trying an already tried action.
var ErrIllegalAction = errors.New("illegal action")

// A child is identified by the action taken and the effect that occurred.
// Two effects producing the same resulting state stay distinct children.
type edge struct {
	action *planning.Action
	effect *planning.Effect
}

// ActionStats tracks the cumulative reward and visit count of a tried action.
type ActionStats struct {
	Reward float64
	Visits int
}

// Node represents one reachable state in the lookahead tree. It tracks which
// applicable actions are still untried, the statistics of the tried ones,
// and one child per (action, effect) pair encountered. The parent link is a
// non-owning back-reference used only during backpropagation.
type Node struct {
	problem *planning.Problem
	parent  *Node
	action  *planning.Action
	effect  *planning.Effect
	state   planning.State
	isGoal  bool

	children map[edge]*Node
	visits   int
	utility  float64

	untried    []*planning.Action
	tried      map[*planning.Action]ActionStats
	triedOrder []*planning.Action
}

// NewRoot creates the root node of a search tree for the given state.
func NewRoot(problem *planning.Problem, state planning.State) *Node {
	return newNode(problem, nil, nil, nil, state)
}

func newNode(problem *planning.Problem, parent *Node, action *planning.Action, effect *planning.Effect, state planning.State) *Node {
	// A state with no applicable actions simply yields an empty untried
	// list; the node then acts as a leaf.
	return &Node{
		problem:  problem,
		parent:   parent,
		action:   action,
		effect:   effect,
		state:    state,
		isGoal:   problem.GoalReached(state),
		children: make(map[edge]*Node),
		untried:  problem.Applicable(state),
		tried:    make(map[*planning.Action]ActionStats),
	}
}

// SimulateAction resolves one effect of the action (sampled, or the
// deterministic most-probable one) and returns the child for that
// (action, effect) pair, creating and registering it on first encounter.
// It never touches the untried/tried bookkeeping, so it is safe for both
// tree descent and rollouts.
func (n *Node) SimulateAction(action *planning.Action, mostProbable bool) *Node {
	var effect *planning.Effect
	if mostProbable {
		effect = action.MostProbableOutcome()
	} else {
		effect = action.Outcome()
	}

	key := edge{action: action, effect: effect}
	if child, ok := n.children[key]; ok {
		return child
	}
	child := newNode(n.problem, n, action, effect, effect.Apply(n.state))
	n.children[key] = child
	return child
}

// PerformAction expands the tree by one statistically tracked node: the
// action moves from the untried list to the tried map (with zero reward and
// visits) and one of its outcomes is materialized as a child.
func (n *Node) PerformAction(action *planning.Action) (*Node, error) {
	at := -1
	for i, a := range n.untried {
		if a == action {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("action %s is not untried at this node: %w", action.Name, ErrIllegalAction)
	}

	n.untried = append(n.untried[:at], n.untried[at+1:]...)
	n.tried[action] = ActionStats{}
	n.triedOrder = append(n.triedOrder, action)
	return n.SimulateAction(action, false), nil
}

// RolloutActions simulates past the tracked tree frontier, following the
// most probable outcome of each action the policy picks, until a goal
// state, the horizon, or a state with no applicable actions. It returns the
// terminal node and the depth reached.
func (n *Node) RolloutActions(rolloutAction RolloutPolicy, depth, horizon int) (*Node, int) {
	node := n
	for !node.isGoal && depth < horizon {
		action := rolloutAction(node)
		if action == nil {
			break
		}
		node = node.SimulateAction(action, true)
		depth++
	}
	return node, depth
}

// Update backpropagates the rewards along the path from this node to the
// root, discounting them per step. Only real transitions, i.e. the root and
// nodes whose action the parent actually tried, receive statistics updates;
// pass-through rollout nodes contribute their rewards but stay untracked so
// selection statistics are never polluted by simulation-only traffic.
func (n *Node) Update(discounting float64) {
	reward := 0.0
	for node := n; node != nil; node = node.parent {
		reward *= discounting
		if node.isGoal {
			reward += node.problem.GoalReward
		}
		if node.effect != nil {
			reward += node.effect.Reward
		}

		real := node.parent == nil
		if !real {
			_, real = node.parent.tried[node.action]
		}
		if real {
			if node.parent != nil {
				stats := node.parent.tried[node.action]
				stats.Reward += reward
				stats.Visits++
				node.parent.tried[node.action] = stats
			}
			node.utility += reward
			node.visits++
		}
	}
}

// State returns the node's world state. Callers must treat it as read-only.
func (n *Node) State() planning.State { return n.state }

// IsGoal reports whether the node's state satisfies the problem goal.
func (n *Node) IsGoal() bool { return n.isGoal }

// Action returns the action that led from the parent to this node, nil at
// the root.
func (n *Node) Action() *planning.Action { return n.action }

// Effect returns the effect that produced this node, nil at the root.
func (n *Node) Effect() *planning.Effect { return n.effect }

// Visits returns how many real transitions passed through this node.
func (n *Node) Visits() int { return n.visits }

// Utility returns the cumulative discounted reward gathered in this node.
func (n *Node) Utility() float64 { return n.utility }

// UntriedActions returns the applicable actions not yet expanded here.
// Callers must treat the slice as read-only.
func (n *Node) UntriedActions() []*planning.Action { return n.untried }

// TriedActions returns the statistics of the expanded actions. Callers must
// treat the map as read-only.
func (n *Node) TriedActions() map[*planning.Action]ActionStats { return n.tried }

// TriedOrder returns the tried actions in the order they were expanded.
func (n *Node) TriedOrder() []*planning.Action { return n.triedOrder }
