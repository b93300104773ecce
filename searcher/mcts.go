// Package searcher implements a Monte-Carlo Tree Search driver for
// probabilistic planning problems, enriched with UCB1 action selection and
// PROST-style handling of stochastic action outcomes: alternating state and
// action layers keyed by the (action, effect) pair that produced each state.
//
// Each iteration runs four phases: select a node to grow by descending the
// existing tree, expand it by trying one untried action, roll out a cheap
// simulation to the horizon or a goal, and backpropagate the discounted
// rewards to the root.
package searcher

import (
	"golang.org/x/exp/rand"

	"github.com/rs/zerolog/log"

	"sparseplan/planning"
)

// DefaultDiscounting is the per-depth reward decay applied during backups.
const DefaultDiscounting = 0.9

type Option func(*MCTS)

// MCTS drives the search. One value can run any number of consecutive
// episodes; each episode builds a fresh tree that is private to it.
type MCTS struct {
	horizon     int
	discounting float64
	rng         *rand.Rand

	selectAction  SelectPolicy
	expandAction  ExpandPolicy
	rolloutAction RolloutPolicy
	selectBest    BestPolicy

	metrics Collector
}

// Result reports the outcome of one search episode: the chosen action and,
// for introspection, the root node with the statistics of every root action.
type Result struct {
	Action  *planning.Action
	Actions []ActionInfo
	Root    *Node
	Metric  SearchMetric
}

// WithDiscounting overrides the default reward discounting factor.
func WithDiscounting(discounting float64) Option {
	return func(m *MCTS) {
		if discounting > 0 && discounting <= 1 {
			m.discounting = discounting
		}
	}
}

// WithSeed fixes the random source behind the default policies.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSelectPolicy overrides the UCB1 descent policy.
func WithSelectPolicy(policy SelectPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.selectAction = policy
		}
	}
}

// WithExpandPolicy overrides the uniform-random expansion policy.
func WithExpandPolicy(policy ExpandPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.expandAction = policy
		}
	}
}

// WithRolloutPolicy overrides the uniform-random rollout policy.
func WithRolloutPolicy(policy RolloutPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.rolloutAction = policy
		}
	}
}

// WithBestPolicy overrides the max-mean-reward final choice policy.
func WithBestPolicy(policy BestPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.selectBest = policy
		}
	}
}

// WithMetrics enables per-episode metrics collection.
func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewCollector()
	}
}

// New creates a driver with the given lookahead horizon.
func New(horizon int, options ...Option) *MCTS {
	if horizon <= 0 {
		panic("horizon must be positive")
	}

	m := &MCTS{ // Default values
		horizon:     horizon,
		discounting: DefaultDiscounting,
		rng:         rand.New(rand.NewSource(rand.Uint64())),
		metrics:     NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.selectAction == nil {
		m.selectAction = UCB1Select
	}
	if m.expandAction == nil {
		m.expandAction = RandomUntried(m.rng)
	}
	if m.rolloutAction == nil {
		m.rolloutAction = RandomUntried(m.rng)
	}
	if m.selectBest == nil {
		m.selectBest = MaxMeanReward
	}
	return m
}

// Search runs iterations from the given state until the budget declines,
// then reports the best root action. The budget is consulted once per
// completed iteration.
func (m *MCTS) Search(state planning.State, problem *planning.Problem, budget Budget) Result {
	root := NewRoot(problem, state)
	m.metrics.Start(m.horizon, m.discounting)

	iterations := 0
	for budget(iterations) {
		m.iterate(root)
		iterations++
		m.metrics.AddIteration()
	}

	actions := make([]ActionInfo, 0, len(root.triedOrder))
	for _, action := range root.triedOrder {
		stats := root.tried[action]
		actions = append(actions, ActionInfo{
			Action: action,
			Reward: stats.Reward,
			Visits: stats.Visits,
		})
	}

	return Result{
		Action:  m.selectBest(actions),
		Actions: actions,
		Root:    root,
		Metric:  m.metrics.Complete(),
	}
}

func (m *MCTS) iterate(root *Node) {
	node := root
	depth := 1

	// (1) select: descend through explored nodes until one still has
	// untried actions, has no children, or sits at the horizon
	for len(node.untried) == 0 && len(node.children) > 0 && depth <= m.horizon {
		action := m.selectAction(node)
		node = node.SimulateAction(action, false)
		depth++
	}
	log.Debug().Stringer("state", node.state).Int("depth", depth).Msg("selected node")

	// (2) expand: try one untried action, growing the tracked frontier
	if len(node.untried) > 0 && depth <= m.horizon && !node.isGoal {
		action := m.expandAction(node)
		child, err := node.PerformAction(action)
		if err != nil {
			// The expand policy broke its contract
			panic(err)
		}
		node = child
		depth++
		log.Debug().Str("action", action.Name).Stringer("state", node.state).Msg("expanded node")
	}

	// (3) rollout: cheap simulation past the tree edge
	node, depth = node.RolloutActions(m.rolloutAction, depth, m.horizon)
	if node.isGoal {
		m.metrics.AddGoalRollout()
	}
	log.Debug().Stringer("state", node.state).Int("depth", depth).Bool("goal", node.isGoal).Msg("rollout finished")

	// (4) backpropagate
	node.Update(m.discounting)
}
