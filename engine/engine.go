// Package engine drives a planning problem to its goal: it repeatedly asks
// the search driver for the next best action from the current state,
// executes that action against the world, and accumulates the rewards
// collected along the way.
package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"sparseplan/planning"
	"sparseplan/searcher"
)

// ErrDeadEnd reports a non-goal state from which the search produced no
// action to execute.
var ErrDeadEnd = errors.New("dead end")

// DefaultMaxSteps caps how many actions an episode may execute before
// giving up on reaching the goal.
const DefaultMaxSteps = 500

type Option func(*Engine)

// Engine executes one planning episode. Every step runs a fresh search from
// the current state; the executed trajectory itself is kept as a small tree
// of performed actions, mirroring how the searches track theirs.
type Engine struct {
	problem  *planning.Problem
	mcts     *searcher.MCTS
	budget   searcher.Budget
	maxSteps int
}

// Step is one executed action with its drawn outcome.
type Step struct {
	Action *planning.Action
	Effect *planning.Effect
	State  planning.State
}

// Plan is the executed trajectory of one episode.
type Plan struct {
	Steps       []Step
	Reward      float64
	GoalReached bool
	Final       planning.State
}

// WithMaxSteps overrides the step cap.
func WithMaxSteps(steps int) Option {
	return func(e *Engine) {
		if steps > 0 {
			e.maxSteps = steps
		}
	}
}

// New creates an engine running the given driver under the given per-search
// budget.
func New(problem *planning.Problem, mcts *searcher.MCTS, budget searcher.Budget, options ...Option) *Engine {
	if mcts == nil || budget == nil {
		panic("engine needs a driver and a budget")
	}

	e := &Engine{
		problem:  problem,
		mcts:     mcts,
		budget:   budget,
		maxSteps: DefaultMaxSteps,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run executes actions until the goal holds or the step cap is hit.
func (e *Engine) Run() (Plan, error) {
	node := searcher.NewRoot(e.problem, e.problem.Init)
	plan := Plan{Final: node.State()}

	log.Info().Str("problem", e.problem.Name).Stringer("state", node.State()).Msg("episode starting")

	for !node.IsGoal() {
		if len(plan.Steps) >= e.maxSteps {
			return plan, fmt.Errorf("no goal within %d steps", e.maxSteps)
		}

		result := e.mcts.Search(node.State(), e.problem, e.budget)
		if result.Action == nil {
			return plan, fmt.Errorf("state %s offers no action: %w", node.State(), ErrDeadEnd)
		}

		next, err := node.PerformAction(result.Action)
		if err != nil {
			return plan, err
		}

		plan.Steps = append(plan.Steps, Step{
			Action: result.Action,
			Effect: next.Effect(),
			State:  next.State(),
		})
		plan.Reward += next.Effect().Reward
		plan.Final = next.State()

		log.Info().
			Int("step", len(plan.Steps)).
			Str("action", result.Action.Name).
			Stringer("state", next.State()).
			Float64("reward", plan.Reward).
			Msg("action executed")

		node = next
	}

	plan.Reward += e.problem.GoalReward
	plan.GoalReached = true
	log.Info().Int("steps", len(plan.Steps)).Float64("reward", plan.Reward).Msg("goal reached")
	return plan, nil
}
