package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sparseplan/planning"
	"sparseplan/searcher"
)

func mustAction(t *testing.T, name string, preconditions []planning.Condition, effects []*planning.Effect) *planning.Action {
	t.Helper()
	action, err := planning.NewAction(name, preconditions, effects)
	require.NoError(t, err)
	return action
}

func TestRun(t *testing.T) {
	t.Run("reaching the goal and summing rewards", func(t *testing.T) {
		// One certain action away from the goal, with an effect reward on
		// top of the goal reward.
		build := mustAction(t, "build",
			[]planning.Condition{{Pos: planning.NewState("riches")}},
			[]*planning.Effect{
				planning.NewEffect([]planning.Atom{"riches"}, []planning.Atom{"house"}, 1, 0.5),
			})
		problem := planning.NewProblem("build", planning.NewState("riches"),
			[]planning.Condition{{Pos: planning.NewState("house")}}, 1,
			[]*planning.Action{build})
		e := New(problem, searcher.New(5, searcher.WithSeed(1)), searcher.MaxIterations(100))

		plan, err := e.Run()

		require.NoError(t, err)
		require.True(t, plan.GoalReached, "Episode should reach the goal")
		require.Len(t, plan.Steps, 1, "One action should suffice")
		require.Equal(t, "build", plan.Steps[0].Action.Name)
		require.True(t, plan.Final.Equal(planning.NewState("house")))
		require.InDelta(t, 1.5, plan.Reward, 1e-9,
			"Reward should sum the effect reward and the goal reward")
	})

	t.Run("finishing a stochastic episode", func(t *testing.T) {
		traffic := mustAction(t, "traffic",
			[]planning.Condition{{Pos: planning.NewState("riches")}},
			[]*planning.Effect{
				planning.NewEffect([]planning.Atom{"riches"}, []planning.Atom{"house"}, 0.9, 0),
				planning.NewEffect(nil, nil, 0.1, 0),
			})
		traffic.Seed(5)
		problem := planning.NewProblem("maffia", planning.NewState("riches"),
			[]planning.Condition{{Pos: planning.NewState("house")}}, 1,
			[]*planning.Action{traffic})
		e := New(problem, searcher.New(5, searcher.WithSeed(5)), searcher.MaxIterations(200))

		plan, err := e.Run()

		require.NoError(t, err)
		require.True(t, plan.GoalReached, "Retrying traffic should eventually succeed")
		require.True(t, plan.Final.Has("house"))
	})

	t.Run("reporting a dead end", func(t *testing.T) {
		spend := mustAction(t, "spend",
			[]planning.Condition{{Pos: planning.NewState("riches")}},
			[]*planning.Effect{
				planning.NewEffect([]planning.Atom{"riches"}, nil, 1, 0),
			})
		problem := planning.NewProblem("broke", planning.NewState(),
			[]planning.Condition{{Pos: planning.NewState("gold")}}, 1,
			[]*planning.Action{spend})
		e := New(problem, searcher.New(5, searcher.WithSeed(1)), searcher.MaxIterations(50))

		_, err := e.Run()

		require.ErrorIs(t, err, ErrDeadEnd,
			"A non-goal state without actions should fail the episode")
	})

	t.Run("giving up after the step cap", func(t *testing.T) {
		idle := mustAction(t, "idle", nil, []*planning.Effect{
			planning.NewEffect(nil, nil, 1, 0),
		})
		problem := planning.NewProblem("idle", planning.NewState(),
			[]planning.Condition{{Pos: planning.NewState("gold")}}, 1,
			[]*planning.Action{idle})
		e := New(problem, searcher.New(3, searcher.WithSeed(1)),
			searcher.MaxIterations(10), WithMaxSteps(4))

		plan, err := e.Run()

		require.Error(t, err, "Unreachable goal should exhaust the step cap")
		require.Len(t, plan.Steps, 4, "Executed steps should be reported")
		require.False(t, plan.GoalReached)
	})
}
