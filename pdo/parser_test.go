package pdo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sparseplan/planning"
)

const maffiaDomain = `
(define (problem example-maffia)
(:init (and guns riches))

(:goal (and house yacht (not guns)))

(:goal-reward 1)

(:action traffic
 :precondition riches
 :effect (probabilistic 9/10 (and house (not riches))
                        1/10 (not riches)
         )
 )

(:action raid
 :precondition (and guns riches)
 :effect (probabilistic 5/10 (not guns riches)
                        2/10 yacht
                        3/10 (and yacht (not riches))
         )
)

(:action beg
 :effect (probabilistic 1/4  guns
                        3/20 riches
                        1/20 house
                        1/20 yacht
         )
)

(:action plead
 :precondition (not riches)
 :effect (probabilistic 0.8 yacht
                        0.2 (decrease (reward) 0.6))
)

)`

func findAction(t *testing.T, p *planning.Problem, name string) *planning.Action {
	t.Helper()
	for _, a := range p.Actions {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("action %s not found", name)
	return nil
}

func TestParse(t *testing.T) {
	t.Run("parsing the problem skeleton", func(t *testing.T) {
		problem, err := Parse(maffiaDomain)

		require.NoError(t, err)
		require.Equal(t, "example-maffia", problem.Name)
		require.True(t, problem.Init.Equal(planning.NewState("guns", "riches")),
			"Init section should list the initially true atoms")
		require.Equal(t, 1.0, problem.GoalReward)
		require.Len(t, problem.Actions, 4)
	})

	t.Run("parsing the goal condition", func(t *testing.T) {
		problem, err := Parse(maffiaDomain)

		require.NoError(t, err)
		require.Len(t, problem.Goals, 1)
		goal := problem.Goals[0]
		require.True(t, goal.Pos.Equal(planning.NewState("house", "yacht")),
			"Positive goal atoms should be required")
		require.True(t, goal.Neg.Equal(planning.NewState("guns")),
			"Negated goal atoms should be forbidden")
		require.False(t, problem.GoalReached(problem.Init))
		require.True(t, problem.GoalReached(planning.NewState("house", "yacht")))
	})

	t.Run("parsing fraction probabilities", func(t *testing.T) {
		problem, err := Parse(maffiaDomain)

		require.NoError(t, err)
		traffic := findAction(t, problem, "traffic")
		require.Len(t, traffic.Effects, 2,
			"Complete distribution should need no implicit no-op")
		require.InDelta(t, 0.9, traffic.Effects[0].Probability, 1e-9,
			"9/10 should parse as 0.9 and sort first")
		require.True(t, traffic.Effects[0].Add.Equal(planning.NewState("house")))
		require.True(t, traffic.Effects[0].Delete.Equal(planning.NewState("riches")))
	})

	t.Run("parsing multi-atom negation", func(t *testing.T) {
		problem, err := Parse(maffiaDomain)

		require.NoError(t, err)
		raid := findAction(t, problem, "raid")
		var wiped *planning.Effect
		for _, e := range raid.Effects {
			if e.Delete.Has("guns") {
				wiped = e
			}
		}
		require.NotNil(t, wiped, "(not guns riches) outcome should exist")
		require.True(t, wiped.Delete.Equal(planning.NewState("guns", "riches")),
			"(not a b) should delete every listed atom")
	})

	t.Run("completing an incomplete distribution", func(t *testing.T) {
		problem, err := Parse(maffiaDomain)

		require.NoError(t, err)
		beg := findAction(t, problem, "beg")
		require.Len(t, beg.Effects, 5,
			"Probabilities summing to 0.5 should gain a no-op outcome")
		noop := beg.MostProbableOutcome()
		require.Empty(t, noop.Add, "Most probable outcome should be the no-op")
		require.InDelta(t, 0.5, noop.Probability, 1e-9)
	})

	t.Run("parsing reward adjustments and negative preconditions", func(t *testing.T) {
		problem, err := Parse(maffiaDomain)

		require.NoError(t, err)
		plead := findAction(t, problem, "plead")
		require.False(t, plead.Applicable(planning.NewState("riches")),
			"(not riches) precondition should block rich states")
		require.True(t, plead.Applicable(planning.NewState()))

		var fined *planning.Effect
		for _, e := range plead.Effects {
			if e.Reward != 0 {
				fined = e
			}
		}
		require.NotNil(t, fined, "(decrease (reward) 0.6) outcome should exist")
		require.InDelta(t, -0.6, fined.Reward, 1e-9,
			"Decrease should parse as a negative reward")
	})

	t.Run("promoting a deterministic effect", func(t *testing.T) {
		problem, err := Parse(`(define (problem tiny)
			(:init a)
			(:goal b)
			(:action go :precondition a :effect (and b (not a))))`)

		require.NoError(t, err)
		action := findAction(t, problem, "go")
		require.Len(t, action.Effects, 1,
			"Non-probabilistic effect should become one certain outcome")
		require.InDelta(t, 1.0, action.Effects[0].Probability, 1e-9)
	})

	t.Run("skipping comments", func(t *testing.T) {
		problem, err := Parse(`(define (problem tiny) ; the simplest domain
			(:init a) ; one atom
			(:goal a))`)

		require.NoError(t, err)
		require.Equal(t, "tiny", problem.Name)
	})

	t.Run("rejecting unbalanced parentheses", func(t *testing.T) {
		_, err := Parse(`(define (problem broken) (:init a)`)

		require.Error(t, err, "Unclosed parenthesis should be rejected")
	})

	t.Run("rejecting an unknown section", func(t *testing.T) {
		_, err := Parse(`(define (problem broken) (:frobnicate a))`)

		require.ErrorContains(t, err, ":frobnicate",
			"Unknown sections should be named in the error")
	})

	t.Run("rejecting overweight effect distributions", func(t *testing.T) {
		_, err := Parse(`(define (problem broken)
			(:init a)
			(:goal b)
			(:action go :effect (probabilistic 0.7 b 0.7 (not a))))`)

		require.ErrorIs(t, err, planning.ErrInvalidEffectProbabilities,
			"Validation errors should surface from action construction")
	})

	t.Run("rejecting a malformed number", func(t *testing.T) {
		_, err := Parse(`(define (problem broken)
			(:init a)
			(:action go :effect (probabilistic nine/10 b)))`)

		require.Error(t, err, "Malformed fractions should be rejected")
	})
}
