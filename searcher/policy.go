package searcher

import (
	"math"

	"golang.org/x/exp/rand"

	"sparseplan/planning"
)

// Exploration constant for UCB1.
const cUCB1 = 1 / math.Sqrt2

// SelectPolicy picks one of the node's tried actions during tree descent.
type SelectPolicy func(*Node) *planning.Action

// ExpandPolicy picks one of the node's untried actions to expand.
type ExpandPolicy func(*Node) *planning.Action

// RolloutPolicy picks the next action during pure simulation. Returning nil
// stops the rollout.
type RolloutPolicy func(*Node) *planning.Action

// BestPolicy picks the final action to report from the root statistics.
type BestPolicy func([]ActionInfo) *planning.Action

// ActionInfo summarizes one root action after the search.
type ActionInfo struct {
	Action *planning.Action
	Reward float64
	Visits int
}

// UCB1Select picks the tried action maximizing the UCB1 score, balancing the
// mean reward against the exploration bonus. Ties keep the action expanded
// earliest.
func UCB1Select(n *Node) *planning.Action {
	lnN := math.Log(float64(n.Visits()))
	tried := n.TriedActions()

	var best *planning.Action
	bestScore := math.Inf(-1)
	for _, action := range n.TriedOrder() {
		score := ucb1(tried[action], lnN)
		if score > bestScore {
			best = action
			bestScore = score
		}
	}
	return best
}

func ucb1(stats ActionStats, lnN float64) float64 {
	// Prioritize actions that never completed a backup
	if stats.Visits == 0 {
		return math.Inf(1)
	}

	n := float64(stats.Visits)
	return cUCB1*math.Sqrt(lnN/n) + stats.Reward/n
}

// RandomUntried picks uniformly among the node's untried actions, or nil
// when there are none. It serves as the default expand and rollout policy.
func RandomUntried(rng *rand.Rand) func(*Node) *planning.Action {
	return func(n *Node) *planning.Action {
		untried := n.UntriedActions()
		if len(untried) == 0 {
			return nil
		}
		return untried[rng.Intn(len(untried))]
	}
}

// MaxMeanReward picks the action with the highest average reward per visit.
// Ties keep the action listed first.
func MaxMeanReward(actions []ActionInfo) *planning.Action {
	var best *planning.Action
	bestMean := math.Inf(-1)
	for _, info := range actions {
		if info.Visits == 0 {
			continue
		}
		if mean := info.Reward / float64(info.Visits); mean > bestMean {
			best = info.Action
			bestMean = mean
		}
	}
	return best
}
