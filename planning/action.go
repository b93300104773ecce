package planning

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/rand"

	"sparseplan/vose"
)

// ErrInvalidEffectProbabilities reports an action whose effect probabilities
// are individually out of range or sum to more than 1.
var ErrInvalidEffectProbabilities = errors.New("invalid effect probabilities")

// Tolerance for floating-point comparisons on probability sums.
const probabilityTolerance = 1e-9

// Action aggregates a precondition disjunction with a complete distribution
// over effects. The effect list always sums to probability 1: when the given
// effects fall short, an implicit no-op effect absorbs the remainder.
// Effects are ordered most probable first, so Effects[0] is the outcome the
// most-probable rollout mode follows.
type Action struct {
	Name          string
	Preconditions []Condition
	Effects       []*Effect

	outcomes *vose.Table[*Effect]
	rng      *rand.Rand
}

// NewAction validates the effect distribution, completes it with the
// implicit no-op if needed, and builds the action's alias table. The table
// is constructed once here and reused for every draw.
func NewAction(name string, preconditions []Condition, effects []*Effect) (*Action, error) {
	total := 0.0
	for _, e := range effects {
		if e.Probability <= 0 || e.Probability > 1 {
			return nil, fmt.Errorf("action %s: effect probability %v out of (0,1]: %w",
				name, e.Probability, ErrInvalidEffectProbabilities)
		}
		total += e.Probability
	}
	if total > 1+probabilityTolerance {
		return nil, fmt.Errorf("action %s: effect probabilities sum to %v: %w",
			name, total, ErrInvalidEffectProbabilities)
	}

	all := make([]*Effect, len(effects))
	copy(all, effects)
	if remainder := 1 - total; remainder > probabilityTolerance {
		// Complete the distribution with the outcome where nothing happens.
		all = append(all, NewEffect(nil, nil, remainder, 0))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Probability > all[j].Probability
	})

	elements := make([]vose.Weighted[*Effect], len(all))
	for i, e := range all {
		elements[i] = vose.Weighted[*Effect]{Weight: e.Probability, Item: e}
	}
	outcomes, err := vose.New(elements)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", name, err)
	}

	return &Action{
		Name:          name,
		Preconditions: preconditions,
		Effects:       all,
		outcomes:      outcomes,
		rng:           rand.New(rand.NewSource(rand.Uint64())),
	}, nil
}

// Applicable reports whether at least one precondition holds in the state.
// An action without preconditions is always applicable.
func (a *Action) Applicable(s State) bool {
	if len(a.Preconditions) == 0 {
		return true
	}
	for _, c := range a.Preconditions {
		if c.Holds(s) {
			return true
		}
	}
	return false
}

// Outcome draws one effect according to the action's distribution. This is
// the stochastic transition function.
func (a *Action) Outcome() *Effect {
	return a.outcomes.Pick(a.rng)
}

// MostProbableOutcome deterministically returns the highest-probability
// effect, trading exactness for reproducibility on long rollouts.
func (a *Action) MostProbableOutcome() *Effect {
	return a.Effects[0]
}

// Seed replaces the action's random source, fixing the draw sequence.
func (a *Action) Seed(seed uint64) {
	a.rng = rand.New(rand.NewSource(seed))
}

func (a *Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", a.Name)
	b.WriteString("  preconditions:\n")
	if len(a.Preconditions) == 0 {
		b.WriteString("    (none)\n")
	}
	for _, c := range a.Preconditions {
		fmt.Fprintf(&b, "    -> %s\n", c)
	}
	b.WriteString("  effects:\n")
	for _, e := range a.Effects {
		fmt.Fprintf(&b, "    %s\n", e)
	}
	return b.String()
}
