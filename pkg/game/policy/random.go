package policy

import (
	"math/rand"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/state"
)

// PureRandom steps in a random direction and bids random values
type PureRandom struct {
	rng *rand.Rand
}

// NewPureRandom creates a random policy drawing from rng
func NewPureRandom(rng *rand.Rand) *PureRandom {
	return &PureRandom{rng: rng}
}

// DecideAction picks any of the five steps uniformly
func (p *PureRandom) DecideAction(obs state.Observation) state.Action {
	act := state.Action{Direction: world.Direction(p.rng.Intn(int(world.Stay) + 1))}
	if obs.IsAuction() {
		act.Bids = make([]float64, len(obs.Tasks))
		for i := range act.Bids {
			act.Bids[i] = p.rng.Float64()
		}
	}
	return act
}

// Reset is a no-op; the policy keeps no plan
func (p *PureRandom) Reset() {}
