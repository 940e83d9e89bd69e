package policy

import (
	"math"
	"math/rand"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/pathfind"
	"mazerunner/pkg/game/state"
)

// scentFloor keeps the scent likelihood away from 0 and 1 so logs stay finite
const scentFloor = 1e-6

// NewLeafTracker creates a frontier explorer that heads for where the
// scent says the exit probably is
func NewLeafTracker(rng *rand.Rand) *PathFinding {
	return newPlanner(rng, ExitPosteriorScorer)
}

// ExitBelief is a probability distribution over candidate exit cells
type ExitBelief struct {
	Cells []world.Coord
	Probs []float64
}

// ExitPosterior estimates where the exit is from what a runner has seen.
// Every border cell not known to be a wall is a candidate with a uniform
// prior. Each explored open cell contributes the likelihood of its scent
// observation, where a leaf appears with probability 1 - d/maxDistance.
func ExitPosterior(knownScent, knownMaze, explored *world.Grid) ExitBelief {
	var b ExitBelief
	knownMaze.ForEach(func(c world.Coord, open bool) {
		if knownMaze.IsOnPerimeter(c) && (open || !explored.Get(c)) {
			b.Cells = append(b.Cells, c)
		}
	})
	if len(b.Cells) == 0 {
		return b
	}

	maxDistance := float64(knownMaze.Width() + knownMaze.Height() - 4)
	logL := make([]float64, len(b.Cells))
	explored.ForEach(func(c world.Coord, seen bool) {
		if !seen || !knownMaze.Get(c) {
			return
		}
		leaf := knownScent.Get(c)
		for i, e := range b.Cells {
			p := 1 - float64(world.Manhattan(c, e))/maxDistance
			p = math.Min(math.Max(p, scentFloor), 1-scentFloor)
			if leaf {
				logL[i] += math.Log(p)
			} else {
				logL[i] += math.Log(1 - p)
			}
		}
	})

	peak := math.Inf(-1)
	for _, l := range logL {
		peak = math.Max(peak, l)
	}
	total := 0.0
	b.Probs = make([]float64, len(logL))
	for i, l := range logL {
		b.Probs[i] = math.Exp(l - peak)
		total += b.Probs[i]
	}
	for i := range b.Probs {
		b.Probs[i] /= total
	}
	return b
}

// ExpectedDistance returns the posterior mean Manhattan distance from c to the exit
func (b ExitBelief) ExpectedDistance(c world.Coord) float64 {
	d := 0.0
	for i, e := range b.Cells {
		d += b.Probs[i] * float64(world.Manhattan(c, e))
	}
	return d
}

// ExitPosteriorScorer rates a path by its length plus the expected distance
// from its target to the exit. Without candidates it falls back to BorderScorer.
func ExitPosteriorScorer(obs state.Observation) func(path pathfind.Path) float64 {
	belief := ExitPosterior(obs.KnownScent, obs.KnownMaze, obs.Explored)
	if len(belief.Cells) == 0 {
		return BorderScorer(obs)
	}
	return func(path pathfind.Path) float64 {
		return float64(len(path)) + belief.ExpectedDistance(path.Target())
	}
}
