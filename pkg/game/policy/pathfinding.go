package policy

import (
	"math"
	"math/rand"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/pathfind"
	"mazerunner/pkg/game/state"
)

// Scorer prepares the tile score for one planning pass. The returned
// function rates an explore path; lower is better.
type Scorer func(obs state.Observation) func(path pathfind.Path) float64

// PathFinding walks to the best frontier tile it can still reach and come
// back from before nightfall, and retreats to the glade otherwise.
type PathFinding struct {
	rng     *rand.Rand
	scorer  Scorer
	plan    pathfind.Path
	planDay int
}

// NewPathFinding creates the frontier explorer biased towards the maze border
func NewPathFinding(rng *rand.Rand) *PathFinding {
	return newPlanner(rng, BorderScorer)
}

func newPlanner(rng *rand.Rand, scorer Scorer) *PathFinding {
	return &PathFinding{rng: rng, scorer: scorer, planDay: -1}
}

// Reset drops the cached plan
func (p *PathFinding) Reset() {
	p.plan = nil
	p.planDay = -1
}

// DecideAction follows the cached plan while it stays valid and replans otherwise
func (p *PathFinding) DecideAction(obs state.Observation) state.Action {
	act := state.Action{Direction: world.Stay}
	if obs.IsAuction() {
		act.Bids = Bids(obs)
	}
	if !obs.CanMove {
		return act
	}

	day := obs.Time / obs.DayLength
	if day != p.planDay {
		p.plan = nil
		p.planDay = day
	}
	if len(p.plan) == 0 || world.Manhattan(obs.Location, p.plan[0]) != 1 {
		p.plan = p.replan(obs)
	}
	if len(p.plan) == 0 {
		return act
	}

	next := p.plan[0]
	p.plan = p.plan[1:]
	act.Direction = pathfind.NextDirection(obs.Location, next)
	return act
}

// replan picks the lowest scoring frontier path whose round trip fits in
// the remaining daylight. Ties are broken at random.
func (p *PathFinding) replan(obs state.Observation) pathfind.Path {
	paths, err := pathfind.ComputeExplorePaths(obs.Location, obs.KnownMaze, obs.Explored)
	if err != nil {
		return p.retreat(obs)
	}

	cost := obs.ActionSpeed + 1
	score := p.scorer(obs)
	var best []pathfind.Path
	bestScore := math.Inf(1)
	for _, path := range paths {
		if path.Target() == obs.Location {
			continue
		}
		back, ok := retreatLength(obs, path.Target())
		if !ok || (len(path)+back)*cost > obs.TicksUntilNight {
			continue
		}
		s := score(path)
		switch {
		case s < bestScore-1e-9:
			bestScore = s
			best = append(best[:0], path)
		case math.Abs(s-bestScore) <= 1e-9:
			best = append(best, path)
		}
	}

	if len(best) == 0 {
		return p.retreat(obs)
	}
	return best[p.rng.Intn(len(best))]
}

// retreat heads for the glade centre, stopping at the first safe cell
func (p *PathFinding) retreat(obs state.Observation) pathfind.Path {
	if obs.SafeZone.Get(obs.Location) {
		return nil
	}
	path, err := pathfind.ShortestPath(obs.Location, obs.SafeZone.Center(), obs.KnownMaze)
	if err != nil {
		return nil
	}
	return pathfind.ClipRetreatPath(obs.SafeZone, path)
}

// retreatLength is the number of moves from c back into the safe zone
func retreatLength(obs state.Observation, c world.Coord) (int, bool) {
	if obs.SafeZone.Get(c) {
		return 0, true
	}
	path, err := pathfind.ShortestPath(c, obs.SafeZone.Center(), obs.KnownMaze)
	if err != nil {
		return 0, false
	}
	return len(pathfind.ClipRetreatPath(obs.SafeZone, path)), true
}

// Bids values each task by how close it is: maxDistance - manhattan(location, task)
func Bids(obs state.Observation) []float64 {
	maxDistance := float64(obs.KnownMaze.Width() + obs.KnownMaze.Height())
	bids := make([]float64, len(obs.Tasks))
	for i, task := range obs.Tasks {
		bids[i] = maxDistance - float64(world.Manhattan(obs.Location, task))
	}
	return bids
}

// BorderScorer prefers short paths to tiles near the outer wall. With an
// assigned task the distance to the task replaces the border distance.
func BorderScorer(obs state.Observation) func(path pathfind.Path) float64 {
	w, h := obs.KnownMaze.Width(), obs.KnownMaze.Height()
	task := obs.AssignedTask
	return func(path pathfind.Path) float64 {
		t := path.Target()
		if task != nil {
			return float64(len(path) + world.Manhattan(t, *task))
		}
		return float64(len(path) + borderDistance(t, w, h))
	}
}

func borderDistance(c world.Coord, w, h int) int {
	return min(c.X, w-1-c.X, c.Y, h-1-c.Y)
}
