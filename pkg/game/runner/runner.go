// Package runner holds the per-agent knowledge model: what a runner has seen,
// what it believes about walls and scent, and how it forgets overnight.
package runner

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"mazerunner/pkg/engine/world"
)

// ErrInvalidRunner is returned for impossible speed or decay settings
var ErrInvalidRunner = errors.New("invalid runner configuration")

// Runner is one agent in the maze. Its knowledge grids are private: the
// simulation only ever replaces them with fresh grids, never shares them.
type Runner struct {
	ID int

	location world.Coord
	alive    bool

	explored   *world.Grid
	knownMaze  *world.Grid
	knownScent *world.Grid
	safeZone   *world.Grid

	actionSpeed     int
	waitCounter     int
	decayPercentage int

	assignedTask *world.Coord
}

// State is a read-only copy of a runner used by renderers and summaries
type State struct {
	ID              int
	Location        world.Coord
	Alive           bool
	ActionSpeed     int
	DecayPercentage int
	AssignedTask    *world.Coord
	Explored        *world.Grid
	KnownMaze       *world.Grid
	KnownScent      *world.Grid
}

// New creates a runner. actionSpeed is the number of ticks skipped between
// actions (0 acts every tick), decayPct the share of memory lost each night.
func New(id, actionSpeed, decayPct int) (*Runner, error) {
	if actionSpeed < 0 {
		return nil, fmt.Errorf("%w: runner %d action speed %d is negative", ErrInvalidRunner, id, actionSpeed)
	}
	if decayPct < 0 || decayPct > 100 {
		return nil, fmt.Errorf("%w: runner %d memory decay %d%% outside [0,100]", ErrInvalidRunner, id, decayPct)
	}
	return &Runner{
		ID:              id,
		actionSpeed:     actionSpeed,
		waitCounter:     actionSpeed,
		decayPercentage: decayPct,
	}, nil
}

// Reset places the runner at start and seeds its knowledge from the safe zone
func (r *Runner) Reset(start world.Coord, safeZone, scent *world.Grid) {
	r.location = start
	r.alive = true
	r.safeZone = safeZone.Clone()
	r.explored = safeZone.Clone()
	r.knownMaze = safeZone.Clone()
	r.knownScent = scent.And(safeZone)
	r.waitCounter = r.actionSpeed
	r.assignedTask = nil
}

// Location returns the current position
func (r *Runner) Location() world.Coord { return r.location }

// Alive reports whether the runner survived every night so far
func (r *Runner) Alive() bool { return r.alive }

// ActionSpeed returns the number of ticks skipped between actions
func (r *Runner) ActionSpeed() int { return r.actionSpeed }

// DecayPercentage returns the nightly memory loss in percent
func (r *Runner) DecayPercentage() int { return r.decayPercentage }

// AssignedTask returns the task won at the last auction, or nil
func (r *Runner) AssignedTask() *world.Coord {
	if r.assignedTask == nil {
		return nil
	}
	t := *r.assignedTask
	return &t
}

// Explored returns the explored grid. Callers must not mutate it.
func (r *Runner) Explored() *world.Grid { return r.explored }

// KnownMaze returns the believed walkable grid. Callers must not mutate it.
func (r *Runner) KnownMaze() *world.Grid { return r.knownMaze }

// KnownScent returns the observed scent grid. Callers must not mutate it.
func (r *Runner) KnownScent() *world.Grid { return r.knownScent }

// MoveTo sets the location. The caller guarantees the target is walkable.
func (r *Runner) MoveTo(c world.Coord) { r.location = c }

// Kill marks the runner dead for the rest of the episode
func (r *Runner) Kill() {
	r.alive = false
	r.assignedTask = nil
}

// Assign records the task won in the auction. A nil task clears it.
func (r *Runner) Assign(task *world.Coord) {
	if task == nil {
		r.assignedTask = nil
		return
	}
	t := *task
	r.assignedTask = &t
}

// UpdateMap merges the 3x3 sensor windows centred on the runner into its
// knowledge and marks those cells explored. Cells off the grid are skipped.
func (r *Runner) UpdateMap(mazeWindow, scentWindow world.Window) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c := world.Coord{X: r.location.X + dx, Y: r.location.Y + dy}
			if !r.explored.InBounds(c) {
				continue
			}
			r.explored.Set(c, true)
			if mazeWindow.Get(dx, dy) {
				r.knownMaze.Set(c, true)
			}
			if scentWindow.Get(dx, dy) {
				r.knownScent.Set(c, true)
			}
		}
	}
}

// CheckStatusSpeed advances the wait counter and reports whether the runner acts this tick
func (r *Runner) CheckStatusSpeed() bool {
	if r.waitCounter == 0 {
		r.waitCounter = r.actionSpeed
		return true
	}
	r.waitCounter--
	return false
}

// MemoryDecayMask draws tonight's retain mask. Exactly round(cells*pct/100)
// cells are picked for forgetting; the spawn safe zone is always retained.
func (r *Runner) MemoryDecayMask(rng *rand.Rand) *world.Grid {
	w, h := r.explored.Width(), r.explored.Height()
	total := w * h
	forget := int(math.Round(float64(total) * float64(r.decayPercentage) / 100))

	mask := world.NewGrid(w, h)
	for i := 0; i < total; i++ {
		mask.Set(mask.CoordOf(i), true)
	}
	for _, i := range rng.Perm(total)[:forget] {
		mask.Set(mask.CoordOf(i), false)
	}
	return mask.Or(r.safeZone)
}

// AdoptKnowledge replaces the private grids with shared AND mask. The
// results are always new grids, so runners never alias each other.
func (r *Runner) AdoptKnowledge(explored, maze, scent, mask *world.Grid) {
	r.explored = explored.And(mask)
	r.knownMaze = maze.And(mask)
	r.knownScent = scent.And(mask)
}

// Snapshot returns a deep copy of the runner
func (r *Runner) Snapshot() State {
	s := State{
		ID:              r.ID,
		Location:        r.location,
		Alive:           r.alive,
		ActionSpeed:     r.actionSpeed,
		DecayPercentage: r.decayPercentage,
		AssignedTask:    r.AssignedTask(),
	}
	if r.explored != nil {
		s.Explored = r.explored.Clone()
		s.KnownMaze = r.knownMaze.Clone()
		s.KnownScent = r.knownScent.Clone()
	}
	return s
}
