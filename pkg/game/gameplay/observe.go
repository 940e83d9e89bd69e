package gameplay

import (
	"mazerunner/pkg/game/runner"
	"mazerunner/pkg/game/state"
)

// TicksUntilNight returns how many day ticks remain before the next night
func (e *Env) TicksUntilNight() int {
	return e.params.DayLength - (e.time % e.params.DayLength) - 1
}

// Observations returns the observations pending for the next tick
func (e *Env) Observations() map[int]state.Observation {
	out := make(map[int]state.Observation, len(e.obs))
	for id, o := range e.obs {
		out[id] = o
	}
	return out
}

// prepareObservations decides who acts on the next tick. Nobody acts during
// the night. On the auction tick every living runner observes so it can bid,
// but only runners whose speed counter fired may move.
func (e *Env) prepareObservations() {
	e.obs = make(map[int]state.Observation)
	e.awake = make(map[int]bool)
	if e.phase == state.PhaseDone {
		return
	}
	next := e.time + 1
	if next%e.params.DayLength == 0 {
		return
	}

	auctionTick := len(e.tasks) > 0
	for _, r := range e.runners {
		if !r.Alive() {
			continue
		}
		awake := r.CheckStatusSpeed()
		if !awake && !auctionTick {
			continue
		}
		e.awake[r.ID] = awake
		e.obs[r.ID] = e.observe(r, awake, auctionTick)
	}
}

func (e *Env) observe(r *runner.Runner, canMove, auctionTick bool) state.Observation {
	o := state.Observation{
		RunnerID:        r.ID,
		Time:            e.time,
		Explored:        r.Explored().Clone(),
		KnownMaze:       r.KnownMaze().Clone(),
		KnownScent:      r.KnownScent().Clone(),
		SafeZone:        e.maze.SafeZone.Clone(),
		Location:        r.Location(),
		TicksUntilNight: e.TicksUntilNight(),
		DayLength:       e.params.DayLength,
		ActionSpeed:     r.ActionSpeed(),
		CanMove:         canMove,
		AssignedTask:    r.AssignedTask(),
	}
	if auctionTick {
		o.Tasks = append(o.Tasks, e.tasks...)
	}
	return o
}
