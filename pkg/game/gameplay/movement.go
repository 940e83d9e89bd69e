package gameplay

import (
	"context"
	"fmt"

	"mazerunner/pkg/engine/logging"
	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/runner"
	"mazerunner/pkg/game/state"
)

// CanEnter reports whether a runner may step onto c
func (e *Env) CanEnter(c world.Coord) bool {
	return e.maze.Open.Get(c)
}

// moveRunners applies the day moves of every awake runner in id order.
// Reaching the outer border ends the run with that runner as the finder.
func (e *Env) moveRunners(actions map[int]state.Action) {
	for _, r := range e.runners {
		if !r.Alive() || !e.awake[r.ID] {
			continue
		}
		dir := e.direction(r.ID, actions)
		if dir == world.Stay {
			continue
		}
		dest := r.Location().Step(dir)
		if !e.CanEnter(dest) {
			continue
		}
		e.moveRunner(r, dest)

		if e.maze.Open.IsOnPerimeter(dest) {
			e.finish(r.ID)
			e.logger.Info("exit found", "runner", r.ID, "time", e.time, "exit", dest.String())
			e.events.Add(fmt.Sprintf("Runner %d found the exit on day %d", r.ID, e.time/e.params.DayLength+1))
			return
		}
	}
}

// moveRunner relocates r and lets it look around
func (e *Env) moveRunner(r *runner.Runner, dest world.Coord) {
	r.MoveTo(dest)
	r.UpdateMap(e.maze.Open.WindowAt(dest), e.maze.Scent.WindowAt(dest))
	e.logger.Log(context.Background(), logging.LevelTrace, "runner moved", "runner", r.ID, "to", dest.String())
}

// direction reads a runner's requested step, treating anything unusable as Stay
func (e *Env) direction(id int, actions map[int]state.Action) world.Direction {
	act, ok := actions[id]
	if !ok {
		return world.Stay
	}
	if !act.Direction.IsValid() {
		e.logger.Debug("invalid direction neutralized", "runner", id, "direction", int(act.Direction))
		return world.Stay
	}
	return act.Direction
}
