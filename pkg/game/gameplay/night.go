package gameplay

import (
	"fmt"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/runner"
	"mazerunner/pkg/game/state"
)

// night kills runners caught outside the glade, merges the survivors'
// knowledge and prepares tomorrow's tasks. It returns the tick reward.
func (e *Env) night() float64 {
	day := e.time / e.params.DayLength
	for _, r := range e.runners {
		if r.Alive() && !e.maze.SafeZone.Get(r.Location()) {
			r.Kill()
			e.logger.Info("runner died", "runner", r.ID, "day", day, "location", r.Location().String())
			e.events.Add(fmt.Sprintf("Runner %d was lost in the maze on night %d", r.ID, day))
		}
	}

	survivors := e.alive()
	if len(survivors) == 0 {
		e.finish(state.NoRunner)
		e.logger.Info("all runners dead", "day", day, "time", e.time)
		e.events.Add("Nobody made it back to the glade")
		return -(e.params.DeathPenalty + e.totalReward)
	}

	explored, maze, scent := consolidate(survivors)
	for _, r := range survivors {
		r.AdoptKnowledge(explored, maze, scent, r.MemoryDecayMask(e.rng))
		r.Assign(nil)
	}

	e.tasks = e.generateTasks(explored, e.params.TasksPerRunner*len(survivors))
	e.logger.Info("night report",
		"day", day,
		"alive", len(survivors),
		"explored", explored.Count(),
		"tasks", len(e.tasks),
	)
	return 0
}

// consolidate ORs the knowledge of every survivor into fresh shared grids
func consolidate(survivors []*runner.Runner) (explored, maze, scent *world.Grid) {
	explored = survivors[0].Explored().Clone()
	maze = survivors[0].KnownMaze().Clone()
	scent = survivors[0].KnownScent().Clone()
	for _, r := range survivors[1:] {
		explored = explored.Or(r.Explored())
		maze = maze.Or(r.KnownMaze())
		scent = scent.Or(r.KnownScent())
	}
	return explored, maze, scent
}

// generateTasks samples distinct unexplored cells uniformly with retry.
// The count is capped by how many unexplored cells exist.
func (e *Env) generateTasks(explored *world.Grid, want int) []world.Coord {
	available := explored.Len() - explored.Count()
	if want > available {
		want = available
	}
	tasks := make([]world.Coord, 0, want)
	chosen := make(map[world.Coord]bool, want)
	for len(tasks) < want {
		c := world.Coord{X: e.rng.Intn(explored.Width()), Y: e.rng.Intn(explored.Height())}
		if explored.Get(c) || chosen[c] {
			continue
		}
		chosen[c] = true
		tasks = append(tasks, c)
	}
	return tasks
}

func (e *Env) alive() []*runner.Runner {
	var out []*runner.Runner
	for _, r := range e.runners {
		if r.Alive() {
			out = append(out, r)
		}
	}
	return out
}
