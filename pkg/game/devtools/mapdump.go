// Package devtools provides developer tools for testing and debugging.
package devtools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/generator"
	"mazerunner/pkg/game/state"
)

const mapDumpFilename = "maze.txt"

// cellSymbol returns the single-character symbol for a maze pixel
func cellSymbol(m *generator.Maze, c world.Coord) rune {
	switch {
	case c == m.Exit:
		return 'E'
	case !m.Open.Get(c):
		return '#'
	case m.Scent.Get(c):
		return '*'
	case m.SafeZone.Get(c):
		return ':'
	default:
		return '.'
	}
}

func writeMazeGrid(w io.Writer, m *generator.Maze) {
	for y := 0; y < m.Open.Height(); y++ {
		for x := 0; x < m.Open.Width(); x++ {
			fmt.Fprintf(w, "%c", cellSymbol(m, world.Coord{X: x, Y: y}))
		}
		fmt.Fprintln(w)
	}
}

// writeKnownGrid writes what one runner believes: unexplored cells are '?'
func writeKnownGrid(w io.Writer, explored, known *world.Grid, at world.Coord) {
	for y := 0; y < explored.Height(); y++ {
		for x := 0; x < explored.Width(); x++ {
			c := world.Coord{X: x, Y: y}
			switch {
			case c == at:
				fmt.Fprint(w, "@")
			case !explored.Get(c):
				fmt.Fprint(w, "?")
			case known.Get(c):
				fmt.Fprint(w, ".")
			default:
				fmt.Fprint(w, "#")
			}
		}
		fmt.Fprintln(w)
	}
}

// DumpMaze writes a maze debug dump: metadata, legend, the full layout and
// connectivity statistics. The format is plain key: value sections.
func DumpMaze(w io.Writer, m *generator.Maze, seed int64) {
	open := m.Open.Count()
	reachable := generator.Reachable(m.Open, m.Center()).Count()

	fmt.Fprintln(w, "=== MAZE DUMP ===")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "--- Metadata ---")
	fmt.Fprintf(w, "seed: %d\n", seed)
	fmt.Fprintf(w, "size: %d\n", m.Size)
	fmt.Fprintf(w, "center_size: %d\n", m.CenterSize)
	fmt.Fprintf(w, "grid_width: %d\n", m.Open.Width())
	fmt.Fprintf(w, "grid_height: %d\n", m.Open.Height())
	fmt.Fprintf(w, "coordinate_system: x,y (0-based, y grows downwards)\n")
	fmt.Fprintf(w, "center: %s\n", m.Center())
	fmt.Fprintf(w, "exit: %s\n", m.Exit)
	fmt.Fprintf(w, "exit_distance: %d\n", world.Manhattan(m.Center(), m.Exit))
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Legend ---")
	fmt.Fprintln(w, ". = open  # = wall  : = glade  * = scent  E = exit")
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Map ---")
	writeMazeGrid(w, m)
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Stats ---")
	fmt.Fprintf(w, "open_cells: %d\n", open)
	fmt.Fprintf(w, "reachable_cells: %d\n", reachable)
	fmt.Fprintf(w, "connected: %v\n", open == reachable)
	fmt.Fprintf(w, "glade_cells: %d\n", m.SafeZone.Count())
	fmt.Fprintf(w, "scent_cells: %d\n", m.Scent.Count())
}

// DumpFrame writes the ground truth of a frame followed by each runner's
// own view of the maze
func DumpFrame(w io.Writer, f state.Frame) {
	fmt.Fprintln(w, "=== FRAME DUMP ===")
	fmt.Fprintf(w, "time: %d\n", f.Time)
	fmt.Fprintf(w, "day: %d\n", f.Day)
	fmt.Fprintf(w, "phase: %s\n", f.Phase)
	fmt.Fprintf(w, "total_reward: %.2f\n", f.TotalReward)
	fmt.Fprintln(w, "")

	for _, r := range f.Runners {
		fmt.Fprintf(w, "--- Runner %d ---\n", r.ID)
		fmt.Fprintf(w, "location: %s\n", r.Location)
		fmt.Fprintf(w, "alive: %v\n", r.Alive)
		fmt.Fprintf(w, "action_speed: %d\n", r.ActionSpeed)
		fmt.Fprintf(w, "memory_decay: %d%%\n", r.DecayPercentage)
		if r.AssignedTask != nil {
			fmt.Fprintf(w, "task: %s\n", *r.AssignedTask)
		}
		if r.Explored != nil {
			fmt.Fprintf(w, "explored_cells: %d\n", r.Explored.Count())
			writeKnownGrid(w, r.Explored, r.KnownMaze, r.Location)
		}
		fmt.Fprintln(w, "")
	}

	if len(f.Messages) > 0 {
		fmt.Fprintln(w, "--- Events ---")
		for _, msg := range f.Messages {
			fmt.Fprintf(w, "- %s\n", msg)
		}
	}
}

// DumpMazeToFile writes DumpMaze to path, or to maze.txt in the working
// directory when path is empty. It returns the absolute path written.
func DumpMazeToFile(path string, m *generator.Maze, seed int64) (string, error) {
	if path == "" {
		path = mapDumpFilename
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	DumpMaze(f, m, seed)
	if err := f.Close(); err != nil {
		return "", err
	}
	return absPath, nil
}
