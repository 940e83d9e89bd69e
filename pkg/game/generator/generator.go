package generator

import (
	"errors"
	"fmt"
	"math/rand"

	"mazerunner/pkg/engine/world"
)

// ErrInvalidConfig is returned when a generator is configured with impossible dimensions
var ErrInvalidConfig = errors.New("invalid maze configuration")

// MazeGenerator is an interface for maze generation algorithms
type MazeGenerator interface {
	Generate(rng *rand.Rand) (*Maze, error)
	Name() string
}

// Maze is the immutable output of a generator. None of the grids may be
// mutated after generation; callers that need to write must Clone first.
type Maze struct {
	// Open is true for walkable pixels
	Open *world.Grid
	// SafeZone marks the central glade where runners survive the night
	SafeZone *world.Grid
	// Scent marks open cells carrying a leaf. It is a noisy hint towards Exit.
	Scent *world.Grid

	Exit       world.Coord
	Size       int
	CenterSize int
}

// Center returns the centre pixel, which always lies inside the glade
func (m *Maze) Center() world.Coord {
	return m.Open.Center()
}

// Validate checks the maze for structural issues
func (m *Maze) Validate() error {
	if m.Open == nil || m.SafeZone == nil || m.Scent == nil {
		return errors.New("maze has missing grids")
	}
	if !m.Open.SameShape(m.SafeZone) || !m.Open.SameShape(m.Scent) {
		return errors.New("maze grids have different shapes")
	}
	if !m.Open.IsOnPerimeter(m.Exit) || !m.Open.Get(m.Exit) {
		return fmt.Errorf("exit %v is not an open perimeter cell", m.Exit)
	}
	if !m.SafeZone.Get(m.Center()) {
		return errors.New("maze center is outside the safe zone")
	}
	if !m.Open.Contains(m.SafeZone) {
		return errors.New("safe zone contains walls")
	}
	if !m.Open.Contains(m.Scent) {
		return errors.New("scent lies on walls")
	}
	return nil
}

// Reachable returns every open cell reachable from start with 4-directional moves
func Reachable(open *world.Grid, start world.Coord) *world.Grid {
	visited := world.NewGrid(open.Width(), open.Height())
	if !open.Get(start) {
		return visited
	}
	visited.Set(start, true)
	queue := []world.Coord{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, n := range current.Neighbors() {
			if open.Get(n) && !visited.Get(n) {
				visited.Set(n, true)
				queue = append(queue, n)
			}
		}
	}

	return visited
}
