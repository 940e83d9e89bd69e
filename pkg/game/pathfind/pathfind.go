// Package pathfind plans routes over a runner's partially known maze.
package pathfind

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"mazerunner/pkg/engine/world"
)

var (
	// ErrNotWalkable is returned when the origin or a target is a wall
	ErrNotWalkable = errors.New("coordinate is not walkable")
	// ErrUnreachable is returned when no path connects origin and target
	ErrUnreachable = errors.New("target is unreachable")
)

// Path is an ordered walk of adjacent cells. It excludes the origin and ends
// at the target, except the path from a cell to itself which is just that cell.
type Path []world.Coord

// Target returns the last cell of the path
func (p Path) Target() world.Coord {
	return p[len(p)-1]
}

type node struct {
	c   world.Coord
	g   int
	f   int
	seq int
}

// ShortestPaths finds one shortest path per target. The search runs as
// Dijkstra towards all targets and switches to A* with a Manhattan heuristic
// once a single target is left. Unreachable targets get a nil Path.
func ShortestPaths(origin world.Coord, targets []world.Coord, maze *world.Grid) ([]Path, error) {
	if !maze.Get(origin) {
		return nil, fmt.Errorf("origin %v: %w", origin, ErrNotWalkable)
	}
	for _, t := range targets {
		if !maze.Get(t) {
			return nil, fmt.Errorf("target %v: %w", t, ErrNotWalkable)
		}
	}

	paths := make([]Path, len(targets))
	remaining := mapset.New[world.Coord]()
	for _, t := range targets {
		if t != origin {
			remaining.Put(t)
		}
	}

	width := maze.Width()
	index := func(c world.Coord) int { return c.Y*width + c.X }
	dist := make([]int, maze.Len())
	parent := make([]int, maze.Len())
	closed := make([]bool, maze.Len())
	for i := range dist {
		dist[i] = -1
		parent[i] = -1
	}

	var goal *world.Coord
	seq := 0
	pq := heap.New(lessNode)
	push := func(c world.Coord, g int) {
		f := g
		if goal != nil {
			f += world.Manhattan(c, *goal)
		}
		pq.Push(node{c: c, g: g, f: f, seq: seq})
		seq++
	}

	dist[index(origin)] = 0
	push(origin, 0)

	for remaining.Size() > 0 {
		if goal == nil && remaining.Size() == 1 {
			remaining.Each(func(c world.Coord) {
				last := c
				goal = &last
			})
			pq = rekey(pq, *goal)
		}

		current, ok := pq.Pop()
		if !ok {
			break
		}
		ci := index(current.c)
		if closed[ci] || current.g > dist[ci] {
			continue
		}
		closed[ci] = true
		remaining.Remove(current.c)

		for _, n := range current.c.Neighbors() {
			if !maze.Get(n) {
				continue
			}
			ni := index(n)
			ng := current.g + 1
			if closed[ni] || (dist[ni] >= 0 && dist[ni] <= ng) {
				continue
			}
			dist[ni] = ng
			parent[ni] = ci
			push(n, ng)
		}
	}

	for i, t := range targets {
		if t == origin {
			paths[i] = Path{origin}
			continue
		}
		ti := index(t)
		if !closed[ti] {
			continue
		}
		path := make(Path, dist[ti])
		for at := ti; at != index(origin); at = parent[at] {
			path[dist[at]-1] = maze.CoordOf(at)
		}
		paths[i] = path
	}
	return paths, nil
}

// lessNode orders by priority, then by insertion so equal priorities pop deterministically
func lessNode(a, b node) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

// rekey rebuilds the frontier with A* priorities for the remaining goal
func rekey(pq *heap.Heap[node], goal world.Coord) *heap.Heap[node] {
	var items []node
	for pq.Size() > 0 {
		n, _ := pq.Pop()
		n.f = n.g + world.Manhattan(n.c, goal)
		items = append(items, n)
	}
	out := heap.New(lessNode)
	for _, n := range items {
		out.Push(n)
	}
	return out
}

// ShortestPath finds a single shortest path or returns ErrUnreachable
func ShortestPath(origin, target world.Coord, maze *world.Grid) (Path, error) {
	paths, err := ShortestPaths(origin, []world.Coord{target}, maze)
	if err != nil {
		return nil, err
	}
	if paths[0] == nil {
		return nil, fmt.Errorf("%v to %v: %w", origin, target, ErrUnreachable)
	}
	return paths[0], nil
}

// FrontierTiles returns the known-walkable cells bordering at least one
// unexplored cell, in row-major order. Cells off the grid count as unexplored.
func FrontierTiles(knownMaze, explored *world.Grid) []world.Coord {
	var out []world.Coord
	knownMaze.ForEach(func(c world.Coord, open bool) {
		if !open {
			return
		}
		for _, n := range c.Neighbors() {
			if !explored.Get(n) {
				out = append(out, c)
				return
			}
		}
	})
	return out
}

// ComputeExplorePaths returns shortest paths from start to every reachable frontier tile
func ComputeExplorePaths(start world.Coord, knownMaze, explored *world.Grid) ([]Path, error) {
	frontier := FrontierTiles(knownMaze, explored)
	if len(frontier) == 0 {
		return nil, nil
	}
	paths, err := ShortestPaths(start, frontier, knownMaze)
	if err != nil {
		return nil, err
	}
	out := paths[:0]
	for _, p := range paths {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// ClipRetreatPath cuts path at the first cell inside the safe zone. A path
// that never enters the safe zone is returned unchanged.
func ClipRetreatPath(safeZone *world.Grid, path Path) Path {
	for i, c := range path {
		if safeZone.Get(c) {
			return path[:i+1]
		}
	}
	return path
}

// NextDirection returns the step from one cell towards an adjacent one, or Stay
func NextDirection(from, to world.Coord) world.Direction {
	d, ok := world.DirectionBetween(from, to)
	if !ok {
		return world.Stay
	}
	return d
}
