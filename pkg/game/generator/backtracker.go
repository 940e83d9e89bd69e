package generator

import (
	"fmt"
	"math/rand"

	"github.com/zyedidia/generic/stack"

	"mazerunner/pkg/engine/world"
)

// DefaultShortcutRate is the chance that an interior wall slot is knocked open
const DefaultShortcutRate = 0.05

// Backtracker generates mazes with a randomized depth-first recursive backtracker.
// A size×size cell lattice is carved into a (2·size+1)² pixel grid: odd pixels are
// cells, pixels between them are walls. The central glade is pre-carved and a few
// random wall slots are opened afterwards, so the result is not a perfect maze.
type Backtracker struct {
	size         int
	centerSize   int
	shortcutRate float64
}

// NewBacktracker validates the dimensions and returns a generator
func NewBacktracker(size, centerSize int, shortcutRate float64) (*Backtracker, error) {
	switch {
	case size <= 0:
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, size)
	case centerSize <= 0:
		return nil, fmt.Errorf("%w: center size must be positive, got %d", ErrInvalidConfig, centerSize)
	case centerSize >= size:
		return nil, fmt.Errorf("%w: center size %d must be smaller than size %d", ErrInvalidConfig, centerSize, size)
	case shortcutRate < 0 || shortcutRate > 1:
		return nil, fmt.Errorf("%w: shortcut rate %v outside [0,1]", ErrInvalidConfig, shortcutRate)
	}
	return &Backtracker{size: size, centerSize: centerSize, shortcutRate: shortcutRate}, nil
}

// Name returns the name of this generator
func (b *Backtracker) Name() string {
	return "Recursive Backtracker"
}

// Generate creates a new maze. All randomness comes from rng, so equal seeds give equal mazes.
func (b *Backtracker) Generate(rng *rand.Rand) (*Maze, error) {
	n := 2*b.size + 1
	pixels := world.NewGrid(n, n)
	safeZone := world.NewGrid(n, n)

	// Glade around the centre pixel
	lo, hi := b.size-b.centerSize+1, b.size+b.centerSize-1
	for y := lo; y <= hi; y++ {
		for x := lo; x <= hi; x++ {
			pixels.Set(world.Coord{X: x, Y: y}, true)
			safeZone.Set(world.Coord{X: x, Y: y}, true)
		}
	}

	exit := b.carveExit(rng, pixels)

	// Cells already covered by the glade count as visited
	visited := world.NewGrid(b.size, b.size)
	visited.ForEach(func(c world.Coord, _ bool) {
		p := cellPixel(c)
		if p.X >= lo && p.X <= hi && p.Y >= lo && p.Y <= hi {
			visited.Set(c, true)
		}
	})

	b.carvePassages(rng, pixels, visited)
	b.carveGladeEntries(pixels)
	b.openShortcuts(rng, pixels)

	maze := &Maze{
		Open:       pixels,
		SafeZone:   safeZone,
		Scent:      scatterScent(rng, pixels, exit),
		Exit:       exit,
		Size:       b.size,
		CenterSize: b.centerSize,
	}
	if err := maze.Validate(); err != nil {
		return nil, fmt.Errorf("generated invalid maze: %w", err)
	}
	return maze, nil
}

// carveExit opens one perimeter pixel on a random side plus the pixel just inside it
func (b *Backtracker) carveExit(rng *rand.Rand, pixels *world.Grid) world.Coord {
	last := 2 * b.size
	offset := 1 + rng.Intn(last-1)

	var exit, stub world.Coord
	switch rng.Intn(4) {
	case 0: // left
		exit, stub = world.Coord{X: 0, Y: offset}, world.Coord{X: 1, Y: offset}
	case 1: // right
		exit, stub = world.Coord{X: last, Y: offset}, world.Coord{X: last - 1, Y: offset}
	case 2: // bottom
		exit, stub = world.Coord{X: offset, Y: last}, world.Coord{X: offset, Y: last - 1}
	default: // top
		exit, stub = world.Coord{X: offset, Y: 0}, world.Coord{X: offset, Y: 1}
	}
	pixels.Set(exit, true)
	pixels.Set(stub, true)
	return exit
}

// carvePassages runs the backtracker over all unvisited cells
func (b *Backtracker) carvePassages(rng *rand.Rand, pixels, visited *world.Grid) {
	// The east-most cell of the middle row is never inside the glade
	start := world.Coord{X: b.size - 1, Y: b.size / 2}
	visited.Set(start, true)
	pixels.Set(cellPixel(start), true)

	st := stack.New[world.Coord]()
	st.Push(start)

	for st.Size() > 0 {
		current := st.Pop()

		var candidates []world.Coord
		for _, nb := range current.Neighbors() {
			if visited.InBounds(nb) && !visited.Get(nb) {
				candidates = append(candidates, nb)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		st.Push(current)

		next := candidates[rng.Intn(len(candidates))]
		wall := world.Coord{X: current.X + next.X + 1, Y: current.Y + next.Y + 1}
		pixels.Set(cellPixel(next), true)
		pixels.Set(wall, true)

		visited.Set(next, true)
		st.Push(next)
	}
}

// carveGladeEntries opens the four axis-aligned doorways out of the glade.
// Openings that would land on the outer border are skipped so the exit stays unique.
func (b *Backtracker) carveGladeEntries(pixels *world.Grid) {
	center := world.Coord{X: b.size, Y: b.size}
	for _, d := range world.AllDirections() {
		dx, dy := d.Delta()
		for _, k := range []int{b.centerSize, b.centerSize + 1} {
			p := world.Coord{X: center.X + k*dx, Y: center.Y + k*dy}
			if pixels.InBounds(p) && !pixels.IsOnPerimeter(p) {
				pixels.Set(p, true)
			}
		}
	}
}

// openShortcuts knocks down interior wall slots. A slot has exactly one even
// coordinate and always separates two carved cells, so connectivity is preserved.
func (b *Backtracker) openShortcuts(rng *rand.Rand, pixels *world.Grid) {
	last := 2 * b.size
	for y := 1; y < last; y++ {
		for x := 1; x < last; x++ {
			roll := rng.Float64()
			if x%2 == y%2 {
				continue
			}
			if roll < b.shortcutRate {
				pixels.Set(world.Coord{X: x, Y: y}, true)
			}
		}
	}
}

// scatterScent places a leaf on an open pixel with probability 1 - distance/maxDistance
func scatterScent(rng *rand.Rand, pixels *world.Grid, exit world.Coord) *world.Grid {
	scent := world.NewGrid(pixels.Width(), pixels.Height())
	maxDistance := float64(pixels.Width() + pixels.Height() - 4)
	pixels.ForEach(func(c world.Coord, open bool) {
		roll := rng.Float64()
		if open && roll > float64(world.Manhattan(c, exit))/maxDistance {
			scent.Set(c, true)
		}
	})
	return scent
}

func cellPixel(c world.Coord) world.Coord {
	return world.Coord{X: 2*c.X + 1, Y: 2*c.Y + 1}
}

// DefaultGenerator returns the backtracker with the default shortcut rate
func DefaultGenerator(size, centerSize int) (MazeGenerator, error) {
	return NewBacktracker(size, centerSize, DefaultShortcutRate)
}
