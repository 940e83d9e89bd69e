// Package world provides generic 2D grid primitives for tile-based simulations.
package world

import (
	"fmt"
	"strings"
)

// Coord is a grid position. X is the column, Y is the row.
type Coord struct {
	X int
	Y int
}

// Step returns the coordinate one step away in the given direction
func (c Coord) Step(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Neighbors returns the four orthogonal neighbours in Up, Down, Left, Right order
func (c Coord) Neighbors() []Coord {
	return []Coord{c.Step(Up), c.Step(Down), c.Step(Left), c.Step(Right)}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan returns the Manhattan distance between two coordinates
func Manhattan(a, b Coord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Grid is a dense boolean map stored row-major.
// Combinators (Or, And, Clone) always return fresh grids; only Set mutates.
type Grid struct {
	width  int
	height int
	cells  []bool
}

// NewGrid creates an all-false grid with the given dimensions
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic("Grid dimensions must be positive")
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

// GridFromRows builds a grid from rows of text where '.' (or any rune other
// than '#') is true and '#' is false. All rows must have equal length.
func GridFromRows(rows ...string) *Grid {
	if len(rows) == 0 {
		panic("GridFromRows needs at least one row")
	}
	g := NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.width {
			panic(fmt.Sprintf("row %d has length %d, want %d", y, len(row), g.width))
		}
		for x, r := range row {
			g.cells[y*g.width+x] = r != '#'
		}
	}
	return g
}

// Width returns the number of columns
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows
func (g *Grid) Height() int {
	return g.height
}

// Len returns the number of cells
func (g *Grid) Len() int {
	return len(g.cells)
}

// InBounds checks if a coordinate is inside the grid
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// IsOnPerimeter checks if a coordinate is on the outer ring of the grid
func (g *Grid) IsOnPerimeter(c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	return c.X == 0 || c.Y == 0 || c.X == g.width-1 || c.Y == g.height-1
}

// Center returns the middle cell of the grid
func (g *Grid) Center() Coord {
	return Coord{X: g.width / 2, Y: g.height / 2}
}

// Get returns the value at c. Out of bounds reads are false.
func (g *Grid) Get(c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.cells[c.Y*g.width+c.X]
}

// Set writes v at c. Returns false if c is out of bounds.
func (g *Grid) Set(c Coord, v bool) bool {
	if !g.InBounds(c) {
		return false
	}
	g.cells[c.Y*g.width+c.X] = v
	return true
}

// At returns the value of the i-th cell in row-major order
func (g *Grid) At(i int) bool {
	return g.cells[i]
}

// CoordOf converts a row-major index to a coordinate
func (g *Grid) CoordOf(i int) Coord {
	return Coord{X: i % g.width, Y: i / g.width}
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	out := &Grid{width: g.width, height: g.height, cells: make([]bool, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// SameShape reports whether two grids have equal dimensions
func (g *Grid) SameShape(other *Grid) bool {
	return other != nil && g.width == other.width && g.height == other.height
}

// Or returns the cell-wise logical OR of g and other
func (g *Grid) Or(other *Grid) *Grid {
	g.mustMatch(other)
	out := g.Clone()
	for i, v := range other.cells {
		out.cells[i] = out.cells[i] || v
	}
	return out
}

// And returns the cell-wise logical AND of g and other
func (g *Grid) And(other *Grid) *Grid {
	g.mustMatch(other)
	out := g.Clone()
	for i, v := range other.cells {
		out.cells[i] = out.cells[i] && v
	}
	return out
}

// Count returns the number of true cells
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.cells {
		if v {
			n++
		}
	}
	return n
}

// Contains reports whether every true cell of other is also true in g
func (g *Grid) Contains(other *Grid) bool {
	g.mustMatch(other)
	for i, v := range other.cells {
		if v && !g.cells[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both grids have the same shape and values
func (g *Grid) Equal(other *Grid) bool {
	if !g.SameShape(other) {
		return false
	}
	for i, v := range g.cells {
		if other.cells[i] != v {
			return false
		}
	}
	return true
}

// ForEach iterates over all cells in row-major order
func (g *Grid) ForEach(fn func(c Coord, v bool)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			fn(Coord{X: x, Y: y}, g.cells[y*g.width+x])
		}
	}
}

// Coords returns every true cell in row-major order
func (g *Grid) Coords() []Coord {
	var out []Coord
	g.ForEach(func(c Coord, v bool) {
		if v {
			out = append(out, c)
		}
	})
	return out
}

// Rows returns a copy of the grid as nested slices indexed [y][x]
func (g *Grid) Rows() [][]bool {
	rows := make([][]bool, g.height)
	for y := range rows {
		rows[y] = make([]bool, g.width)
		copy(rows[y], g.cells[y*g.width:(y+1)*g.width])
	}
	return rows
}

// String renders the grid with '.' for true and '#' for false
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Grid) mustMatch(other *Grid) {
	if !g.SameShape(other) {
		panic("grid shapes differ")
	}
}
