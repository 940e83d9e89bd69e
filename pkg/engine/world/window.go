package world

// Window is the 3x3 neighbourhood around a cell, indexed [dy+1][dx+1].
type Window [3][3]bool

// WindowAt reads the 3x3 neighbourhood centred on c. Cells outside the grid read as false.
func (g *Grid) WindowAt(c Coord) Window {
	var w Window
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			w[dy+1][dx+1] = g.Get(Coord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return w
}

// Get returns the window value at offset (dx, dy) from its centre
func (w Window) Get(dx, dy int) bool {
	return w[dy+1][dx+1]
}
