// Package renderer turns simulation frames into text. It is a debugging aid
// and has no say over the simulation.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/state"
)

// Icon constants for the maze view
const (
	IconWall   = "#"
	IconOpen   = "."
	IconSafe   = ":"
	IconScent  = "*"
	IconExit   = "E"
	IconTask   = "?"
	IconDead   = "x"
	IconRunner = "@"
)

// Glyph is one rendered cell
type Glyph struct {
	Icon  string
	Style TextStyle
}

// CellGlyph picks the icon for c. Runners draw over tasks, tasks over the
// exit, then scent, safe zone and plain floor.
func CellGlyph(f state.Frame, c world.Coord) Glyph {
	for _, r := range f.Runners {
		if r.Location == c && r.Alive {
			return Glyph{Icon: runnerIcon(r.ID), Style: StyleRunner}
		}
	}
	for _, r := range f.Runners {
		if r.Location == c {
			return Glyph{Icon: IconDead, Style: StyleDead}
		}
	}
	for _, t := range f.Tasks {
		if t == c {
			return Glyph{Icon: IconTask, Style: StyleTask}
		}
	}
	switch {
	case c == f.Exit:
		return Glyph{Icon: IconExit, Style: StyleExit}
	case !f.Open.Get(c):
		return Glyph{Icon: IconWall, Style: StyleWall}
	case f.Scent.Get(c):
		return Glyph{Icon: IconScent, Style: StyleScent}
	case f.SafeZone.Get(c):
		return Glyph{Icon: IconSafe, Style: StyleSafe}
	default:
		return Glyph{Icon: IconOpen, Style: StyleOpen}
	}
}

func runnerIcon(id int) string {
	if id >= 0 && id < 10 {
		return fmt.Sprintf("%d", id)
	}
	return IconRunner
}

// Layout renders every cell of the frame, indexed [y][x]
func Layout(f state.Frame) [][]Glyph {
	rows := make([][]Glyph, f.Open.Height())
	for y := range rows {
		rows[y] = make([]Glyph, f.Open.Width())
		for x := range rows[y] {
			rows[y][x] = CellGlyph(f, world.Coord{X: x, Y: y})
		}
	}
	return rows
}

// StatusLine summarises the frame in one line
func StatusLine(f state.Frame) string {
	alive := 0
	for _, r := range f.Runners {
		if r.Alive {
			alive++
		}
	}
	return fmt.Sprintf("day %d  tick %d  %s  alive %d/%d  reward %.0f",
		f.Day+1, f.Time, f.Phase, alive, len(f.Runners), f.TotalReward)
}

// PlainRenderer writes frames without colours
type PlainRenderer struct {
	w io.Writer
}

// NewPlain creates a colourless renderer writing to w
func NewPlain(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w}
}

// Init is a no-op for plain output
func (p *PlainRenderer) Init() {}

// StyleText returns text unchanged
func (p *PlainRenderer) StyleText(text string, _ TextStyle) string {
	return text
}

// RenderFrame writes the status line, the maze and the recent messages
func (p *PlainRenderer) RenderFrame(f state.Frame) error {
	var sb strings.Builder
	sb.WriteString(StatusLine(f))
	sb.WriteByte('\n')
	for _, row := range Layout(f) {
		for _, g := range row {
			sb.WriteString(g.Icon)
		}
		sb.WriteByte('\n')
	}
	for _, msg := range f.Messages {
		sb.WriteString("- ")
		sb.WriteString(msg)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}
