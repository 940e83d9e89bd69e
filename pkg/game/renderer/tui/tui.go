package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"mazerunner/pkg/engine/terminal"
	"mazerunner/pkg/game/renderer"
	"mazerunner/pkg/game/state"
)

// Viewport margins and minimum sizes
const (
	ViewportMinRows = 7
	ViewportMinCols = 15
	// Lines needed outside the maze: status line, blank, message header and
	// up to five messages
	ViewportTopMargin = 8
)

// TUIRenderer is the terminal-based renderer implementation
type TUIRenderer struct {
	w     io.Writer
	clear bool

	colorWall   color.Style
	colorOpen   color.Style
	colorSafe   color.Style
	colorScent  color.Style
	colorRunner color.Style
	colorDead   color.Style
	colorTask   color.Style
	colorExit   color.Style
	colorSubtle color.Style
	colorHeader color.Style
}

// New creates a TUI renderer writing to w. When clear is set and w is a
// terminal, every frame replaces the previous one.
func New(w io.Writer, clear bool) *TUIRenderer {
	return &TUIRenderer{w: w, clear: clear}
}

// Init initializes the colour styles. Colours are disabled when the output
// is not a terminal.
func (t *TUIRenderer) Init() {
	t.colorWall = color.Style{color.FgGray}
	t.colorOpen = color.Style{color.FgWhite}
	t.colorSafe = color.Style{color.FgGreen}
	t.colorScent = color.Style{color.FgYellow}
	t.colorRunner = color.Style{color.FgGreen, color.BgBlack, color.OpBold}
	t.colorDead = color.Style{color.FgRed, color.OpBold}
	t.colorTask = color.Style{color.FgCyan, color.OpBold}
	t.colorExit = color.Style{color.FgMagenta, color.OpBold}
	t.colorSubtle = color.Style{color.FgGray, color.OpBold}
	t.colorHeader = color.Style{color.FgBlue, color.OpBold}

	if !terminal.IsTerminal(t.w) {
		t.clear = false
		color.Disable()
	}
}

// StyleText applies a style to text
func (t *TUIRenderer) StyleText(text string, style renderer.TextStyle) string {
	switch style {
	case renderer.StyleWall:
		return t.colorWall.Sprint(text)
	case renderer.StyleOpen:
		return t.colorOpen.Sprint(text)
	case renderer.StyleSafe:
		return t.colorSafe.Sprint(text)
	case renderer.StyleScent:
		return t.colorScent.Sprint(text)
	case renderer.StyleRunner:
		return t.colorRunner.Sprint(text)
	case renderer.StyleDead:
		return t.colorDead.Sprint(text)
	case renderer.StyleTask:
		return t.colorTask.Sprint(text)
	case renderer.StyleExit:
		return t.colorExit.Sprint(text)
	case renderer.StyleSubtle:
		return t.colorSubtle.Sprint(text)
	case renderer.StyleHeader:
		return t.colorHeader.Sprint(text)
	default:
		return text
	}
}

// RenderFrame draws the status line, the visible part of the maze and the message pane
func (t *TUIRenderer) RenderFrame(f state.Frame) error {
	var sb strings.Builder
	if t.clear {
		sb.WriteString("\033[H\033[2J")
	}
	sb.WriteString(t.StyleText(renderer.StatusLine(f), renderer.StyleHeader))
	sb.WriteString("\n\n")

	layout := renderer.Layout(f)
	x0, y0, x1, y1 := t.viewport(f)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g := layout[y][x]
			sb.WriteString(t.StyleText(g.Icon, g.Style))
		}
		sb.WriteByte('\n')
	}

	if len(f.Messages) > 0 {
		sb.WriteString(t.StyleText("--- events ---", renderer.StyleSubtle))
		sb.WriteByte('\n')
		for _, msg := range f.Messages {
			sb.WriteString(fmt.Sprintf("- %s\n", msg))
		}
	}

	_, err := io.WriteString(t.w, sb.String())
	return err
}

// viewport returns the cell window [x0,x1)x[y0,y1) that fits the terminal,
// centred on the glade when the maze is larger than the screen
func (t *TUIRenderer) viewport(f state.Frame) (x0, y0, x1, y1 int) {
	cols, rows := terminal.SizeOf(t.w)
	rows -= ViewportTopMargin
	cols = max(cols, ViewportMinCols)
	rows = max(rows, ViewportMinRows)

	w, h := f.Open.Width(), f.Open.Height()
	center := f.SafeZone.Center()
	x0, x1 = window(center.X, w, cols)
	y0, y1 = window(center.Y, h, rows)
	return x0, y0, x1, y1
}

// window centres a span of size want on c, clamped to [0,n)
func window(c, n, want int) (lo, hi int) {
	if want >= n {
		return 0, n
	}
	lo = c - want/2
	lo = max(0, min(lo, n-want))
	return lo, lo + want
}

var _ renderer.Renderer = (*TUIRenderer)(nil)

