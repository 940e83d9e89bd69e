package renderer

import (
	"mazerunner/pkg/game/state"
)

// TextStyle represents different text styling options
type TextStyle int

const (
	StyleNormal TextStyle = iota
	StyleWall
	StyleOpen
	StyleSafe
	StyleScent
	StyleRunner
	StyleDead
	StyleTask
	StyleExit
	StyleSubtle
	StyleHeader
)

// Renderer draws simulation frames. Implementations only read the frame;
// they never reach back into the simulation.
type Renderer interface {
	// Init prepares styles and output
	Init()

	// RenderFrame draws one complete frame
	RenderFrame(f state.Frame) error

	// StyleText applies a style to text and returns the styled string
	StyleText(text string, style TextStyle) string
}
