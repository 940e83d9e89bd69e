package world

// Direction represents a step a runner can take on the grid
type Direction int

// Direction constants. The numeric values are part of the action contract.
const (
	Up Direction = iota
	Down
	Left
	Right
	Stay
)

// AllDirections returns the four moving directions for iteration
func AllDirections() []Direction {
	return []Direction{Up, Down, Left, Right}
}

// String returns the string representation of a direction
func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Stay:
		return "Stay"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the direction is one of the five known steps
func (d Direction) IsValid() bool {
	return d >= Up && d <= Stay
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Delta returns the x and y offsets for this direction.
// y grows downwards, so Up is a negative y step.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// DirectionBetween returns the direction that moves from one coordinate to an
// adjacent one. Equal coordinates give Stay; non-adjacent ones give false.
func DirectionBetween(from, to Coord) (Direction, bool) {
	if from == to {
		return Stay, true
	}
	for _, d := range AllDirections() {
		if from.Step(d) == to {
			return d, true
		}
	}
	return Stay, false
}
