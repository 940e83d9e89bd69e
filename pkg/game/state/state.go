// Package state defines the contracts exchanged between the simulation, its
// policies and its observers.
package state

import (
	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/runner"
)

// Phase is the position of a tick in the day/night cycle
type Phase int

// Phases of the simulation
const (
	PhaseDay Phase = iota
	PhaseNight
	PhaseDone
)

// String returns the display name of the phase
func (p Phase) String() string {
	switch p {
	case PhaseDay:
		return "DAY"
	case PhaseNight:
		return "NIGHT"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// NoRunner marks an Info field that refers to no runner
const NoRunner = -1

// Action is what a policy returns for one tick.
// Bids only matter on the tick that carries auction tasks.
type Action struct {
	Direction world.Direction
	Bids      []float64
}

// Observation is an immutable snapshot handed to a policy. All grids are copies.
type Observation struct {
	RunnerID int
	Time     int

	Explored   *world.Grid
	KnownMaze  *world.Grid
	KnownScent *world.Grid
	SafeZone   *world.Grid

	Location        world.Coord
	TicksUntilNight int
	DayLength       int
	ActionSpeed     int

	// CanMove is false when the runner only wakes up to bid
	CanMove      bool
	AssignedTask *world.Coord
	// Tasks is non-empty only on the auction tick
	Tasks []world.Coord
}

// IsAuction reports whether the observation asks for bids
func (o Observation) IsAuction() bool {
	return len(o.Tasks) > 0
}

// Info summarises the simulation after a step
type Info struct {
	Time        int
	Day         int
	FoundExit   int
	NAlive      int
	Explored    map[int]*world.Grid
	Converged   bool
	TotalReward float64
	Phase       Phase
}

// Done reports whether the run has ended
func (i Info) Done() bool {
	return i.Phase == PhaseDone
}

// Frame is a snapshot of the whole simulation for renderers. It shares no
// memory with the environment that produced it.
type Frame struct {
	Time        int
	Day         int
	Phase       Phase
	Open        *world.Grid
	SafeZone    *world.Grid
	Scent       *world.Grid
	Exit        world.Coord
	Runners     []runner.State
	Tasks       []world.Coord
	TotalReward float64
	Messages    []string
}

// EventLog keeps the most recent simulation messages
type EventLog struct {
	max      int
	messages []string
}

// NewEventLog creates a log holding at most max messages
func NewEventLog(max int) *EventLog {
	return &EventLog{max: max, messages: make([]string, 0, max)}
}

// Add appends a message, dropping the oldest when full
func (l *EventLog) Add(msg string) {
	l.messages = append(l.messages, msg)

	// Keep only the last max messages
	if len(l.messages) > l.max {
		l.messages = l.messages[len(l.messages)-l.max:]
	}
}

// Messages returns a copy of the log
func (l *EventLog) Messages() []string {
	return append([]string(nil), l.messages...)
}

// Clear empties the log
func (l *EventLog) Clear() {
	l.messages = l.messages[:0]
}
