// Package gameplay runs the day/night simulation: movement, nightly deaths,
// memory consolidation and the task auction.
package gameplay

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"mazerunner/pkg/engine/logging"
	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/auction"
	"mazerunner/pkg/game/generator"
	"mazerunner/pkg/game/runner"
	"mazerunner/pkg/game/state"
)

// ErrInvalidParams is returned when the simulation cannot be constructed
var ErrInvalidParams = errors.New("invalid simulation parameters")

// DaysCeiling is the default run length in days before a run counts as not converged
const DaysCeiling = 365

// Params are the tunable constants of a simulation
type Params struct {
	DayLength int
	// MaxTicks ends the run unconverged. Zero means DayLength * DaysCeiling.
	MaxTicks       int
	DayTickReward  float64
	DeathPenalty   float64
	AuctionEpsilon float64
	TasksPerRunner int
}

// DefaultParams returns the reference tuning for a given day length
func DefaultParams(dayLength int) Params {
	return Params{
		DayLength:      dayLength,
		DayTickReward:  -1,
		DeathPenalty:   99999,
		AuctionEpsilon: auction.DefaultEpsilon,
		TasksPerRunner: 2,
	}
}

func (p Params) maxTicks() int {
	if p.MaxTicks > 0 {
		return p.MaxTicks
	}
	return p.DayLength * DaysCeiling
}

// Validate checks the parameters for impossible values
func (p Params) Validate() error {
	switch {
	case p.DayLength < 2:
		return fmt.Errorf("%w: day length %d must be at least 2", ErrInvalidParams, p.DayLength)
	case p.MaxTicks < 0:
		return fmt.Errorf("%w: max ticks %d is negative", ErrInvalidParams, p.MaxTicks)
	case p.TasksPerRunner < 1:
		return fmt.Errorf("%w: tasks per runner %d must be positive", ErrInvalidParams, p.TasksPerRunner)
	case !(p.AuctionEpsilon > 0):
		return fmt.Errorf("%w: auction epsilon %v must be positive", ErrInvalidParams, p.AuctionEpsilon)
	}
	return nil
}

// Env owns one maze and its runners and advances them tick by tick.
// It is not safe for concurrent use.
type Env struct {
	params  Params
	maze    *generator.Maze
	runners []*runner.Runner
	rng     *rand.Rand
	logger  *slog.Logger
	events  *state.EventLog

	time        int
	totalReward float64
	foundExit   int
	converged   bool
	phase       state.Phase

	// tasks are offered on the tick after a night
	tasks []world.Coord
	// awake holds the runners allowed to move on the next tick
	awake map[int]bool
	obs   map[int]state.Observation
}

// Option configures an Env
type Option func(*Env)

// WithLogger sets the logger used for day reports and neutralized actions
func WithLogger(l *slog.Logger) Option {
	return func(e *Env) { e.logger = logging.OrDiscard(l) }
}

// New validates its inputs and returns a reset environment
func New(params Params, maze *generator.Maze, runners []*runner.Runner, rng *rand.Rand, opts ...Option) (*Env, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if maze == nil {
		return nil, fmt.Errorf("%w: nil maze", ErrInvalidParams)
	}
	if err := maze.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if len(runners) == 0 {
		return nil, fmt.Errorf("%w: at least one runner is required", ErrInvalidParams)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParams)
	}
	seen := make(map[int]bool, len(runners))
	for _, r := range runners {
		if r.ID < 0 || seen[r.ID] {
			return nil, fmt.Errorf("%w: runner ids must be unique and non-negative, got %d", ErrInvalidParams, r.ID)
		}
		seen[r.ID] = true
	}

	sorted := append([]*runner.Runner(nil), runners...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	e := &Env{
		params:  params,
		maze:    maze,
		runners: sorted,
		rng:     rng,
		logger:  logging.Discard(),
		events:  state.NewEventLog(5),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e, nil
}

// Reset puts every runner back in the glade and returns the first observations
func (e *Env) Reset() map[int]state.Observation {
	e.time = 0
	e.totalReward = 0
	e.foundExit = state.NoRunner
	e.converged = false
	e.phase = state.PhaseDay
	e.tasks = nil
	e.events.Clear()

	for _, r := range e.runners {
		r.Reset(e.maze.Center(), e.maze.SafeZone, e.maze.Scent)
	}
	e.events.Add(fmt.Sprintf("%d runners wake up in the glade", len(e.runners)))
	e.prepareObservations()
	return e.Observations()
}

// Step advances the simulation by one tick. Only runners that received an
// observation are read from actions; a missing action means Stay.
func (e *Env) Step(actions map[int]state.Action) (map[int]state.Observation, float64, bool, state.Info) {
	if e.phase == state.PhaseDone {
		return map[int]state.Observation{}, 0, true, e.Info()
	}

	e.time++
	var reward float64
	if e.time%e.params.DayLength == 0 {
		e.phase = state.PhaseNight
		reward = e.night()
	} else {
		e.phase = state.PhaseDay
		if len(e.tasks) > 0 {
			e.runAuction(actions)
		}
		e.moveRunners(actions)
		reward = e.params.DayTickReward
	}
	e.totalReward += reward

	if e.phase != state.PhaseDone && e.time >= e.params.maxTicks() {
		e.phase = state.PhaseDone
		e.converged = false
		e.logger.Warn("tick ceiling reached", "time", e.time, "alive", e.aliveCount())
		e.events.Add("The run hit its tick ceiling")
	}

	e.prepareObservations()
	return e.Observations(), reward, e.phase == state.PhaseDone, e.Info()
}

// Phase returns the phase of the last processed tick
func (e *Env) Phase() state.Phase {
	return e.phase
}

// Time returns the number of processed ticks
func (e *Env) Time() int {
	return e.time
}

// Runners returns the runner ids in ascending order
func (e *Env) Runners() []int {
	ids := make([]int, len(e.runners))
	for i, r := range e.runners {
		ids[i] = r.ID
	}
	return ids
}

// Maze returns the generated maze
func (e *Env) Maze() *generator.Maze {
	return e.maze
}

// Info summarises the run so far
func (e *Env) Info() state.Info {
	explored := make(map[int]*world.Grid, len(e.runners))
	for _, r := range e.runners {
		explored[r.ID] = r.Explored().Clone()
	}
	return state.Info{
		Time:        e.time,
		Day:         e.time / e.params.DayLength,
		FoundExit:   e.foundExit,
		NAlive:      e.aliveCount(),
		Explored:    explored,
		Converged:   e.converged,
		TotalReward: e.totalReward,
		Phase:       e.phase,
	}
}

// Frame returns a snapshot for renderers. Its grids are copies, so callers
// may keep or modify them without touching the simulation.
func (e *Env) Frame() state.Frame {
	runners := make([]runner.State, len(e.runners))
	for i, r := range e.runners {
		runners[i] = r.Snapshot()
	}
	return state.Frame{
		Time:        e.time,
		Day:         e.time / e.params.DayLength,
		Phase:       e.phase,
		Open:        e.maze.Open.Clone(),
		SafeZone:    e.maze.SafeZone.Clone(),
		Scent:       e.maze.Scent.Clone(),
		Exit:        e.maze.Exit,
		Runners:     runners,
		Tasks:       append([]world.Coord(nil), e.tasks...),
		TotalReward: e.totalReward,
		Messages:    e.events.Messages(),
	}
}

func (e *Env) aliveCount() int {
	n := 0
	for _, r := range e.runners {
		if r.Alive() {
			n++
		}
	}
	return n
}

func (e *Env) finish(foundExit int) {
	e.phase = state.PhaseDone
	e.converged = true
	e.foundExit = foundExit
}
