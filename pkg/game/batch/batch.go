// Package batch runs many independent simulations in parallel and records
// one summary per run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mazerunner/pkg/engine/logging"
	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/gameplay"
	"mazerunner/pkg/game/simulator"
	"mazerunner/pkg/game/state"
)

// ErrInvalidBatch is returned for a non-positive run or worker count
var ErrInvalidBatch = errors.New("invalid batch")

// Outcomes reported per run
const (
	OutcomeExit    = "exit"
	OutcomeExtinct = "extinct"
	OutcomeCeiling = "ceiling"
)

// Summary is the result of one run
type Summary struct {
	RunID       string
	Seed        int64
	Time        int
	Day         int
	FoundExit   int
	NAlive      int
	Converged   bool
	TotalReward float64
	// ExploredCells counts cells explored by any runner at the end of the run
	ExploredCells int
	Elapsed       time.Duration
	// Explored holds each runner's explored map at the end of the run, by runner id
	Explored map[int]*world.Grid
	// Extra is what the run's Collector returned from Finish, nil without one
	Extra map[string]any
}

// Collector gathers custom data from one run. Update is called after every
// tick and Finish once after the last; Finish's result lands in Summary.Extra.
type Collector interface {
	Update(env *gameplay.Env)
	Finish(env *gameplay.Env) map[string]any
}

// Outcome classifies how the run ended
func (s Summary) Outcome() string {
	switch {
	case s.FoundExit != state.NoRunner:
		return OutcomeExit
	case s.Converged:
		return OutcomeExtinct
	default:
		return OutcomeCeiling
	}
}

// Runner executes a scenario repeatedly. Run i uses seed BaseSeed+i, so a
// batch is reproducible whatever the worker count.
type Runner struct {
	Scenario simulator.Scenario
	BaseSeed int64
	Workers  int
	Logger   *slog.Logger
	// Metrics is optional
	Metrics *Metrics
	// NewCollector is optional. It is called once per run because runs
	// execute concurrently.
	NewCollector func() Collector
}

// Run executes runs simulations with at most Workers in flight. Summaries
// are returned in run order. The first failing run cancels the rest.
func (r *Runner) Run(ctx context.Context, runs int) ([]Summary, error) {
	if runs < 1 || r.Workers < 1 {
		return nil, fmt.Errorf("%w: %d runs on %d workers", ErrInvalidBatch, runs, r.Workers)
	}
	logger := logging.OrDiscard(r.Logger)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	results := make([]Summary, runs)
	for i := 0; i < runs; i++ {
		seed := r.BaseSeed + int64(i)
		g.Go(func() error {
			summary, err := r.runOne(ctx, seed, logger)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, seed, err)
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, seed int64, logger *slog.Logger) (Summary, error) {
	runID := uuid.NewString()
	logger = logger.With("run", runID, "seed", seed)

	env, policies, err := simulator.Build(r.Scenario, seed, logger)
	if err != nil {
		return Summary{}, err
	}

	opts := simulator.Options{Logger: logger}
	var collector Collector
	if r.NewCollector != nil {
		collector = r.NewCollector()
		opts.OnStep = collector.Update
	}

	r.Metrics.runStarted()
	start := time.Now()
	info, err := simulator.Run(ctx, env, policies, opts)
	elapsed := time.Since(start)
	r.Metrics.runFinished()
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:         runID,
		Seed:          seed,
		Time:          info.Time,
		Day:           info.Day,
		FoundExit:     info.FoundExit,
		NAlive:        info.NAlive,
		Converged:     info.Converged,
		TotalReward:   info.TotalReward,
		ExploredCells: unionCount(info.Explored),
		Elapsed:       elapsed,
		Explored:      info.Explored,
	}
	if collector != nil {
		summary.Extra = collector.Finish(env)
	}
	r.Metrics.observe(summary, len(r.Scenario.Runners))
	return summary, nil
}

func unionCount(explored map[int]*world.Grid) int {
	var union *world.Grid
	for _, g := range explored {
		if union == nil {
			union = g.Clone()
			continue
		}
		union = union.Or(g)
	}
	if union == nil {
		return 0
	}
	return union.Count()
}
