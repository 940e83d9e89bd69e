package simulator

import (
	"fmt"
	"log/slog"
	"math/rand"

	"mazerunner/pkg/game/gameplay"
	"mazerunner/pkg/game/generator"
	"mazerunner/pkg/game/policy"
	"mazerunner/pkg/game/runner"
)

// RunnerSpec describes one runner and the policy that drives it
type RunnerSpec struct {
	Policy      string
	ActionSpeed int
	MemoryDecay int
}

// Scenario is everything needed to build a run except the seed
type Scenario struct {
	MazeSize     int
	CenterSize   int
	ShortcutRate float64
	Params       gameplay.Params
	Runners      []RunnerSpec
}

// Build generates the maze for seed and returns a reset Env with one policy
// per runner. Runner ids follow the order of s.Runners. The maze and the
// simulation share one random stream; every policy gets its own stream
// drawn from it, so equal seeds give equal runs.
func Build(s Scenario, seed int64, logger *slog.Logger) (*gameplay.Env, map[int]policy.Policy, error) {
	gen, err := generator.NewBacktracker(s.MazeSize, s.CenterSize, s.ShortcutRate)
	if err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	maze, err := gen.Generate(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("generate maze: %w", err)
	}

	runners := make([]*runner.Runner, len(s.Runners))
	policies := make(map[int]policy.Policy, len(s.Runners))
	for i, spec := range s.Runners {
		r, err := runner.New(i, spec.ActionSpeed, spec.MemoryDecay)
		if err != nil {
			return nil, nil, err
		}
		p, err := policy.ByName(spec.Policy, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return nil, nil, fmt.Errorf("runner %d: %w", i, err)
		}
		runners[i] = r
		policies[i] = p
	}

	env, err := gameplay.New(s.Params, maze, runners, rng, gameplay.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return env, policies, nil
}
