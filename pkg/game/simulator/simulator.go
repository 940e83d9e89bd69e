// Package simulator drives one Env with one policy per runner until the run ends.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mazerunner/pkg/engine/logging"
	"mazerunner/pkg/game/gameplay"
	"mazerunner/pkg/game/policy"
	"mazerunner/pkg/game/renderer"
	"mazerunner/pkg/game/state"
)

// ErrPolicyMismatch is returned when policies and runners do not pair up
var ErrPolicyMismatch = errors.New("policies do not match runners")

// Options tune a single run
type Options struct {
	// Renderer, when set, receives a frame every RenderEvery ticks and on the last tick
	Renderer    renderer.Renderer
	RenderEvery int
	Logger      *slog.Logger
	// OnStep, when set, is called after every tick including the last
	OnStep func(env *gameplay.Env)
}

// Run resets env and the policies, then steps until the run is done or ctx
// is cancelled. policies maps runner id to its policy.
func Run(ctx context.Context, env *gameplay.Env, policies map[int]policy.Policy, opts Options) (state.Info, error) {
	logger := logging.OrDiscard(opts.Logger)
	ids := env.Runners()
	if len(ids) != len(policies) {
		return env.Info(), fmt.Errorf("%w: %d runners, %d policies", ErrPolicyMismatch, len(ids), len(policies))
	}
	for _, id := range ids {
		if policies[id] == nil {
			return env.Info(), fmt.Errorf("%w: runner %d has no policy", ErrPolicyMismatch, id)
		}
	}

	every := opts.RenderEvery
	if every <= 0 {
		every = 1
	}

	obs := env.Reset()
	for _, p := range policies {
		p.Reset()
	}
	if err := render(opts.Renderer, env); err != nil {
		return env.Info(), err
	}

	for {
		if err := ctx.Err(); err != nil {
			return env.Info(), fmt.Errorf("run interrupted at tick %d: %w", env.Time(), err)
		}

		// Ask in id order so policies sharing a random source stay deterministic
		actions := make(map[int]state.Action, len(obs))
		for _, id := range ids {
			if o, ok := obs[id]; ok {
				actions[id] = policies[id].DecideAction(o)
			}
		}

		next, _, done, info := env.Step(actions)
		obs = next
		if opts.OnStep != nil {
			opts.OnStep(env)
		}

		if info.Phase == state.PhaseNight {
			logger.Debug("day complete", "day", info.Day, "alive", info.NAlive, "reward", info.TotalReward)
		}
		if done || info.Time%every == 0 {
			if err := render(opts.Renderer, env); err != nil {
				return info, err
			}
		}
		if done {
			logger.Info("run finished",
				"time", info.Time,
				"found_exit", info.FoundExit,
				"alive", info.NAlive,
				"converged", info.Converged,
				"reward", info.TotalReward,
			)
			return info, nil
		}
	}
}

func render(r renderer.Renderer, env *gameplay.Env) error {
	if r == nil {
		return nil
	}
	if err := r.RenderFrame(env.Frame()); err != nil {
		return fmt.Errorf("render tick %d: %w", env.Time(), err)
	}
	return nil
}
