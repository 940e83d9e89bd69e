// Package config loads experiment files for mazerunner.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"mazerunner/pkg/game/gameplay"
	"mazerunner/pkg/game/generator"
	"mazerunner/pkg/game/policy"
	"mazerunner/pkg/game/simulator"
)

// ErrInvalid is returned by Validate for impossible settings
var ErrInvalid = errors.New("invalid configuration")

// Config is one experiment: a maze, its runners and how many times to run it.
type Config struct {
	Maze MazeConfig `yaml:"maze"`

	// DayLength is the number of ticks per day; every DayLength-th tick is a night.
	DayLength int `yaml:"day_length"`

	// MaxDays ends a run unconverged. Zero means the engine default.
	MaxDays int `yaml:"max_days"`

	Rewards RewardConfig  `yaml:"rewards"`
	Auction AuctionConfig `yaml:"auction"`

	// Seed is the base seed. Batch run i uses Seed+i.
	Seed int64 `yaml:"seed"`

	Runners []RunnerConfig `yaml:"runners"`
	Batch   BatchConfig    `yaml:"batch"`

	// LogLevel is one of error, warn, info, debug or trace.
	LogLevel string `yaml:"log_level"`
}

// MazeConfig sizes the generated maze
type MazeConfig struct {
	// Size is the cell lattice edge; the pixel grid is 2*Size+1 wide.
	Size       int     `yaml:"size"`
	CenterSize int     `yaml:"center_size"`
	Shortcuts  float64 `yaml:"shortcut_rate"`
}

// RewardConfig holds the reward magnitudes
type RewardConfig struct {
	DayTick      float64 `yaml:"day_tick"`
	DeathPenalty float64 `yaml:"death_penalty"`
}

// AuctionConfig tunes the nightly task auction
type AuctionConfig struct {
	Epsilon        float64 `yaml:"epsilon"`
	TasksPerRunner int     `yaml:"tasks_per_runner"`
}

// RunnerConfig describes one runner
type RunnerConfig struct {
	Policy                string `yaml:"policy"`
	ActionSpeed           int    `yaml:"action_speed"`
	MemoryDecayPercentage int    `yaml:"memory_decay_percentage"`
}

// BatchConfig controls repeated runs
type BatchConfig struct {
	Runs    int `yaml:"runs"`
	Workers int `yaml:"workers"`
	// Output is an Arrow IPC file for per-run summaries. Empty disables it.
	Output string `yaml:"output,omitempty"`
	// SQLite is a database path for per-run summaries. Empty disables it.
	SQLite string `yaml:"sqlite,omitempty"`
}

// Default returns a two-runner experiment on a 10x10 maze.
func Default() *Config {
	params := gameplay.DefaultParams(300)
	return &Config{
		Maze: MazeConfig{
			Size:       10,
			CenterSize: 4,
			Shortcuts:  generator.DefaultShortcutRate,
		},
		DayLength: params.DayLength,
		MaxDays:   gameplay.DaysCeiling,
		Rewards: RewardConfig{
			DayTick:      params.DayTickReward,
			DeathPenalty: params.DeathPenalty,
		},
		Auction: AuctionConfig{
			Epsilon:        params.AuctionEpsilon,
			TasksPerRunner: params.TasksPerRunner,
		},
		Seed: 1,
		Runners: []RunnerConfig{
			{Policy: "pathfinding"},
			{Policy: "pathfinding"},
		},
		Batch: BatchConfig{
			Runs:    10,
			Workers: 4,
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults,
// then applies environment variable overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	applyEnvOverrides(config)
	return config, nil
}

// Load returns the defaults when path is empty and LoadFromFile otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		config := Default()
		applyEnvOverrides(config)
		return config, nil
	}
	return LoadFromFile(path)
}

// Validate checks that the configuration can build a simulation.
func (c *Config) Validate() error {
	if _, err := generator.NewBacktracker(c.Maze.Size, c.Maze.CenterSize, c.Maze.Shortcuts); err != nil {
		return fmt.Errorf("%w: maze: %v", ErrInvalid, err)
	}
	if c.MaxDays < 0 {
		return fmt.Errorf("%w: max_days must be non-negative, got %d", ErrInvalid, c.MaxDays)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.Runners) == 0 {
		return fmt.Errorf("%w: at least one runner is required", ErrInvalid)
	}
	for i, r := range c.Runners {
		if _, err := policy.ByName(r.Policy, nil); err != nil {
			return fmt.Errorf("%w: runner %d: %v", ErrInvalid, i, err)
		}
		if r.ActionSpeed < 0 {
			return fmt.Errorf("%w: runner %d: action_speed must be non-negative, got %d", ErrInvalid, i, r.ActionSpeed)
		}
		if r.MemoryDecayPercentage < 0 || r.MemoryDecayPercentage > 100 {
			return fmt.Errorf("%w: runner %d: memory_decay_percentage must be between 0 and 100, got %d", ErrInvalid, i, r.MemoryDecayPercentage)
		}
	}
	if c.Batch.Runs < 1 || c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch runs and workers must be positive, got %d and %d", ErrInvalid, c.Batch.Runs, c.Batch.Workers)
	}
	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.LogLevel != "" && !validLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level: %s (valid: error, warn, info, debug, trace)", ErrInvalid, c.LogLevel)
	}
	return nil
}

// Params converts the simulation settings for the engine
func (c *Config) Params() gameplay.Params {
	return gameplay.Params{
		DayLength:      c.DayLength,
		MaxTicks:       c.DayLength * c.MaxDays,
		DayTickReward:  c.Rewards.DayTick,
		DeathPenalty:   c.Rewards.DeathPenalty,
		AuctionEpsilon: c.Auction.Epsilon,
		TasksPerRunner: c.Auction.TasksPerRunner,
	}
}

// Scenario converts the configuration into something the simulator can build
func (c *Config) Scenario() simulator.Scenario {
	s := simulator.Scenario{
		MazeSize:     c.Maze.Size,
		CenterSize:   c.Maze.CenterSize,
		ShortcutRate: c.Maze.Shortcuts,
		Params:       c.Params(),
		Runners:      make([]simulator.RunnerSpec, len(c.Runners)),
	}
	for i, r := range c.Runners {
		s.Runners[i] = simulator.RunnerSpec{
			Policy:      r.Policy,
			ActionSpeed: r.ActionSpeed,
			MemoryDecay: r.MemoryDecayPercentage,
		}
	}
	return s
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MAZERUNNER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = n
		}
	}
	if v := os.Getenv("MAZERUNNER_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("MAZERUNNER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Batch.Workers = n
		}
	}
}
