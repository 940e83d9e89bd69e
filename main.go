package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mazerunner/pkg/engine/logging"
	"mazerunner/pkg/game/config"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mazerunner",
		Short: "Day/night maze survival simulator",
		Long: `mazerunner simulates a team of runners exploring a generated maze.

Runners explore by day, must be back in the central glade by nightfall,
pool what they learned overnight and bid for the next day's targets.
A run ends when someone reaches the outer wall or nobody is left.`,
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Experiment YAML file (defaults when empty)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug or trace")
	rootCmd.PersistentFlags().Int64("seed", 0, "Base seed (overrides the config file when set)")

	rootCmd.AddCommand(
		newRunCmd(),
		newBatchCmd(),
		newMazeCmd(),
	)
	return rootCmd
}

// loadConfig reads the experiment file and applies the global flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, os.Stderr)
}
