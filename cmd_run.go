package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mazerunner/pkg/game/devtools"
	"mazerunner/pkg/game/renderer"
	"mazerunner/pkg/game/renderer/tui"
	"mazerunner/pkg/game/simulator"
	"mazerunner/pkg/game/state"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			render, _ := cmd.Flags().GetString("render")
			every, _ := cmd.Flags().GetInt("every")
			screenshot, _ := cmd.Flags().GetString("screenshot")

			logger := newLogger(cfg)
			env, policies, err := simulator.Build(cfg.Scenario(), cfg.Seed, logger)
			if err != nil {
				return err
			}

			opts := simulator.Options{RenderEvery: every, Logger: logger}
			out := cmd.OutOrStdout()
			switch render {
			case "", "none":
			case "plain":
				opts.Renderer = renderer.NewPlain(out)
			case "tui":
				opts.Renderer = tui.New(out, true)
			default:
				return fmt.Errorf("unknown renderer %q (valid: none, plain, tui)", render)
			}
			if opts.Renderer != nil {
				opts.Renderer.Init()
			}

			info, err := simulator.Run(cmd.Context(), env, policies, opts)
			if err != nil {
				return err
			}
			printSummary(out, cfg.Seed, info)

			if screenshot != "" {
				path, err := devtools.SaveScreenshotHTML(screenshot, env.Frame())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "screenshot: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().String("render", "none", "Frame output: none, plain or tui")
	cmd.Flags().Int("every", 1, "Render every N ticks")
	cmd.Flags().String("screenshot", "", "Save the final frame as an HTML file")
	return cmd
}

func printSummary(w io.Writer, seed int64, info state.Info) {
	outcome := "tick ceiling reached"
	switch {
	case info.FoundExit != state.NoRunner:
		outcome = fmt.Sprintf("runner %d found the exit", info.FoundExit)
	case info.Converged:
		outcome = "no survivors"
	}
	fmt.Fprintf(w, "seed %d: %s on the %s day\n", seed, outcome, humanize.Ordinal(info.Day+1))
	fmt.Fprintf(w, "  ticks:     %s\n", humanize.Comma(int64(info.Time)))
	fmt.Fprintf(w, "  alive:     %d\n", info.NAlive)
	fmt.Fprintf(w, "  converged: %v\n", info.Converged)
	fmt.Fprintf(w, "  reward:    %s\n", humanize.CommafWithDigits(info.TotalReward, 2))
}
