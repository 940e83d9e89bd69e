package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"mazerunner/pkg/game/devtools"
	"mazerunner/pkg/game/generator"
)

func newMazeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maze",
		Short: "Generate a maze and dump it as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")

			gen, err := generator.NewBacktracker(cfg.Maze.Size, cfg.Maze.CenterSize, cfg.Maze.Shortcuts)
			if err != nil {
				return err
			}
			// Same stream layout as a simulation, so the dump matches `run` for this seed
			m, err := gen.Generate(rand.New(rand.NewSource(cfg.Seed)))
			if err != nil {
				return err
			}

			if out == "" {
				devtools.DumpMaze(cmd.OutOrStdout(), m, cfg.Seed)
				return nil
			}
			path, err := devtools.DumpMazeToFile(out, m, cfg.Seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Write the dump to this file instead of stdout")
	return cmd
}
