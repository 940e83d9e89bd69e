package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"mazerunner/pkg/game/batch"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run many seeds in parallel and store per-run summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("runs") {
				cfg.Batch.Runs, _ = cmd.Flags().GetInt("runs")
			}
			if cmd.Flags().Changed("workers") {
				cfg.Batch.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if out, _ := cmd.Flags().GetString("out"); out != "" {
				cfg.Batch.Output = out
			}
			if db, _ := cmd.Flags().GetString("sqlite"); db != "" {
				cfg.Batch.SQLite = db
			}
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			ctx := cmd.Context()
			logger := newLogger(cfg)

			reg := prometheus.NewRegistry()
			metrics := batch.MustNewMetrics(reg)
			if metricsAddr != "" {
				stop := serveMetrics(metricsAddr, reg, logger)
				defer stop()
			}

			runner := &batch.Runner{
				Scenario: cfg.Scenario(),
				BaseSeed: cfg.Seed,
				Workers:  cfg.Batch.Workers,
				Logger:   logger,
				Metrics:  metrics,
			}
			start := time.Now()
			summaries, err := runner.Run(ctx, cfg.Batch.Runs)
			if err != nil {
				return err
			}
			logger.Info("batch finished", "runs", len(summaries), "elapsed", time.Since(start).String())

			if cfg.Batch.Output != "" {
				if err := batch.WriteArrow(cfg.Batch.Output, summaries); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.Batch.Output)
			}
			if cfg.Batch.SQLite != "" {
				if err := saveSQLite(ctx, cfg.Batch.SQLite, summaries); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d runs to %s\n", len(summaries), cfg.Batch.SQLite)
			}

			printBatchSummary(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	cmd.Flags().Int("runs", 0, "Number of runs (overrides batch.runs)")
	cmd.Flags().Int("workers", 0, "Parallel workers (overrides batch.workers)")
	cmd.Flags().String("out", "", "Arrow IPC file for run summaries")
	cmd.Flags().String("sqlite", "", "SQLite database for run summaries")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :9090")
	return cmd
}

func saveSQLite(ctx context.Context, path string, summaries []batch.Summary) error {
	store := batch.NewSQLiteStore(path)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer store.Close()
	return store.SaveSummaries(ctx, summaries)
}

// serveMetrics exposes reg on addr and returns a function that shuts the server down
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printBatchSummary(w io.Writer, summaries []batch.Summary) {
	counts := make(map[string]int)
	var ticks int64
	var reward float64
	for _, s := range summaries {
		counts[s.Outcome()]++
		ticks += int64(s.Time)
		reward += s.TotalReward
	}
	n := len(summaries)
	if n == 0 {
		return
	}
	fmt.Fprintf(w, "%s runs, %s ticks simulated\n", humanize.Comma(int64(n)), humanize.Comma(ticks))
	for _, outcome := range []string{batch.OutcomeExit, batch.OutcomeExtinct, batch.OutcomeCeiling} {
		fmt.Fprintf(w, "  %-8s %4d  (%.1f%%)\n", outcome, counts[outcome], 100*float64(counts[outcome])/float64(n))
	}
	fmt.Fprintf(w, "  mean ticks:  %s\n", humanize.CommafWithDigits(float64(ticks)/float64(n), 1))
	fmt.Fprintf(w, "  mean reward: %s\n", humanize.CommafWithDigits(reward/float64(n), 2))
}
