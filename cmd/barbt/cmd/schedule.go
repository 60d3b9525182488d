package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/barbt/config"
	"github.com/rustyeddy/barbt/metrics"
	"github.com/rustyeddy/barbt/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-run the configured batch on a cron schedule",
	Long: `Schedule keeps running and executes the config's batch every time the
schedule.cron spec fires (standard 5-field cron). Metrics are served on
schedule.metrics_addr at /metrics.

Example:
  barbt schedule -c barbt.yaml --now`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var (
	schedCron    string
	schedMetrics string
	schedNow     bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&schedCron, "cron", "", "cron spec (overrides config)")
	scheduleCmd.Flags().StringVar(&schedMetrics, "metrics-addr", "", "metrics listen address (overrides config, empty disables)")
	scheduleCmd.Flags().BoolVar(&schedNow, "now", false, "run the batch once at startup")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cron") {
		cfg.Schedule.Cron = schedCron
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Schedule.MetricsAddr = schedMetrics
	}
	if cfg.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron is required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if cfg.Schedule.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.Schedule.MetricsAddr, reg, logger)
		srv.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(sctx)
		}()
	}

	s := scheduler.New(ctx, logger)
	task := batchTask(cfg, m)
	if err := s.Register("batch", cfg.Schedule.Cron, task); err != nil {
		return err
	}

	if schedNow {
		_ = s.RunNow("batch", task)
	}

	s.Start()
	for _, next := range s.Next() {
		logger.Info("next run", "at", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	s.Stop()
	return nil
}

// batchTask opens the journal outputs for one batch, runs it and closes
// them again, so nothing stays locked between ticks.
func batchTask(cfg *config.Config, m *metrics.Metrics) scheduler.Task {
	return func(ctx context.Context) error {
		env, err := newBatch(ctx, cfg, m)
		if err != nil {
			return err
		}
		defer env.Close()

		outcomes, err := env.Batch.Run(ctx)
		if err != nil {
			return err
		}
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				logger.Warn("run failed", "symbol", o.Job.Symbol, "run_id", o.RunID, "err", o.Err)
				continue
			}
			logger.Info("run done", "symbol", o.Job.Symbol, "run_id", o.RunID,
				"trades", o.Record.Trades, "net_worth", o.Record.NetWorth)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
		}
		return nil
	}
}
