package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"afisha/internal/ingest"
	"afisha/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled ingestion until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			scheduler := cron.New()
			_, err = scheduler.AddFunc(cfg.Daemon.Schedule, func() {
				date := time.Now()
				report, err := runIngest(signalCtx, cfg, date, cfg.Daemon.Sources)
				if err != nil {
					var recErr *ingest.ReconciliationError
					if errors.As(err, &recErr) {
						logger.Error("scheduled run needs register attention", "error", recErr)
					} else {
						logger.Error("scheduled run failed", "error", err)
					}
					return
				}
				logger.Info("scheduled run complete",
					"run_id", report.RunID.String(),
					"inserted", report.Inserted,
					"duplicates", report.Duplicates)
			})
			if err != nil {
				return fmt.Errorf("parse schedule %q: %w", cfg.Daemon.Schedule, err)
			}

			logger.Info("daemon started", "schedule", cfg.Daemon.Schedule)
			scheduler.Start()
			<-signalCtx.Done()

			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			logger.Info("daemon shut down")
			return nil
		},
	}
}
