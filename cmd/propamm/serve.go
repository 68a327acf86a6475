package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prop-amm-lab/internal/config"
	"prop-amm-lab/internal/jobfeed"
	"prop-amm-lab/internal/observability"
	"prop-amm-lab/internal/reporting"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		cfgFile, _ = cmd.Parent().PersistentFlags().GetString("config")
	}
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.JobFeedURL == "" {
		return fmt.Errorf("jobfeed-url is required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	client, err := jobfeed.NewClient(ctx, cfg.JobFeedURL, nil, logger)
	if err != nil {
		return fmt.Errorf("connect job feed: %w", err)
	}
	defer client.Close()
	logger.Info("job feed connected", zap.String("url", cfg.JobFeedURL))

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case job, ok := <-client.Jobs():
			if !ok {
				return nil
			}
			processJob(ctx, cfg, client, job, logger)
		}
	}
}

// processJob runs one job end to end; failures go back to the job layer
// rather than killing the worker.
func processJob(ctx context.Context, cfg config.Config, client *jobfeed.Client, job jobfeed.Job, logger *zap.Logger) {
	logger.Info("job received",
		zap.String("job_id", job.JobID),
		zap.Int("simulations", job.Simulations),
		zap.Strings("strategies", job.Strategies))

	report, err := runJob(ctx, cfg, job, logger)
	if err != nil {
		logger.Warn("job failed", zap.String("job_id", job.JobID), zap.Error(err))
		if serr := client.SubmitResult(jobfeed.Result{JobID: job.JobID, Error: err.Error()}); serr != nil {
			logger.Error("submit failure result", zap.Error(serr))
		}
		return
	}

	receipt := report.Receipt()
	if err := client.SubmitResult(jobfeed.Result{JobID: job.JobID, Receipt: &receipt}); err != nil {
		logger.Error("submit result", zap.String("job_id", job.JobID), zap.Error(err))
		return
	}
	logger.Info("job complete", zap.String("job_id", job.JobID), zap.String("run_id", report.RunID))
}

func runJob(ctx context.Context, cfg config.Config, job jobfeed.Job, logger *zap.Logger) (*reporting.Report, error) {
	factory, artifactIDs, err := resolveStrategies(job.Strategies, cfg.AllowUnsigned)
	if err != nil {
		return nil, err
	}

	strategies, err := factory()
	if err != nil {
		return nil, err
	}
	for _, s := range strategies {
		rep := admit(s)
		if !rep.Passed() {
			return nil, fmt.Errorf("strategy %s rejected: %w", rep.Strategy, rep.Violation)
		}
	}

	r, err := executeRun(ctx, factory, artifactIDs, job.RunParams(), logger)
	if err != nil {
		return nil, err
	}

	if err := persistRun(ctx, cfg, r, logger); err != nil {
		return nil, err
	}
	return r, nil
}
