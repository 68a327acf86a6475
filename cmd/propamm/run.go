package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prop-amm-lab/internal/config"
	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/idhash"
	"prop-amm-lab/internal/reporting"
	"prop-amm-lab/internal/sim"
	"prop-amm-lab/internal/storage"
	chstore "prop-amm-lab/internal/storage/clickhouse"
	"prop-amm-lab/internal/storage/migrations"
	"prop-amm-lab/internal/storage/postgres"
)

func runCompetition(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		cfgFile, _ = cmd.Parent().PersistentFlags().GetString("config")
	}
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	factory, artifactIDs, err := resolveStrategies(cfg.Strategies, cfg.AllowUnsigned)
	if err != nil {
		return err
	}

	// Admission: every strategy must pass the grid before competing.
	strategies, err := factory()
	if err != nil {
		return err
	}
	for _, s := range strategies {
		rep := admit(s)
		if !rep.Passed() {
			return fmt.Errorf("strategy %s rejected: %w", rep.Strategy, rep.Violation)
		}
	}

	params := cfg.RunParams()
	report, err := executeRun(cmd.Context(), factory, artifactIDs, params, logger)
	if err != nil {
		return err
	}

	if err := persistRun(cmd.Context(), cfg, report, logger); err != nil {
		return err
	}

	switch cfg.Format {
	case "markdown":
		fmt.Print(reporting.RenderMarkdown(report))
	case "csv":
		fmt.Print(reporting.RenderCSV(report.Rows))
	case "json":
		out, err := reporting.RenderJSONReceipt(report)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Print(reporting.RenderTable(report))
	}
	return nil
}

// executeRun runs the competition and assembles the report.
func executeRun(ctx context.Context, factory sim.StrategyFactory, artifactIDs []string, params domain.RunParams, logger *zap.Logger) (*reporting.Report, error) {
	aggs, normMean, err := sim.RunParallel(ctx, factory, params, logger)
	if err != nil {
		return nil, err
	}
	for i := range aggs {
		if i < len(artifactIDs) {
			aggs[i].ArtifactID = artifactIDs[i]
		}
	}

	runID := idhash.ComputeRunID(params.SeedStart, params.Simulations,
		params.Sim.TotalSteps, params.Sim.EpochLen, artifactIDs)
	return reporting.Build(runID, params, aggs, normMean, time.Now().UTC()), nil
}

// persistRun writes the receipt and weight trajectories to whichever stores
// are configured. No DSN means no persistence; the run still prints.
func persistRun(ctx context.Context, cfg config.Config, report *reporting.Report, logger *zap.Logger) error {
	if cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}

		receipt := report.Receipt()
		if err := storeReceipt(ctx, postgres.NewReceiptStore(pool), &receipt); err != nil {
			return err
		}
		logger.Info("receipt stored", zap.String("run_id", report.RunID))
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()

		store := chstore.NewTrajectoryStore(conn)
		if err := store.InsertBulk(ctx, trajectoryPoints(report)); err != nil {
			return fmt.Errorf("store trajectories: %w", err)
		}
		logger.Info("trajectories stored", zap.String("run_id", report.RunID))
	}

	return nil
}

func storeReceipt(ctx context.Context, store storage.ReceiptStore, r *domain.RunReceipt) error {
	if err := store.Insert(ctx, r); err != nil {
		return fmt.Errorf("store receipt: %w", err)
	}
	return nil
}

func trajectoryPoints(report *reporting.Report) []*domain.CapitalWeightPoint {
	var points []*domain.CapitalWeightPoint
	for _, row := range report.Rows {
		for epoch, w := range row.WeightTrajectory {
			points = append(points, &domain.CapitalWeightPoint{
				RunID:      report.RunID,
				StrategyID: row.StrategyID,
				Epoch:      uint32(epoch),
				MeanWeight: w,
			})
		}
	}
	return points
}
