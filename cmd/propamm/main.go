package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "propamm",
		Short:        "AMM strategy competition engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check strategies against the admission grid",
		RunE:  runValidate,
	}
	validateCmd.Flags().StringSlice("strategy", nil, "builtin names or plugin paths (comma-separated)")
	validateCmd.Flags().Bool("allow-unsigned", true, "accept unsigned plugin artifacts")
	validateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(validateCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the competition and print the leaderboard",
		RunE:  runCompetition,
	}
	runCmd.Flags().StringSlice("strategy", nil, "builtin names or plugin paths (comma-separated)")
	runCmd.Flags().Int("simulations", 8, "independent simulations per run")
	runCmd.Flags().Int("steps", 10000, "steps per simulation")
	runCmd.Flags().Int("epoch-len", 1000, "steps per epoch")
	runCmd.Flags().Uint64("seed-start", 1, "seed of the first simulation")
	runCmd.Flags().Float64("risk-aversion", 2.0, "downside penalty in the epoch score")
	runCmd.Flags().Float64("min-weight", 0.02, "capital weight floor per pool")
	runCmd.Flags().Float64("temperature", 1.0, "softmax temperature")
	runCmd.Flags().Float64("arb-floor", 0.01, "minimum arbitrage profit to trade")
	runCmd.Flags().Int("fault-limit", 3, "quote faults before a pool is halted")
	runCmd.Flags().Bool("allow-unsigned", true, "accept unsigned plugin artifacts")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for run receipts")
	runCmd.Flags().String("ch-dsn", "", "ClickHouse DSN for weight trajectories")
	runCmd.Flags().String("format", "table", "output format (table, markdown, csv, json)")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(runCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Consume runs from the job feed",
		RunE:  runServe,
	}
	serveCmd.Flags().String("jobfeed-url", "", "job feed WebSocket URL")
	serveCmd.Flags().String("metrics-addr", "", "Prometheus /metrics listen address")
	serveCmd.Flags().Bool("allow-unsigned", true, "accept unsigned plugin artifacts")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for run receipts")
	serveCmd.Flags().String("ch-dsn", "", "ClickHouse DSN for weight trajectories")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
