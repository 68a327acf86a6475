package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prop-amm-lab/internal/config"
)

func runValidate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		cfgFile, _ = cmd.Parent().PersistentFlags().GetString("config")
	}
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	factory, _, err := resolveStrategies(cfg.Strategies, cfg.AllowUnsigned)
	if err != nil {
		return err
	}
	strategies, err := factory()
	if err != nil {
		return err
	}

	failed := 0
	for _, s := range strategies {
		rep := admit(s)
		if rep.Passed() {
			fmt.Printf("[PASS] %s (%d probes)\n", rep.Strategy, rep.Probes)
		} else {
			failed++
			fmt.Printf("[FAIL] %s: %v\n", rep.Strategy, rep.Violation)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d strategies rejected", failed, len(strategies))
	}
	return nil
}
