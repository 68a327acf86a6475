package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/observability"
	"prop-amm-lab/internal/strategy"
)

// StrategyFactory builds a fresh, unshared strategy set for one worker.
// Loaded plugins keep per-call scratch state, so each concurrent simulation
// worker gets its own instances.
type StrategyFactory func() ([]strategy.Strategy, error)

// RunParallel executes params.Simulations independent simulations across a
// bounded worker pool and aggregates per-strategy statistics. Simulation i
// uses seed params.SeedStart+i, so results are independent of worker
// scheduling. Cancelling ctx abandons the run between simulations; a
// simulation already underway finishes its steps.
func RunParallel(ctx context.Context, factory StrategyFactory, params domain.RunParams, logger *zap.Logger) ([]domain.StrategyAggregate, float64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	probe, err := factory()
	if err != nil {
		return nil, 0, fmt.Errorf("build strategies: %w", err)
	}
	if err := params.Validate(len(probe)); err != nil {
		return nil, 0, err
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > params.Simulations {
		workers = params.Simulations
	}

	results := make([]Result, params.Simulations)
	errs := make([]error, params.Simulations)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			strategies, err := factory()
			if err != nil {
				// Mark every job this worker drains; the first error wins
				// below.
				for i := range jobs {
					errs[i] = fmt.Errorf("build strategies: %w", err)
				}
				return
			}
			for i := range jobs {
				if ctx.Err() != nil {
					continue // drain remaining jobs without running them
				}
				observability.RecordSimulationStarted()
				res, err := Run(strategies, params.Sim, params.SeedStart+uint64(i), logger)
				if err != nil {
					errs[i] = err
					continue
				}
				results[i] = res
			}
		}()
	}
feed:
	for i := 0; i < params.Simulations; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	for i, err := range errs {
		if err != nil {
			return nil, 0, fmt.Errorf("simulation %d: %w", i, err)
		}
	}

	aggs, meanNorm := Aggregate(results)
	logger.Info("run complete",
		zap.Int("simulations", params.Simulations),
		zap.Int("strategies", len(probe)),
		zap.Float64("normalizer_mean_edge", meanNorm))
	return aggs, meanNorm, nil
}

// Aggregate folds per-simulation results into one leaderboard row per
// strategy, plus the normalizer's mean edge. Sharpe is mean/std of terminal
// edge across simulations, zero when the spread is degenerate.
func Aggregate(sims []Result) ([]domain.StrategyAggregate, float64) {
	if len(sims) == 0 {
		return nil, 0
	}
	nStrat := len(sims[0].Strategies)
	n := float64(len(sims))

	var meanNorm float64
	for _, s := range sims {
		meanNorm += s.NormalizerEdge
	}
	meanNorm /= n

	aggs := make([]domain.StrategyAggregate, nStrat)
	for i := 0; i < nStrat; i++ {
		var mean, meanWeight float64
		for _, s := range sims {
			mean += s.Strategies[i].FinalEdge
			meanWeight += s.Strategies[i].FinalCapitalWeight
		}
		mean /= n
		meanWeight /= n

		var variance float64
		for _, s := range sims {
			d := s.Strategies[i].FinalEdge - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)

		sharpe := 0.0
		if std > 0 {
			sharpe = mean / std
		}

		aggs[i] = domain.StrategyAggregate{
			StrategyID:             sims[0].Strategies[i].Name,
			MeanEdge:               mean,
			StdEdge:                std,
			EdgeVsNormalizer:       mean - meanNorm,
			Sharpe:                 sharpe,
			MeanFinalCapitalWeight: meanWeight,
			WeightTrajectory:       weightTrajectory(sims, i),
		}
	}
	return aggs, meanNorm
}

// weightTrajectory is the mean capital weight per epoch across simulations.
// Simulations may diverge in epoch count only via config, so the shortest
// trajectory bounds the output.
func weightTrajectory(sims []Result, strat int) []float64 {
	epochs := -1
	for _, s := range sims {
		if n := len(s.Strategies[strat].EpochSummaries); epochs < 0 || n < epochs {
			epochs = n
		}
	}
	if epochs <= 0 {
		return nil
	}
	traj := make([]float64, epochs)
	for _, s := range sims {
		for e := 0; e < epochs; e++ {
			traj[e] += s.Strategies[strat].EpochSummaries[e].CapitalWeight
		}
	}
	for e := range traj {
		traj[e] /= float64(len(sims))
	}
	return traj
}
