package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/strategy"
)

func TestAggregateStatistics(t *testing.T) {
	sims := []Result{
		{
			Strategies: []StrategyResult{{
				Name: "a", FinalEdge: 10, FinalCapitalWeight: 0.6,
				EpochSummaries: []domain.EpochSummary{{CapitalWeight: 0.5}, {CapitalWeight: 0.7}},
			}},
			NormalizerEdge: 2,
		},
		{
			Strategies: []StrategyResult{{
				Name: "a", FinalEdge: 20, FinalCapitalWeight: 0.4,
				EpochSummaries: []domain.EpochSummary{{CapitalWeight: 0.5}, {CapitalWeight: 0.3}},
			}},
			NormalizerEdge: 4,
		},
	}

	aggs, meanNorm := Aggregate(sims)
	if meanNorm != 3 {
		t.Errorf("normalizer mean = %f, want 3", meanNorm)
	}
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates", len(aggs))
	}

	a := aggs[0]
	if a.StrategyID != "a" {
		t.Errorf("strategy id = %q", a.StrategyID)
	}
	if a.MeanEdge != 15 {
		t.Errorf("mean edge = %f, want 15", a.MeanEdge)
	}
	if math.Abs(a.StdEdge-5) > 1e-12 {
		t.Errorf("std edge = %f, want 5", a.StdEdge)
	}
	if math.Abs(a.Sharpe-3) > 1e-12 {
		t.Errorf("sharpe = %f, want 3", a.Sharpe)
	}
	if a.EdgeVsNormalizer != 12 {
		t.Errorf("edge vs normalizer = %f, want 12", a.EdgeVsNormalizer)
	}
	if math.Abs(a.MeanFinalCapitalWeight-0.5) > 1e-12 {
		t.Errorf("mean final weight = %f", a.MeanFinalCapitalWeight)
	}
	want := []float64{0.5, 0.5}
	for e, w := range a.WeightTrajectory {
		if math.Abs(w-want[e]) > 1e-12 {
			t.Errorf("trajectory[%d] = %f, want %f", e, w, want[e])
		}
	}
}

func TestAggregateZeroSpreadSharpe(t *testing.T) {
	sims := []Result{
		{Strategies: []StrategyResult{{Name: "flat", FinalEdge: 7}}},
		{Strategies: []StrategyResult{{Name: "flat", FinalEdge: 7}}},
	}
	aggs, _ := Aggregate(sims)
	if aggs[0].Sharpe != 0 {
		t.Errorf("sharpe = %f, want 0 for degenerate spread", aggs[0].Sharpe)
	}
}

func testFactory() ([]strategy.Strategy, error) {
	a, err := strategy.Builtin("cpamm30")
	if err != nil {
		return nil, err
	}
	b, err := strategy.Builtin("adaptive")
	if err != nil {
		return nil, err
	}
	return []strategy.Strategy{a, b}, nil
}

func TestRunParallelDeterministic(t *testing.T) {
	params := domain.RunParams{
		Simulations: 6,
		SeedStart:   100,
		Sim:         testConfig(),
	}

	a, normA, err := RunParallel(context.Background(), testFactory, params, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, normB, err := RunParallel(context.Background(), testFactory, params, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if normA != normB {
		t.Errorf("normalizer means differ: %f vs %f", normA, normB)
	}
	if len(a) != 2 {
		t.Fatalf("got %d aggregates, want 2", len(a))
	}
	for i := range a {
		if a[i].MeanEdge != b[i].MeanEdge || a[i].StdEdge != b[i].StdEdge {
			t.Errorf("%s: aggregates differ across identical runs", a[i].StrategyID)
		}
	}
}

func TestRunParallelFactoryError(t *testing.T) {
	broken := func() ([]strategy.Strategy, error) {
		return nil, errors.New("no artifacts")
	}
	params := domain.RunParams{Simulations: 2, Sim: testConfig()}
	if _, _, err := RunParallel(context.Background(), broken, params, nil); err == nil {
		t.Error("factory error not surfaced")
	}
}

func TestRunParallelValidatesParams(t *testing.T) {
	params := domain.RunParams{Simulations: 0, Sim: testConfig()}
	if _, _, err := RunParallel(context.Background(), testFactory, params, nil); err == nil {
		t.Error("zero simulations accepted")
	}
}

func TestRunParallelCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	params := domain.RunParams{Simulations: 4, SeedStart: 1, Sim: testConfig()}
	aggs, _, err := RunParallel(ctx, testFactory, params, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if aggs != nil {
		t.Error("aggregates returned from a cancelled run")
	}
}

func TestRunParallelCancelMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	cfg.TotalSteps = 200
	params := domain.RunParams{Simulations: 10_000, SeedStart: 1, Sim: cfg}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err := RunParallel(ctx, testFactory, params, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	// Abandoning between simulations must not wait out the full batch.
	if elapsed := time.Since(start); elapsed > 30*time.Second {
		t.Errorf("cancelled run took %v", elapsed)
	}
}
