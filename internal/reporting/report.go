package reporting

import (
	"sort"
	"time"

	"prop-amm-lab/internal/domain"
)

// Report is the rendered outcome of one run: the leaderboard plus run
// metadata.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Simulations int
	Steps       int
	EpochLen    int
	SeedStart   uint64

	// Leaderboard (sorted by mean edge, best first)
	Rows []domain.StrategyAggregate

	NormalizerMeanEdge float64
}

// Build assembles a report from run parameters and aggregates. Rows are
// sorted by mean edge descending so the leaderboard reads top-down.
func Build(runID string, params domain.RunParams, aggs []domain.StrategyAggregate, normMeanEdge float64, now time.Time) *Report {
	rows := make([]domain.StrategyAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool { return rows[i].MeanEdge > rows[j].MeanEdge })

	return &Report{
		GeneratedAt:        now,
		RunID:              runID,
		Simulations:        params.Simulations,
		Steps:              params.Sim.TotalSteps,
		EpochLen:           params.Sim.EpochLen,
		SeedStart:          params.SeedStart,
		Rows:               rows,
		NormalizerMeanEdge: normMeanEdge,
	}
}

// Receipt converts the report into the durable run record.
func (r *Report) Receipt() domain.RunReceipt {
	return domain.RunReceipt{
		RunID:       r.RunID,
		CreatedAt:   r.GeneratedAt.UnixMilli(),
		Simulations: r.Simulations,
		Steps:       r.Steps,
		EpochLen:    r.EpochLen,
		SeedStart:   r.SeedStart,
		Strategies:  r.Rows,
	}
}
