// Package capital rebalances reserve capital across strategy pools at epoch
// boundaries. Epoch edge is scored with a downside penalty, scores pass
// through a tempered softmax, and a weight floor keeps losing strategies in
// the game so they can observe flow and recover.
package capital

import (
	"math"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/observability"
)

// RiskAdjustedScore maps an epoch edge to its allocation score. Losses are
// amplified by the risk-aversion multiplier so a strategy that swings
// between +e and -e scores below one that earns a steady zero.
func RiskAdjustedScore(edge, riskAversion float64) float64 {
	return edge - riskAversion*math.Max(0, -edge)
}

// SoftmaxWeights converts scores into capital weights. Scores are centered
// and divided by a spread scale before exponentiation so the temperature
// acts on relative performance, not raw edge magnitude. Every weight gets
// at least floor via proportional redistribution of the remaining mass.
//
// Requires 0 <= floor and len(scores)*floor <= 1, enforced upstream by
// SimConfig.Validate.
func SoftmaxWeights(scores []float64, temperature, floor float64) []float64 {
	n := len(scores)
	if n == 0 {
		return nil
	}
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1
		return weights
	}

	minS, maxS := scores[0], scores[0]
	for _, s := range scores[1:] {
		minS = math.Min(minS, s)
		maxS = math.Max(maxS, s)
	}
	spread := math.Max((maxS-minS)/40.0, 1.0)

	var sum float64
	for i, s := range scores {
		weights[i] = math.Exp((s - maxS) / (spread * temperature))
		sum += weights[i]
	}

	rem := 1.0 - float64(n)*floor
	for i := range weights {
		weights[i] = floor + rem*weights[i]/sum
	}
	return weights
}

// Rebalance reallocates total capital across the pools according to their
// epoch scores, then resets per-epoch accumulators. The normalizer pool does
// not participate; its reserves are untouched.
//
// Total capital is measured as the sum of 2·reserveY across participating
// pools (spot-value of both legs). Each pool's new reserveY is its share of
// half the total, and reserveX is back-derived from the pool's own pre-move
// spot price, so the rebalance moves capital without moving any price.
func Rebalance(pools []*amm.Pool, cfg domain.SimConfig, epochNumber uint32) []domain.EpochSummary {
	n := len(pools)
	summaries := make([]domain.EpochSummary, n)
	if n == 0 {
		return summaries
	}

	scores := make([]float64, n)
	var totalCapital float64
	for i, p := range pools {
		scores[i] = RiskAdjustedScore(p.EpochEdge, cfg.RiskAversion)
		totalCapital += 2.0 * float64(p.ReserveY) / domain.ScaleF
	}

	weights := SoftmaxWeights(scores, cfg.SoftmaxTemperature, cfg.MinCapitalWeight)

	for i, p := range pools {
		spot := p.SpotPrice()
		newY := totalCapital * weights[i] / 2.0
		p.ReserveY = uint64(newY * domain.ScaleF)
		if spot > 0 {
			p.ReserveX = uint64(newY / spot * domain.ScaleF)
		}
		p.CapitalWeight = weights[i]

		summaries[i] = domain.EpochSummary{
			EpochNumber:       epochNumber,
			Edge:              p.EpochEdge,
			TradeCount:        p.EpochTradeCount,
			RiskAdjustedScore: scores[i],
			CapitalWeight:     weights[i],
			ArbLosses:         math.Min(0, p.EpochEdge),
			RetailGains:       math.Max(0, p.EpochEdge),
		}
		p.ResetEpoch()
	}

	observability.RecordRebalance()
	return summaries
}
