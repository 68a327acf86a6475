// Package sim drives complete simulations: one GBM price path, per-step
// arbitrage against every pool, retail flow routed across all pools, and
// epoch-boundary capital rebalancing. All state is owned by the simulation
// instance; nothing is shared across concurrent simulations.
package sim

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/arb"
	"prop-amm-lab/internal/capital"
	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/market"
	"prop-amm-lab/internal/observability"
	"prop-amm-lab/internal/router"
	"prop-amm-lab/internal/strategy"
)

// StrategyResult is one strategy's outcome in a single simulation.
type StrategyResult struct {
	Name               string
	FinalEdge          float64
	EpochSummaries     []domain.EpochSummary
	FinalCapitalWeight float64
}

// Result of one complete simulation.
type Result struct {
	Strategies     []StrategyResult
	NormalizerEdge float64
	Params         market.Params
}

// Run executes one simulation of cfg.TotalSteps steps with the given
// strategies plus the built-in normalizer (always the last pool). All
// randomness derives from seed, so identical inputs reproduce identical
// results. The strategies must not be shared with a concurrently running
// simulation.
func Run(strategies []strategy.Strategy, cfg domain.SimConfig, seed uint64, logger *zap.Logger) (Result, error) {
	rng := market.NewRand(seed)
	return run(strategies, cfg, market.SampleParams(rng), rng, logger)
}

// RunWithParams is Run with fixed market parameters instead of sampled ones.
// Scenario harnesses use it to pin volatility and flow.
func RunWithParams(strategies []strategy.Strategy, cfg domain.SimConfig, params market.Params, seed uint64, logger *zap.Logger) (Result, error) {
	return run(strategies, cfg, params, market.NewRand(seed), logger)
}

func run(strategies []strategy.Strategy, cfg domain.SimConfig, params market.Params, rng *rand.Rand, logger *zap.Logger) (Result, error) {
	if err := cfg.Validate(len(strategies)); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	started := time.Now()

	nStrat := len(strategies)
	guards := make([]*strategy.Guard, nStrat)
	pools := make([]*amm.Pool, nStrat)
	for i, s := range strategies {
		guards[i] = strategy.NewGuard(s, cfg.QuoteFaultLimit, logger)
		pools[i] = amm.NewPool(cfg.BaseReserveX, cfg.BaseReserveY, uint8(i), s.Name())
		pools[i].CapitalWeight = 1.0 / float64(nStrat)
	}

	norm := strategy.NewNormalizer(params.NormalizerFeeBps)
	normRX := uint64(float64(cfg.BaseReserveX) * params.NormalizerLiquidityMult)
	normRY := uint64(float64(cfg.BaseReserveY) * params.NormalizerLiquidityMult)
	normPool := amm.NewPool(normRX, normRY, uint8(nStrat), norm.Name())

	prices, err := market.NewPriceProcess(
		float64(cfg.BaseReserveY)/float64(cfg.BaseReserveX), params.Sigma, rng)
	if err != nil {
		return Result{}, err
	}

	epochSummaries := make([][]domain.EpochSummary, nStrat)

	for step := 0; step < cfg.TotalSteps; step++ {
		fair := prices.Step()

		// Arbitrage each strategy pool independently against the fair price.
		for i, p := range pools {
			if p.Halted {
				continue
			}
			g := guards[i]
			quote := func(side domain.Side, input, rx, ry uint64) uint64 {
				return g.Quote(side, input, rx, ry, &p.Storage)
			}
			trade, ok := arb.BestTrade(quote, p.ReserveX, p.ReserveY, fair, cfg.ArbProfitFloor)
			if g.Disabled() {
				p.Halted = true
				continue
			}
			if !ok {
				continue
			}
			settleTrade(p, trade.Side, trade.Input, trade.Output, fair)
			observability.RecordArbTrade()
			dispatchAfterSwap(g, p, trade.Side, trade.Input, trade.Output,
				uint64(step), cfg, 0, pools, normPool)
		}

		// Arbitrage the normalizer with its own plain CPAMM quote.
		normQuote := func(side domain.Side, input, rx, ry uint64) uint64 {
			out, _ := norm.Quote(side, input, rx, ry, nil)
			return out
		}
		if trade, ok := arb.BestTrade(normQuote, normPool.ReserveX, normPool.ReserveY, fair, cfg.ArbProfitFloor); ok {
			settleTrade(normPool, trade.Side, trade.Input, trade.Output, fair)
			observability.RecordArbTrade()
		}

		// Route each retail order across strategies + normalizer.
		for _, order := range market.GenerateOrders(params, rng) {
			observability.RecordRetailOrder()
			routeRetail(order, fair, pools, normPool, guards, norm, uint64(step), cfg)
		}

		// Epoch boundary. The final step skips it: there is no next epoch
		// to allocate capital for.
		atEpochEnd := (step+1)%cfg.EpochLen == 0
		lastStep := step == cfg.TotalSteps-1
		if atEpochEnd && !lastStep {
			epochNumber := uint32((step+1)/cfg.EpochLen) - 1
			summaries := capital.Rebalance(pools, cfg, epochNumber)
			for i, p := range pools {
				epochSummaries[i] = append(epochSummaries[i], summaries[i])
				payload := &strategy.EpochBoundaryPayload{
					EpochNumber:    epochNumber,
					NewReserveX:    p.ReserveX,
					NewReserveY:    p.ReserveY,
					EpochEdge:      summaries[i].Edge,
					CumulativeEdge: p.CumulativeEdge,
					CapitalWeight:  float32(p.CapitalWeight),
				}
				guards[i].OnEpochBoundary(payload, &p.Storage)
			}
		}
	}

	results := make([]StrategyResult, nStrat)
	for i, p := range pools {
		results[i] = StrategyResult{
			Name:               p.Name,
			FinalEdge:          p.CumulativeEdge,
			EpochSummaries:     epochSummaries[i],
			FinalCapitalWeight: p.CapitalWeight,
		}
	}

	observability.RecordSimulation(time.Since(started).Seconds(), cfg.TotalSteps)
	return Result{
		Strategies:     results,
		NormalizerEdge: normPool.CumulativeEdge,
		Params:         params,
	}, nil
}

// settleTrade books edge and moves reserves for one authoritative fill.
func settleTrade(p *amm.Pool, side domain.Side, input, output uint64, fair float64) {
	amountX, amountY := input, output
	if side == domain.SideBuyX {
		amountX, amountY = output, input
	}
	p.AccrueEdge(amountX, amountY, side, fair)
	p.ApplyTrade(side, input, output)
}

// routeRetail splits one retail order across every active pool plus the
// normalizer, settles each partial fill, and notifies strategies.
func routeRetail(
	order market.RetailOrder,
	fair float64,
	pools []*amm.Pool,
	normPool *amm.Pool,
	guards []*strategy.Guard,
	norm *strategy.Normalizer,
	step uint64,
	cfg domain.SimConfig,
) {
	nStrat := len(pools)
	snaps := make([]router.Snapshot, nStrat+1)
	for i, p := range pools {
		snaps[i] = router.Snapshot{ReserveX: p.ReserveX, ReserveY: p.ReserveY, Halted: p.Halted}
	}
	snaps[nStrat] = router.Snapshot{ReserveX: normPool.ReserveX, ReserveY: normPool.ReserveY}

	quote := func(i int, side domain.Side, input, rx, ry uint64) uint64 {
		if i < nStrat {
			return guards[i].Quote(side, input, rx, ry, &pools[i].Storage)
		}
		out, _ := norm.Quote(side, input, rx, ry, nil)
		return out
	}

	// Order size is Y-denominated. A buy pays Y directly; a sell pays X,
	// sized so its fair value matches.
	totalInput := order.SizeY
	if order.Side == domain.SideSellX {
		totalInput = order.SizeY / fair
	}

	res := router.Route(snaps, order.Side, totalInput, quote)
	totalScaled := uint64(totalInput * domain.ScaleF)
	if totalScaled == 0 {
		totalScaled = 1
	}

	for i, alloc := range res.Allocations {
		if alloc.Input == 0 {
			continue
		}
		if i < nStrat {
			p := pools[i]
			settleTrade(p, order.Side, alloc.Input, alloc.Output, fair)
			flow := float32(alloc.Input) / float32(totalScaled)
			dispatchAfterSwap(guards[i], p, order.Side, alloc.Input, alloc.Output,
				step, cfg, flow, pools, normPool)
		} else {
			settleTrade(normPool, order.Side, alloc.Input, alloc.Output, fair)
		}
	}
}

// dispatchAfterSwap builds the enriched post-trade payload, including the
// competing pools' spot prices, and invokes the strategy hook.
func dispatchAfterSwap(
	g *strategy.Guard,
	p *amm.Pool,
	side domain.Side,
	input, output uint64,
	step uint64,
	cfg domain.SimConfig,
	flowCaptured float32,
	pools []*amm.Pool,
	normPool *amm.Pool,
) {
	var competing [domain.CompetitorSlots]float32
	for i := range competing {
		competing[i] = float32(math.NaN())
	}
	slot := 0
	for _, other := range pools {
		if other.Index != p.Index && slot < domain.CompetitorSlots {
			competing[slot] = float32(other.SpotPrice())
			slot++
		}
	}
	if slot < domain.CompetitorSlots {
		competing[slot] = float32(normPool.SpotPrice())
	}

	payload := &strategy.AfterSwapPayload{
		Side:                side,
		InputAmount:         input,
		OutputAmount:        output,
		ReserveX:            p.ReserveX,
		ReserveY:            p.ReserveY,
		SimStep:             step,
		EpochStep:           uint32(step % uint64(cfg.EpochLen)),
		EpochNumber:         uint32(step / uint64(cfg.EpochLen)),
		NStrategies:         uint8(len(pools) + 1),
		StrategyIndex:       p.Index,
		FlowCaptured:        flowCaptured,
		CapitalWeight:       float32(p.CapitalWeight),
		CompetingSpotPrices: competing,
	}
	g.AfterSwap(payload, &p.Storage)
}
