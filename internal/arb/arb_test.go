package arb

import (
	"testing"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/domain"
)

func cpammQuote(side domain.Side, input, rx, ry uint64) uint64 {
	return amm.QuoteCPAMM(side, input, rx, ry, 30)
}

func TestBestTradeBuysWhenSpotAboveFair(t *testing.T) {
	rx := uint64(100 * domain.Scale)
	ry := uint64(10_000 * domain.Scale) // spot = 100

	trade, ok := BestTrade(cpammQuote, rx, ry, 90.0, 0.01)
	if !ok {
		t.Fatal("no trade found despite 10% mispricing")
	}
	if trade.Side != domain.SideBuyX {
		t.Errorf("side = %v, want buy", trade.Side)
	}
	if trade.Profit <= 0 {
		t.Errorf("profit = %v, want positive", trade.Profit)
	}
}

func TestBestTradeSellsWhenSpotBelowFair(t *testing.T) {
	rx := uint64(100 * domain.Scale)
	ry := uint64(10_000 * domain.Scale)

	trade, ok := BestTrade(cpammQuote, rx, ry, 110.0, 0.01)
	if !ok {
		t.Fatal("no trade found despite 10% mispricing")
	}
	if trade.Side != domain.SideSellX {
		t.Errorf("side = %v, want sell", trade.Side)
	}
}

func TestBestTradeRespectsProfitFloor(t *testing.T) {
	rx := uint64(100 * domain.Scale)
	ry := uint64(10_000 * domain.Scale)

	// Spot exactly at fair: the fee makes every trade a loss.
	if _, ok := BestTrade(cpammQuote, rx, ry, 100.0, 0.01); ok {
		t.Error("trade executed with no mispricing")
	}

	// Tiny mispricing, enormous floor.
	if _, ok := BestTrade(cpammQuote, rx, ry, 99.99, 1e12); ok {
		t.Error("trade cleared an unreachable profit floor")
	}
}

func TestBestTradeMovesSpotTowardFair(t *testing.T) {
	rx := uint64(100 * domain.Scale)
	ry := uint64(10_000 * domain.Scale)
	fair := 80.0

	trade, ok := BestTrade(cpammQuote, rx, ry, fair, 0.01)
	if !ok {
		t.Fatal("no trade found")
	}

	p := &amm.Pool{ReserveX: rx, ReserveY: ry}
	before := p.SpotPrice()
	p.ApplyTrade(trade.Side, trade.Input, trade.Output)
	after := p.SpotPrice()

	if !(after < before && after >= fair-1.0) {
		t.Errorf("spot %v -> %v did not move toward fair %v", before, after, fair)
	}
}

func TestBestTradeZeroQuoteRejected(t *testing.T) {
	dead := func(domain.Side, uint64, uint64, uint64) uint64 { return 0 }

	if _, ok := BestTrade(dead, 100*domain.Scale, 10_000*domain.Scale, 50.0, 0.01); ok {
		t.Error("trade executed against a dead quote")
	}
}
