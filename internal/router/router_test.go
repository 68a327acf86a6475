package router

import (
	"math"
	"testing"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/domain"
)

func cpammQuote(feeBps uint32) QuoteFn {
	return func(_ int, side domain.Side, input, rx, ry uint64) uint64 {
		return amm.QuoteCPAMM(side, input, rx, ry, feeBps)
	}
}

func identicalPools(n int) []Snapshot {
	pools := make([]Snapshot, n)
	for i := range pools {
		pools[i] = Snapshot{ReserveX: 100 * domain.Scale, ReserveY: 10_000 * domain.Scale}
	}
	return pools
}

func TestRouteConservesInput(t *testing.T) {
	pools := identicalPools(3)
	total := 100.0

	res := Route(pools, domain.SideBuyX, total, cpammQuote(30))

	var allocated float64
	for _, a := range res.Allocations {
		allocated += float64(a.Input) / domain.ScaleF
	}
	if math.Abs(allocated-total) > 0.1 {
		t.Errorf("input not conserved: allocated %.4f vs %.1f", allocated, total)
	}
}

func TestRouteSplitsSymmetricPoolsEvenly(t *testing.T) {
	pools := identicalPools(2)
	total := 1000.0

	res := Route(pools, domain.SideBuyX, total, cpammQuote(30))

	for i, a := range res.Allocations {
		frac := float64(a.Input) / domain.ScaleF / total
		if math.Abs(frac-0.5) > 0.05 {
			t.Errorf("pool %d got fraction %.3f, want about 0.5", i, frac)
		}
	}
}

func TestRouteThreeWaySymmetric(t *testing.T) {
	pools := identicalPools(3)
	total := 100.0

	res := Route(pools, domain.SideBuyX, total, cpammQuote(30))

	for i, a := range res.Allocations {
		frac := float64(a.Input) / domain.ScaleF / total
		if math.Abs(frac-1.0/3.0) > 0.05 {
			t.Errorf("pool %d got fraction %.3f, want about 1/3", i, frac)
		}
	}
}

func TestRoutePrefersDeeperPool(t *testing.T) {
	pools := []Snapshot{
		{ReserveX: 100 * domain.Scale, ReserveY: 10_000 * domain.Scale},
		{ReserveX: 1000 * domain.Scale, ReserveY: 100_000 * domain.Scale},
	}

	res := Route(pools, domain.SideBuyX, 500.0, cpammQuote(30))

	if res.Allocations[1].Input <= res.Allocations[0].Input {
		t.Errorf("deep pool got %d, shallow got %d; deep should dominate",
			res.Allocations[1].Input, res.Allocations[0].Input)
	}
}

func TestRouteSinglePoolTakesAll(t *testing.T) {
	pools := identicalPools(1)
	total := 100.0

	res := Route(pools, domain.SideSellX, total, cpammQuote(30))

	got := float64(res.Allocations[0].Input) / domain.ScaleF
	if math.Abs(got-total) > 1e-6 {
		t.Errorf("single pool got %.6f, want %.1f", got, total)
	}
	if res.TotalOutput == 0 {
		t.Error("single pool produced no output")
	}
}

func TestRouteSkipsHaltedPools(t *testing.T) {
	pools := identicalPools(2)
	pools[0].Halted = true

	res := Route(pools, domain.SideBuyX, 100.0, cpammQuote(30))

	if res.Allocations[0].Input != 0 {
		t.Error("halted pool received flow")
	}
	if res.Allocations[1].Input == 0 {
		t.Error("active pool received nothing")
	}
}

func TestRouteZeroInputNoOp(t *testing.T) {
	res := Route(identicalPools(3), domain.SideBuyX, 0, cpammQuote(30))
	if res.TotalOutput != 0 {
		t.Errorf("zero order produced output %d", res.TotalOutput)
	}
	res = Route(nil, domain.SideBuyX, 100, cpammQuote(30))
	if res.TotalOutput != 0 || len(res.Allocations) != 0 {
		t.Error("no pools produced output")
	}
}

func TestRouteMarginalRatesEqualized(t *testing.T) {
	// Different fees: at the optimum both pools' marginal rates sit at the
	// shadow price, within search tolerance.
	pools := identicalPools(2)
	quote := func(i int, side domain.Side, input, rx, ry uint64) uint64 {
		fee := uint32(30)
		if i == 1 {
			fee = 70
		}
		return amm.QuoteCPAMM(side, input, rx, ry, fee)
	}

	res := Route(pools, domain.SideBuyX, 800.0, quote)

	for i, a := range res.Allocations {
		if a.Input == 0 {
			continue
		}
		x := float64(a.Input) / domain.ScaleF
		delta := x*0.001 + 1e-9
		o1 := float64(quote(i, domain.SideBuyX, uint64(x*domain.ScaleF), pools[i].ReserveX, pools[i].ReserveY)) / domain.ScaleF
		o2 := float64(quote(i, domain.SideBuyX, uint64((x+delta)*domain.ScaleF), pools[i].ReserveX, pools[i].ReserveY)) / domain.ScaleF
		marginal := (o2 - o1) / delta

		if math.Abs(marginal-res.ShadowPrice) > 0.05*res.ShadowPrice {
			t.Errorf("pool %d marginal %.6f deviates from shadow price %.6f", i, marginal, res.ShadowPrice)
		}
	}
}
