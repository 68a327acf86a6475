// Package router splits one retail order across all active pools using the
// equimarginal principle: at the optimum every pool receiving flow has the
// same marginal output rate λ*, found by nested bisection over black-box
// quotes.
package router

import (
	"time"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/observability"
)

// Fixed iteration budgets. Cost per retail order is O(N · outer · inner)
// quote evaluations, bounded and independent of reserve magnitude: a small
// fixed numerical-precision cost buys predictable latency regardless of
// strategy complexity.
const (
	outerIters = 80 // bisection on the shadow price λ
	innerIters = 60 // bisection on each pool's allocation
	relTol     = 1e-6
)

// QuoteFn prices a probe swap against pool i at the given reserves.
type QuoteFn func(i int, side domain.Side, input, reserveX, reserveY uint64) uint64

// Snapshot is the immutable per-pool view the router searches over.
type Snapshot struct {
	ReserveX uint64
	ReserveY uint64
	// Halted pools take no flow.
	Halted bool
}

// Allocation is one pool's share of the routed order, fixed point.
type Allocation struct {
	Input  uint64
	Output uint64
}

// Result of routing one retail order.
type Result struct {
	// Allocations has one entry per pool, zero-valued for pools that took
	// no flow.
	Allocations []Allocation
	TotalOutput uint64
	// ShadowPrice is the common marginal rate λ* at the optimum.
	ShadowPrice float64
}

// Route splits totalInput (unscaled, in the input token of side) across the
// pools. For each candidate λ, pool i's allocation is the largest input at
// which its discrete marginal output rate still meets λ (inner bisection;
// the rate is decreasing by the concavity contract). The outer bisection
// moves λ until allocations sum to the order size. Ties between pools with
// identical marginal rates need no explicit break: allocations are
// continuous in λ.
func Route(pools []Snapshot, side domain.Side, totalInput float64, quote QuoteFn) Result {
	started := time.Now()
	defer func() { observability.RecordRouterLatency(time.Since(started).Seconds()) }()

	n := len(pools)
	res := Result{Allocations: make([]Allocation, n)}
	if n == 0 || totalInput <= 0 {
		return res
	}

	active := make([]int, 0, n)
	for i, p := range pools {
		if !p.Halted && p.ReserveX > 0 && p.ReserveY > 0 {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return res
	}

	if len(active) == 1 {
		i := active[0]
		inScaled := uint64(totalInput * domain.ScaleF)
		out := quote(i, side, inScaled, pools[i].ReserveX, pools[i].ReserveY)
		res.Allocations[i] = Allocation{Input: inScaled, Output: out}
		res.TotalOutput = out
		return res
	}

	// Discrete marginal output rate of pool i at input x (unscaled):
	// forward difference of the quote.
	marginal := func(i int, x float64) float64 {
		delta := x*0.001 + 1.0/domain.ScaleF
		o1 := float64(quote(i, side, uint64(x*domain.ScaleF), pools[i].ReserveX, pools[i].ReserveY)) / domain.ScaleF
		o2 := float64(quote(i, side, uint64((x+delta)*domain.ScaleF), pools[i].ReserveX, pools[i].ReserveY)) / domain.ScaleF
		return (o2 - o1) / delta
	}

	maxIn := func(i int) float64 {
		if side == domain.SideBuyX {
			return float64(pools[i].ReserveY) * 0.9 / domain.ScaleF
		}
		return float64(pools[i].ReserveX) * 0.9 / domain.ScaleF
	}

	// x_i(λ): largest input whose marginal rate still meets λ.
	allocationAt := func(i int, lambda float64) float64 {
		hi := maxIn(i)
		if marginal(i, 1.0/domain.ScaleF) < lambda {
			return 0
		}
		if marginal(i, hi) >= lambda {
			return hi
		}
		lo := 0.0
		for iter := 0; iter < innerIters; iter++ {
			mid := 0.5 * (lo + hi)
			if marginal(i, mid) >= lambda {
				lo = mid
			} else {
				hi = mid
			}
			if (hi-lo)/(hi+lo+1e-12) < relTol {
				break
			}
		}
		return 0.5 * (lo + hi)
	}

	// Outer bisection on λ over [0, 1.5·best initial marginal].
	var lambdaMax float64
	for _, i := range active {
		if m := marginal(i, 1.0/domain.ScaleF); m > lambdaMax {
			lambdaMax = m
		}
	}

	loL, hiL := 0.0, lambdaMax*1.5
	for iter := 0; iter < outerIters; iter++ {
		mid := 0.5 * (loL + hiL)
		var total float64
		for _, i := range active {
			total += allocationAt(i, mid)
		}
		if total > totalInput {
			loL = mid
		} else {
			hiL = mid
		}
		if (hiL-loL)/(hiL+loL+1e-12) < relTol {
			break
		}
	}
	lambda := 0.5 * (loL + hiL)
	res.ShadowPrice = lambda

	raw := make([]float64, n)
	var rawSum float64
	for _, i := range active {
		raw[i] = allocationAt(i, lambda)
		rawSum += raw[i]
	}

	// Rescale so the allocations meet the order size exactly; the bisection
	// tolerance leaves a sub-ppm residual either way.
	scale := 0.0
	if rawSum > 1e-12 {
		scale = totalInput / rawSum
	}

	for _, i := range active {
		inScaled := uint64(raw[i] * scale * domain.ScaleF)
		if inScaled == 0 {
			continue
		}
		out := quote(i, side, inScaled, pools[i].ReserveX, pools[i].ReserveY)
		res.Allocations[i] = Allocation{Input: inScaled, Output: out}
		res.TotalOutput += out
	}

	return res
}
