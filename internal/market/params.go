package market

import "math/rand/v2"

// Params are the market parameters of one simulation, sampled once per
// simulation from its seed. They control volatility, retail arrival
// intensity and size, and the normalizer's fee and depth.
type Params struct {
	// Sigma is the per-step GBM volatility.
	Sigma float64
	// ArrivalRate is the Poisson retail order arrival rate per step.
	ArrivalRate float64
	// OrderSizeMean is the LogNormal mean retail order size in Y, unscaled.
	OrderSizeMean float64
	// NormalizerFeeBps is the normalizer's fee in basis points.
	NormalizerFeeBps uint32
	// NormalizerLiquidityMult scales the normalizer's initial reserves
	// relative to the strategy pools.
	NormalizerLiquidityMult float64
}

// orderSizeSigmaLn is the LogNormal shape of retail order sizes.
const orderSizeSigmaLn = 1.2

// SampleParams draws fresh market parameters for a new simulation.
// Ranges match the competition environment the strategies are scored in.
func SampleParams(rng *rand.Rand) Params {
	return Params{
		Sigma:                   uniform(rng, 0.0001, 0.0070),
		ArrivalRate:             uniform(rng, 0.4, 1.2),
		OrderSizeMean:           uniform(rng, 12.0, 28.0),
		NormalizerFeeBps:        30 + uint32(rng.Int64N(51)), // U[30, 80]
		NormalizerLiquidityMult: uniform(rng, 0.4, 2.0),
	}
}

// QuietParams returns a degenerate environment with zero volatility and no
// retail flow. Used by deterministic scenario tests and dry runs.
func QuietParams() Params {
	return Params{
		Sigma:                   0,
		ArrivalRate:             0,
		OrderSizeMean:           20.0,
		NormalizerFeeBps:        30,
		NormalizerLiquidityMult: 1.0,
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
