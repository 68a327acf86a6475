package market

import (
	"math"
	"math/rand/v2"

	"prop-amm-lab/internal/domain"
)

// RetailOrder is one uninformed retail order, sized in Y terms regardless of
// direction. The router converts sell-side orders to X input at fair price.
type RetailOrder struct {
	Side  domain.Side
	SizeY float64 // unscaled
}

// GenerateOrders draws this step's retail orders: a Poisson arrival count
// with LogNormal sizes and fair-coin direction.
func GenerateOrders(p Params, rng *rand.Rand) []RetailOrder {
	count := poisson(p.ArrivalRate, rng)
	if count == 0 {
		return nil
	}

	// LogNormal with E[X] = OrderSizeMean: μ = ln(E[X]) − σ²/2.
	muLn := math.Log(p.OrderSizeMean) - 0.5*orderSizeSigmaLn*orderSizeSigmaLn

	orders := make([]RetailOrder, count)
	for i := range orders {
		side := domain.SideBuyX
		if rng.Float64() < 0.5 {
			side = domain.SideSellX
		}
		orders[i] = RetailOrder{
			Side:  side,
			SizeY: math.Exp(muLn + orderSizeSigmaLn*rng.NormFloat64()),
		}
	}
	return orders
}

// poisson draws a Poisson count via Knuth's product method. The arrival
// rates in play are ~1 per step, so the expected loop length is tiny.
func poisson(lambda float64, rng *rand.Rand) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	count := 0
	prod := rng.Float64()
	for prod > limit {
		count++
		prod *= rng.Float64()
	}
	return count
}
