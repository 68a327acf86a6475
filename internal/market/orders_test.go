package market

import (
	"math"
	"testing"

	"prop-amm-lab/internal/domain"
)

func TestOrdersApproximatelyPoisson(t *testing.T) {
	rng := NewRand(99)
	params := Params{
		Sigma:                   0.003,
		ArrivalRate:             0.8,
		OrderSizeMean:           20.0,
		NormalizerFeeBps:        30,
		NormalizerLiquidityMult: 1.0,
	}

	nSteps := 10_000
	total := 0
	for i := 0; i < nSteps; i++ {
		total += len(GenerateOrders(params, rng))
	}

	mean := float64(total) / float64(nSteps)
	if math.Abs(mean-0.8) > 0.05 {
		t.Errorf("mean orders/step = %.3f, expected about 0.8", mean)
	}
}

func TestOrderSizesPositive(t *testing.T) {
	rng := NewRand(5)
	params := QuietParams()
	params.ArrivalRate = 1.2

	for i := 0; i < 10_000; i++ {
		for _, o := range GenerateOrders(params, rng) {
			if o.SizeY <= 0 || math.IsNaN(o.SizeY) {
				t.Fatalf("bad order size: %v", o.SizeY)
			}
			if o.Side != domain.SideBuyX && o.Side != domain.SideSellX {
				t.Fatalf("bad order side: %v", o.Side)
			}
		}
	}
}

func TestSampleParamsInRange(t *testing.T) {
	rng := NewRand(11)
	for i := 0; i < 1000; i++ {
		p := SampleParams(rng)
		if p.Sigma < 0.0001 || p.Sigma > 0.007 {
			t.Fatalf("sigma out of range: %v", p.Sigma)
		}
		if p.ArrivalRate < 0.4 || p.ArrivalRate > 1.2 {
			t.Fatalf("arrival rate out of range: %v", p.ArrivalRate)
		}
		if p.OrderSizeMean < 12 || p.OrderSizeMean > 28 {
			t.Fatalf("order size mean out of range: %v", p.OrderSizeMean)
		}
		if p.NormalizerFeeBps < 30 || p.NormalizerFeeBps > 80 {
			t.Fatalf("fee out of range: %d", p.NormalizerFeeBps)
		}
		if p.NormalizerLiquidityMult < 0.4 || p.NormalizerLiquidityMult > 2.0 {
			t.Fatalf("liquidity mult out of range: %v", p.NormalizerLiquidityMult)
		}
	}
}
