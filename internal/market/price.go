package market

import (
	"errors"
	"math"
	"math/rand/v2"
)

// Price process construction errors.
var (
	ErrNegativeVolatility = errors.New("volatility must be non-negative")
	ErrNonPositivePrice   = errors.New("initial price must be positive")
)

// PriceProcess is a lazy, finite, non-restartable geometric Brownian motion:
//
//	S[t+1] = S[t] · exp(−σ²/2 + σ·Z),  Z ~ N(0,1)
//
// one value per Step call. It owns no state beyond the current price and the
// generator, so a simulation driver holds exactly one per simulation.
type PriceProcess struct {
	price float64
	sigma float64
	rng   *rand.Rand
}

// NewPriceProcess validates the parameters and returns a process positioned
// at the initial price.
func NewPriceProcess(initial, sigma float64, rng *rand.Rand) (*PriceProcess, error) {
	if sigma < 0 {
		return nil, ErrNegativeVolatility
	}
	if initial <= 0 || math.IsNaN(initial) || math.IsInf(initial, 0) {
		return nil, ErrNonPositivePrice
	}
	return &PriceProcess{price: initial, sigma: sigma, rng: rng}, nil
}

// Price returns the current spot price without advancing.
func (p *PriceProcess) Price() float64 {
	return p.price
}

// Step advances the process by one step and returns the new price.
func (p *PriceProcess) Step() float64 {
	z := p.rng.NormFloat64()
	p.price *= math.Exp(-0.5*p.sigma*p.sigma + p.sigma*z)
	return p.price
}
