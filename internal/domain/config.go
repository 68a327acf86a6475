package domain

import (
	"errors"
	"fmt"
)

// Configuration errors. All are rejected before any simulation starts; a run
// never partially executes with a bad config.
var (
	ErrNoSteps            = errors.New("total steps must be positive")
	ErrZeroEpochLen       = errors.New("epoch length must be positive")
	ErrTooManyStrategies  = fmt.Errorf("at most %d strategies per run", MaxStrategies)
	ErrZeroReserves       = errors.New("base reserves must be positive")
	ErrNegativeRisk       = errors.New("risk aversion must be non-negative")
	ErrBadTemperature     = errors.New("softmax temperature must be positive")
	ErrBadWeightFloor     = errors.New("capital weight floor must be in [0, 1)")
	ErrFloorOverSubscribe = errors.New("weight floor times strategy count exceeds 1")
	ErrNoSimulations      = errors.New("simulation count must be positive")
)

// SimConfig configures one simulation. The same config is shared by every
// simulation of a run; only the seed varies.
type SimConfig struct {
	// TotalSteps is the number of price/trade steps per simulation.
	TotalSteps int
	// EpochLen is the number of steps per epoch. Capital is rebalanced at
	// every epoch boundary except step 0 and the final step.
	EpochLen int
	// BaseReserveX, BaseReserveY are the initial reserves of every strategy
	// pool (fixed point 1e9). The normalizer's reserves are these times its
	// sampled liquidity multiplier.
	BaseReserveX uint64
	BaseReserveY uint64
	// RiskAversion is the downside penalty λ in the risk-adjusted score
	// edge − λ·max(0, −edge).
	RiskAversion float64
	// MinCapitalWeight is the floor applied to every pool's capital weight
	// at rebalance.
	MinCapitalWeight float64
	// SoftmaxTemperature tempers the score→weight softmax. Higher is more
	// uniform.
	SoftmaxTemperature float64
	// ArbProfitFloor is the minimum arbitrageur profit (in Y, unscaled)
	// required to execute an arb trade.
	ArbProfitFloor float64
	// QuoteFaultLimit is the number of misbehaving quote calls after which a
	// pool is excluded from the rest of its simulation.
	QuoteFaultLimit int
}

// DefaultSimConfig returns the standard competition configuration.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		TotalSteps:         10_000,
		EpochLen:           1_000,
		BaseReserveX:       100 * Scale,    // 100 X
		BaseReserveY:       10_000 * Scale, // 10,000 Y → spot = 100
		RiskAversion:       2.0,
		MinCapitalWeight:   0.02,
		SoftmaxTemperature: 1.0,
		ArbProfitFloor:     0.01,
		QuoteFaultLimit:    3,
	}
}

// Validate checks the config against nStrategies competing pools.
func (c SimConfig) Validate(nStrategies int) error {
	if c.TotalSteps <= 0 {
		return ErrNoSteps
	}
	if c.EpochLen <= 0 {
		return ErrZeroEpochLen
	}
	if nStrategies > MaxStrategies {
		return ErrTooManyStrategies
	}
	if c.BaseReserveX == 0 || c.BaseReserveY == 0 {
		return ErrZeroReserves
	}
	if c.RiskAversion < 0 {
		return ErrNegativeRisk
	}
	if c.SoftmaxTemperature <= 0 {
		return ErrBadTemperature
	}
	if c.MinCapitalWeight < 0 || c.MinCapitalWeight >= 1 {
		return ErrBadWeightFloor
	}
	if nStrategies > 0 && c.MinCapitalWeight*float64(nStrategies) > 1 {
		return ErrFloorOverSubscribe
	}
	return nil
}

// RunParams is what the external job layer hands the engine for one run.
type RunParams struct {
	Simulations int
	SeedStart   uint64
	Sim         SimConfig
}

// Validate checks the run parameters for nStrategies competing pools.
func (p RunParams) Validate(nStrategies int) error {
	if p.Simulations <= 0 {
		return ErrNoSimulations
	}
	return p.Sim.Validate(nStrategies)
}
