package strategy

import (
	"fmt"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/domain"
)

// Normalizer is the built-in reference strategy: a plain constant-product
// AMM with a sampled fee, no adaptive logic, no storage use. It is the
// baseline every competitor's edge is measured against.
type Normalizer struct {
	FeeBps uint32
}

// NewNormalizer creates the reference strategy with the given fee.
func NewNormalizer(feeBps uint32) *Normalizer {
	return &Normalizer{FeeBps: feeBps}
}

// Name identifies the normalizer including its sampled fee.
func (n *Normalizer) Name() string {
	return fmt.Sprintf("normalizer-%dbps", n.FeeBps)
}

// Quote is the fee-adjusted constant-product output.
func (n *Normalizer) Quote(side domain.Side, input, reserveX, reserveY uint64, _ *domain.Storage) (uint64, error) {
	return amm.QuoteCPAMM(side, input, reserveX, reserveY, n.FeeBps), nil
}

// AfterSwap is a no-op: the normalizer keeps no state.
func (n *Normalizer) AfterSwap(*AfterSwapPayload, *domain.Storage) error { return nil }

// OnEpochBoundary is a no-op.
func (n *Normalizer) OnEpochBoundary(*EpochBoundaryPayload, *domain.Storage) error { return nil }

var _ Strategy = (*Normalizer)(nil)
