// Package amm holds the engine-side state of one competing pool and the
// constant-product math shared by the normalizer and the reserve updates.
package amm

import "prop-amm-lab/internal/domain"

// Pool is the live state of one AMM instance: reserves, the strategy's
// opaque storage, and edge/capital accounting. One Pool exists per
// competitor (strategies plus the normalizer) per simulation; a Pool never
// observes another Pool's storage.
type Pool struct {
	ReserveX uint64
	ReserveY uint64
	Storage  domain.Storage

	CumulativeEdge  float64
	EpochEdge       float64
	EpochTradeCount uint64

	// CapitalWeight is this pool's share of total system capital,
	// recomputed only at epoch boundaries.
	CapitalWeight float64

	Index uint8
	Name  string

	// Halted marks a pool excluded from further trades after repeated quote
	// faults. Its state freezes for the rest of the simulation.
	Halted bool
}

// NewPool returns a pool with zeroed storage and accounting.
func NewPool(reserveX, reserveY uint64, index uint8, name string) *Pool {
	return &Pool{
		ReserveX:      reserveX,
		ReserveY:      reserveY,
		CapitalWeight: 1.0,
		Index:         index,
		Name:          name,
	}
}

// SpotPrice is the pool's marginal price of X in Y terms: reserveY/reserveX.
func (p *Pool) SpotPrice() float64 {
	return float64(p.ReserveY) / float64(p.ReserveX)
}

// AccrueEdge books the profit-and-loss of one trade against the fair price
// at execution time. amountX/amountY are the X and Y legs in fixed point.
// When the pool buys X (receives Y, pays X): edge = Y_in − X_out·fair.
// When the pool sells X (receives X, pays Y): edge = X_in·fair − Y_out.
func (p *Pool) AccrueEdge(amountX, amountY uint64, side domain.Side, fairPrice float64) {
	ax := float64(amountX) / domain.ScaleF
	ay := float64(amountY) / domain.ScaleF

	var edge float64
	if side == domain.SideBuyX {
		// Trader buys X: the pool receives Y and pays X.
		edge = ay - ax*fairPrice
	} else {
		edge = ax*fairPrice - ay
	}

	p.CumulativeEdge += edge
	p.EpochEdge += edge
	p.EpochTradeCount++
}

// ApplyTrade moves reserves for an executed trade. Saturating, so a
// pathological output can empty but never underflow a reserve.
func (p *Pool) ApplyTrade(side domain.Side, input, output uint64) {
	if side == domain.SideBuyX {
		p.ReserveY = satAdd(p.ReserveY, input)
		p.ReserveX = satSub(p.ReserveX, output)
	} else {
		p.ReserveX = satAdd(p.ReserveX, input)
		p.ReserveY = satSub(p.ReserveY, output)
	}
}

// ResetEpoch clears the per-epoch accumulators after they have been
// reported.
func (p *Pool) ResetEpoch() {
	p.EpochEdge = 0
	p.EpochTradeCount = 0
}

func satAdd(a, b uint64) uint64 {
	if s := a + b; s >= a {
		return s
	}
	return ^uint64(0)
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
