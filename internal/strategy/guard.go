package strategy

import (
	"go.uber.org/zap"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/observability"
)

// Guard wraps a Strategy with the fault-containment contract of the
// execution boundary: a quote call that panics, errors, or violates its
// declared contract degrades to a zero output for that call, so one bad
// quote cannot corrupt routing math. Repeated faults disable the strategy
// for the remainder of the simulation.
//
// A Guard is owned by exactly one pool in one simulation and is not safe
// for concurrent use, matching the single-threaded step order per pool.
type Guard struct {
	inner      Strategy
	faultLimit int
	faults     int
	log        *zap.Logger
}

// NewGuard wraps s. faultLimit <= 0 means faults never disable the pool.
// logger may be nil.
func NewGuard(s Strategy, faultLimit int, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{inner: s, faultLimit: faultLimit, log: logger}
}

// Name returns the wrapped strategy's identity.
func (g *Guard) Name() string { return g.inner.Name() }

// Disabled reports whether the fault budget is exhausted.
func (g *Guard) Disabled() bool {
	return g.faultLimit > 0 && g.faults >= g.faultLimit
}

// Faults returns the number of misbehaving quote calls observed so far.
func (g *Guard) Faults() int { return g.faults }

// Quote invokes the wrapped quote and degrades any misbehavior to zero
// output. An output that would empty the out-side reserve counts as a
// contract violation: active pools must keep both reserves positive.
func (g *Guard) Quote(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) uint64 {
	out, err := g.safeQuote(side, input, reserveX, reserveY, storage)
	if err == nil {
		reserveOut := reserveX
		if side == domain.SideSellX {
			reserveOut = reserveY
		}
		if out >= reserveOut {
			err = ErrOutputTooLarge
		}
	}
	if err != nil {
		g.fault(side, input, err)
		return 0
	}
	return out
}

func (g *Guard) safeQuote(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) (out uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = 0, ErrQuotePanic
		}
	}()
	return g.inner.Quote(side, input, reserveX, reserveY, storage)
}

func (g *Guard) fault(side domain.Side, input uint64, err error) {
	g.faults++
	observability.RecordQuoteFault(g.inner.Name())
	g.log.Warn("quote degraded to zero output",
		zap.String("strategy", g.inner.Name()),
		zap.String("side", side.String()),
		zap.Uint64("input", input),
		zap.Int("faults", g.faults),
		zap.Error(err),
	)
	if g.Disabled() {
		observability.RecordPoolHalted(g.inner.Name())
		g.log.Warn("fault budget exhausted, pool excluded from further trades",
			zap.String("strategy", g.inner.Name()),
		)
	}
}

// AfterSwap forwards the hook, swallowing panics: a bad hook may lose its
// own storage update but cannot take down the simulation.
func (g *Guard) AfterSwap(p *AfterSwapPayload, storage *domain.Storage) {
	defer func() { _ = recover() }()
	_ = g.inner.AfterSwap(p, storage)
}

// OnEpochBoundary forwards the hook, swallowing panics.
func (g *Guard) OnEpochBoundary(p *EpochBoundaryPayload, storage *domain.Storage) {
	defer func() { _ = recover() }()
	_ = g.inner.OnEpochBoundary(p, storage)
}
