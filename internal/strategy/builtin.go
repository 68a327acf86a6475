package strategy

import (
	"fmt"
	"sort"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/domain"
)

// FixedFee is a built-in reference competitor: a constant-product AMM with a
// fixed fee and no state. Useful as a known-good baseline submission.
type FixedFee struct {
	FeeBps uint32
}

// Name includes the fee so distinct fees are distinct competitors.
func (s *FixedFee) Name() string { return fmt.Sprintf("cpamm-%dbps", s.FeeBps) }

// Quote is the plain fee-adjusted constant-product output.
func (s *FixedFee) Quote(side domain.Side, input, reserveX, reserveY uint64, _ *domain.Storage) (uint64, error) {
	return amm.QuoteCPAMM(side, input, reserveX, reserveY, s.FeeBps), nil
}

// AfterSwap is a no-op.
func (s *FixedFee) AfterSwap(*AfterSwapPayload, *domain.Storage) error { return nil }

// OnEpochBoundary is a no-op.
func (s *FixedFee) OnEpochBoundary(*EpochBoundaryPayload, *domain.Storage) error { return nil }

// AdaptiveFee is a built-in competitor that widens its fee after losing
// epochs and tightens it after winning ones, keeping its state in the
// persistent storage slots so it survives epoch boundaries.
//
// Slot 0: current fee in bps. Slot 1: trades seen this epoch.
type AdaptiveFee struct {
	BaseFeeBps uint32
	MinFeeBps  uint32
	MaxFeeBps  uint32
}

// NewAdaptiveFee returns the default adaptive competitor.
func NewAdaptiveFee() *AdaptiveFee {
	return &AdaptiveFee{BaseFeeBps: 50, MinFeeBps: 10, MaxFeeBps: 200}
}

// Name identifies the adaptive competitor.
func (s *AdaptiveFee) Name() string { return fmt.Sprintf("adaptive-%dbps", s.BaseFeeBps) }

func (s *AdaptiveFee) fee(storage *domain.Storage) uint32 {
	fee := uint32(storage.Slot(0))
	if fee == 0 {
		fee = s.BaseFeeBps
	}
	if fee < s.MinFeeBps {
		fee = s.MinFeeBps
	}
	if fee > s.MaxFeeBps {
		fee = s.MaxFeeBps
	}
	return fee
}

// Quote prices at the current stored fee. Read-only on storage.
func (s *AdaptiveFee) Quote(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) (uint64, error) {
	return amm.QuoteCPAMM(side, input, reserveX, reserveY, s.fee(storage)), nil
}

// AfterSwap counts trades for the running epoch.
func (s *AdaptiveFee) AfterSwap(_ *AfterSwapPayload, storage *domain.Storage) error {
	storage.SetSlot(1, storage.Slot(1)+1)
	return nil
}

// OnEpochBoundary adjusts the fee: losses widen it by 10 bps, gains tighten
// it by 5, clamped to [MinFeeBps, MaxFeeBps].
func (s *AdaptiveFee) OnEpochBoundary(p *EpochBoundaryPayload, storage *domain.Storage) error {
	fee := s.fee(storage)
	if p.EpochEdge < 0 {
		fee += 10
	} else if p.EpochEdge > 0 && fee > s.MinFeeBps+5 {
		fee -= 5
	}
	if fee > s.MaxFeeBps {
		fee = s.MaxFeeBps
	}
	storage.SetSlot(0, uint64(fee))
	storage.SetSlot(1, 0)
	return nil
}

var (
	_ Strategy = (*FixedFee)(nil)
	_ Strategy = (*AdaptiveFee)(nil)
)

// builtins maps names accepted by the CLI to in-process strategies, for
// local runs and tests that have no compiled artifact at hand.
var builtins = map[string]func() Strategy{
	"cpamm30":  func() Strategy { return &FixedFee{FeeBps: 30} },
	"cpamm50":  func() Strategy { return &FixedFee{FeeBps: 50} },
	"cpamm70":  func() Strategy { return &FixedFee{FeeBps: 70} },
	"adaptive": func() Strategy { return NewAdaptiveFee() },
}

// Builtin returns the named built-in strategy.
func Builtin(name string) (Strategy, error) {
	factory, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin strategy %q (have %v)", name, BuiltinNames())
	}
	return factory(), nil
}

// BuiltinNames lists the registered built-ins in stable order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
