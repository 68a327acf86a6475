package strategy

import (
	"errors"
	"testing"

	"prop-amm-lab/internal/domain"
)

// misbehaving fails in a configurable way for testing containment.
type misbehaving struct {
	panics   bool
	errs     bool
	oversize bool
}

func (m *misbehaving) Name() string { return "misbehaving" }

func (m *misbehaving) Quote(side domain.Side, input, reserveX, reserveY uint64, _ *domain.Storage) (uint64, error) {
	switch {
	case m.panics:
		panic("boom")
	case m.errs:
		return 0, errors.New("refused")
	case m.oversize:
		return reserveX, nil
	}
	return input / 100, nil
}

func (m *misbehaving) AfterSwap(*AfterSwapPayload, *domain.Storage) error { panic("hook boom") }

func (m *misbehaving) OnEpochBoundary(*EpochBoundaryPayload, *domain.Storage) error { return nil }

func TestGuardDegradesPanicToZero(t *testing.T) {
	var storage domain.Storage
	g := NewGuard(&misbehaving{panics: true}, 3, nil)

	out := g.Quote(domain.SideBuyX, 100, 1000, 1000, &storage)
	if out != 0 {
		t.Errorf("panicking quote returned %d, want 0", out)
	}
	if g.Faults() != 1 {
		t.Errorf("faults = %d, want 1", g.Faults())
	}
}

func TestGuardRejectsReserveDrainingOutput(t *testing.T) {
	var storage domain.Storage
	g := NewGuard(&misbehaving{oversize: true}, 3, nil)

	if out := g.Quote(domain.SideBuyX, 100, 1000, 1000, &storage); out != 0 {
		t.Errorf("reserve-draining quote returned %d, want 0", out)
	}
	if g.Faults() != 1 {
		t.Errorf("faults = %d, want 1", g.Faults())
	}
}

func TestGuardDisablesAfterFaultLimit(t *testing.T) {
	var storage domain.Storage
	g := NewGuard(&misbehaving{errs: true}, 3, nil)

	for i := 0; i < 3; i++ {
		if g.Disabled() {
			t.Fatalf("disabled after only %d faults", i)
		}
		g.Quote(domain.SideSellX, 100, 1000, 1000, &storage)
	}
	if !g.Disabled() {
		t.Error("not disabled after reaching fault limit")
	}
}

func TestGuardZeroLimitNeverDisables(t *testing.T) {
	var storage domain.Storage
	g := NewGuard(&misbehaving{errs: true}, 0, nil)

	for i := 0; i < 100; i++ {
		g.Quote(domain.SideSellX, 100, 1000, 1000, &storage)
	}
	if g.Disabled() {
		t.Error("disabled despite zero fault limit")
	}
}

func TestGuardCleanQuotePasses(t *testing.T) {
	var storage domain.Storage
	g := NewGuard(&misbehaving{}, 3, nil)

	if out := g.Quote(domain.SideBuyX, 100, 1000, 1000, &storage); out != 1 {
		t.Errorf("clean quote = %d, want 1", out)
	}
	if g.Faults() != 0 {
		t.Errorf("faults = %d, want 0", g.Faults())
	}
}

func TestGuardHookPanicContained(t *testing.T) {
	var storage domain.Storage
	g := NewGuard(&misbehaving{}, 3, nil)

	// Must not panic.
	g.AfterSwap(&AfterSwapPayload{}, &storage)
}
