package validator

import (
	"errors"
	"fmt"
	"testing"

	"prop-amm-lab/internal/amm"
	"prop-amm-lab/internal/domain"
)

func cpammFn(feeBps uint32) QuoteFn {
	return func(side domain.Side, input, rx, ry uint64, _ *domain.Storage) (uint64, error) {
		return amm.QuoteCPAMM(side, input, rx, ry, feeBps), nil
	}
}

func TestRunAdmitsConstantProduct(t *testing.T) {
	rep := Run("cpamm30", cpammFn(30))
	if !rep.Passed() {
		t.Fatalf("constant product rejected: %v", rep.Violation)
	}
	wantProbes := len(reserveGrid) * 2 * len(inputLadder)
	if rep.Probes != wantProbes {
		t.Errorf("probes = %d, want %d", rep.Probes, wantProbes)
	}
}

func TestRunRejectsNonFinite(t *testing.T) {
	// Quotes the whole out-side reserve past a threshold input.
	quote := func(side domain.Side, input, rx, ry uint64, _ *domain.Storage) (uint64, error) {
		reserveIn, reserveOut := ry, rx
		if side == domain.SideSellX {
			reserveIn, reserveOut = rx, ry
		}
		if input > reserveIn/5 {
			return reserveOut, nil
		}
		return amm.QuoteCPAMM(side, input, rx, ry, 30), nil
	}

	rep := Run("drainer", quote)
	if rep.Passed() {
		t.Fatal("reserve-draining quote admitted")
	}
	v := rep.Violation
	if v.Check != CheckFinite {
		t.Fatalf("check = %s, want %s", v.Check, CheckFinite)
	}
	// The violation carries the exact probe that drained the pool.
	reserveIn := v.ReserveY
	if v.Side == domain.SideSellX {
		reserveIn = v.ReserveX
	}
	if v.Input <= reserveIn/5 {
		t.Errorf("reported input %d is below the drain threshold", v.Input)
	}
	if !errors.Is(v, ErrRejected) {
		t.Error("violation does not unwrap to ErrRejected")
	}
}

func TestRunRejectsDecreasingOutput(t *testing.T) {
	quote := func(side domain.Side, input, rx, ry uint64, _ *domain.Storage) (uint64, error) {
		reserveIn := ry
		if side == domain.SideSellX {
			reserveIn = rx
		}
		out := amm.QuoteCPAMM(side, input, rx, ry, 30)
		// Output collapses for large trades.
		if input > reserveIn/10 {
			return out / 100, nil
		}
		return out, nil
	}

	rep := Run("collapsing", quote)
	if rep.Passed() {
		t.Fatal("decreasing quote admitted")
	}
	if rep.Violation.Check != CheckMonotone {
		t.Errorf("check = %s, want %s", rep.Violation.Check, CheckMonotone)
	}
}

func TestRunRejectsConvexQuote(t *testing.T) {
	// Superlinear output: marginal rate grows with input.
	quote := func(side domain.Side, input, rx, ry uint64, _ *domain.Storage) (uint64, error) {
		reserveIn, reserveOut := ry, rx
		if side == domain.SideSellX {
			reserveIn, reserveOut = rx, ry
		}
		frac := float64(input) / float64(reserveIn)
		return uint64(float64(reserveOut) * frac * frac), nil
	}

	rep := Run("convex", quote)
	if rep.Passed() {
		t.Fatal("convex quote admitted")
	}
	if rep.Violation.Check != CheckConcave {
		t.Errorf("check = %s, want %s", rep.Violation.Check, CheckConcave)
	}
}

func TestRunRejectsErroringQuote(t *testing.T) {
	quote := func(side domain.Side, input, rx, ry uint64, _ *domain.Storage) (uint64, error) {
		return 0, fmt.Errorf("no price")
	}
	rep := Run("broken", quote)
	if rep.Passed() {
		t.Fatal("erroring quote admitted")
	}
	if rep.Violation.Check != CheckQuoteCall {
		t.Errorf("check = %s, want %s", rep.Violation.Check, CheckQuoteCall)
	}
}

func TestParity(t *testing.T) {
	same := Parity("twins", cpammFn(30), cpammFn(30))
	if !same.Passed() {
		t.Fatalf("identical builds diverged: %v", same.Violation)
	}

	diff := Parity("drift", cpammFn(30), cpammFn(100))
	if diff.Passed() {
		t.Fatal("different fee schedules passed parity")
	}
	if diff.Violation.Check != CheckParity {
		t.Errorf("check = %s, want %s", diff.Violation.Check, CheckParity)
	}
}
