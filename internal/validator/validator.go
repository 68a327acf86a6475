// Package validator admits strategies to competition. The arbitrage and
// routing searches assume quote outputs are monotone and concave in input;
// rather than re-deriving those properties at every call, they are probed
// once here over a fixed grid and rejected up front when violated.
package validator

import (
	"errors"
	"fmt"
	"math"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/observability"
)

var ErrRejected = errors.New("validator: strategy rejected")

// Representative reserve shapes, x:y. The middle entry matches the default
// starting reserves; the outer two stress deep and shallow price levels.
var reserveGrid = [][2]uint64{
	{10 * domain.Scale, 100_000 * domain.Scale},
	{100 * domain.Scale, 10_000 * domain.Scale},
	{1_000 * domain.Scale, 1_000 * domain.Scale},
}

// Input ladder as fractions of the in-side reserve.
var inputLadder = []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.4}

// QuoteFn is the probing shape of a strategy's quote entry point. Probes run
// against a fresh zeroed storage region.
type QuoteFn func(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) (uint64, error)

// Check names the grid law a probe violated.
type Check string

const (
	CheckFinite    Check = "finite"
	CheckMonotone  Check = "monotone"
	CheckConcave   Check = "concave"
	CheckQuoteCall Check = "quote-call"
	CheckParity    Check = "parity"
)

// Violation carries the exact probe that failed.
type Violation struct {
	Check    Check
	Side     domain.Side
	Input    uint64
	ReserveX uint64
	ReserveY uint64
	Detail   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("validator: %s check failed (side=%s input=%d rx=%d ry=%d): %s",
		v.Check, v.Side, v.Input, v.ReserveX, v.ReserveY, v.Detail)
}

func (v *Violation) Unwrap() error { return ErrRejected }

// Report is the outcome of one admission run.
type Report struct {
	Strategy  string
	Probes    int
	Violation *Violation
}

func (r Report) Passed() bool { return r.Violation == nil }

// Run probes quote over the full grid, both sides. The first violation stops
// the run and is returned in the report; a validated strategy sees every
// probe. Outputs must be finite in the sense of the fixed-point domain:
// strictly less than the out-side reserve.
func Run(name string, quote QuoteFn) Report {
	rep := Report{Strategy: name}
	defer func() {
		verdict := "pass"
		if rep.Violation != nil {
			verdict = "fail"
		}
		observability.RecordValidatorRun(verdict)
	}()

	for _, reserves := range reserveGrid {
		rx, ry := reserves[0], reserves[1]
		for _, side := range []domain.Side{domain.SideBuyX, domain.SideSellX} {
			reserveIn, reserveOut := ry, rx
			if side == domain.SideSellX {
				reserveIn, reserveOut = rx, ry
			}

			outputs := make([]float64, len(inputLadder))
			inputs := make([]float64, len(inputLadder))
			for j, frac := range inputLadder {
				var storage domain.Storage
				input := uint64(float64(reserveIn) * frac)
				out, err := quote(side, input, rx, ry, &storage)
				rep.Probes++
				if err != nil {
					rep.Violation = &Violation{
						Check: CheckQuoteCall, Side: side, Input: input,
						ReserveX: rx, ReserveY: ry, Detail: err.Error(),
					}
					return rep
				}
				if out >= reserveOut {
					rep.Violation = &Violation{
						Check: CheckFinite, Side: side, Input: input,
						ReserveX: rx, ReserveY: ry,
						Detail: fmt.Sprintf("output %d >= reserve %d", out, reserveOut),
					}
					return rep
				}
				inputs[j] = float64(input)
				outputs[j] = float64(out)
			}

			for j := 1; j < len(outputs); j++ {
				if outputs[j] < outputs[j-1] {
					rep.Violation = &Violation{
						Check: CheckMonotone, Side: side, Input: uint64(inputs[j]),
						ReserveX: rx, ReserveY: ry,
						Detail: fmt.Sprintf("output fell %0.f -> %0.f", outputs[j-1], outputs[j]),
					}
					return rep
				}
			}

			// Discrete second difference on the (uneven) ladder: marginal
			// rates between consecutive probes must not increase.
			for j := 2; j < len(outputs); j++ {
				m1 := (outputs[j-1] - outputs[j-2]) / (inputs[j-1] - inputs[j-2])
				m2 := (outputs[j] - outputs[j-1]) / (inputs[j] - inputs[j-1])
				if m2 > m1+concaveSlack {
					rep.Violation = &Violation{
						Check: CheckConcave, Side: side, Input: uint64(inputs[j]),
						ReserveX: rx, ReserveY: ry,
						Detail: fmt.Sprintf("marginal rate rose %.9f -> %.9f", m1, m2),
					}
					return rep
				}
			}
		}
	}
	return rep
}

// concaveSlack absorbs fixed-point truncation noise between adjacent rungs.
const concaveSlack = 1e-6

const (
	parityAbsTol = 1e-9 * domain.ScaleF
	parityRelTol = 1e-6
)

// Parity cross-checks two builds of the same strategy over the grid. Used
// when a strategy ships both a portable and an optimized artifact.
func Parity(name string, a, b QuoteFn) Report {
	rep := Report{Strategy: name}
	for _, reserves := range reserveGrid {
		rx, ry := reserves[0], reserves[1]
		for _, side := range []domain.Side{domain.SideBuyX, domain.SideSellX} {
			reserveIn := ry
			if side == domain.SideSellX {
				reserveIn = rx
			}
			for _, frac := range inputLadder {
				var sa, sb domain.Storage
				input := uint64(float64(reserveIn) * frac)
				oa, errA := a(side, input, rx, ry, &sa)
				ob, errB := b(side, input, rx, ry, &sb)
				rep.Probes++
				if errA != nil || errB != nil {
					rep.Violation = &Violation{
						Check: CheckParity, Side: side, Input: input,
						ReserveX: rx, ReserveY: ry,
						Detail: fmt.Sprintf("quote errors: %v / %v", errA, errB),
					}
					return rep
				}
				diff := math.Abs(float64(oa) - float64(ob))
				limit := parityAbsTol + parityRelTol*math.Max(float64(oa), float64(ob))
				if diff > limit {
					rep.Violation = &Violation{
						Check: CheckParity, Side: side, Input: input,
						ReserveX: rx, ReserveY: ry,
						Detail: fmt.Sprintf("outputs diverge: %d vs %d", oa, ob),
					}
					return rep
				}
			}
		}
	}
	return rep
}
