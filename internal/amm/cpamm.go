package amm

import (
	"math/bits"

	"prop-amm-lab/internal/domain"
)

// CPAMMOutput is the standard constant-product output with a basis-point
// fee taken from the input side:
//
//	input_eff = input · (10000 − feeBps) / 10000
//	output    = reserveOut · input_eff / (reserveIn + input_eff)
//
// The intermediate product runs through 128-bit space, since reserveOut and
// input_eff can each exceed 2^32 at the 1e9 fixed-point scale.
func CPAMMOutput(input, reserveIn, reserveOut uint64, feeBps uint32) uint64 {
	inputEff := mulDiv(input, uint64(10_000-feeBps), 10_000)

	denom := reserveIn + inputEff
	if denom < reserveIn || denom == 0 { // overflow or empty pool
		return 0
	}
	// output < reserveOut, so the 128-bit quotient always fits a uint64.
	return mulDiv(reserveOut, inputEff, denom)
}

// QuoteCPAMM orients CPAMMOutput by trade side given (reserveX, reserveY).
func QuoteCPAMM(side domain.Side, input, reserveX, reserveY uint64, feeBps uint32) uint64 {
	if side == domain.SideBuyX {
		// Y in, X out.
		return CPAMMOutput(input, reserveY, reserveX, feeBps)
	}
	return CPAMMOutput(input, reserveX, reserveY, feeBps)
}

// mulDiv computes a·b/d with a 128-bit intermediate.
func mulDiv(a, b, d uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		// Quotient would overflow uint64; saturate.
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}
