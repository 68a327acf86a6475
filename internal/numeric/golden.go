// Package numeric provides the derivative-free search kernels used by the
// arbitrage engine and the router. Every search runs a fixed iteration
// budget, so per-step cost is bounded regardless of the pricing function.
package numeric

// Golden ratio residual: 2 − φ.
const resphi = 2.0 - 1.618033988749895

// GoldenSectionMax finds the maximum of a unimodal f on [lo, hi] using
// golden-section search with at most iters interval reductions, with an
// early exit once the interval shrinks below 1e-8 relative width. Returns
// (argmax, max). Exhausting the budget is not an error: the best estimate
// found is the answer, with error bounded by the final interval width.
func GoldenSectionMax(f func(float64) float64, lo, hi float64, iters int) (float64, float64) {
	a, b := lo, hi
	c := b - resphi*(b-a)
	d := a + resphi*(b-a)
	fc := f(c)
	fd := f(d)

	for i := 0; i < iters; i++ {
		if fc < fd {
			a = c
			c = d
			fc = fd
			d = a + resphi*(b-a)
			fd = f(d)
		} else {
			b = d
			d = c
			fd = fc
			c = b - resphi*(b-a)
			fc = f(c)
		}
		if (b-a)/(b+a+1e-14) < 1e-8 {
			break
		}
	}

	x := 0.5 * (a + b)
	return x, f(x)
}
