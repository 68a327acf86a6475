// Package market generates the stochastic environment of one simulation:
// the geometric-Brownian-motion reference price, the sampled market
// parameters, and the retail order flow.
package market

import (
	"encoding/binary"
	"math/rand/v2"
)

// NewRand returns a deterministic generator for the given simulation seed.
// Two generators built from the same seed produce identical draws, which is
// what makes whole runs reproducible bit-for-bit.
func NewRand(seed uint64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return rand.New(rand.NewChaCha8(key))
}
