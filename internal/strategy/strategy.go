// Package strategy defines the execution boundary between the engine and
// third-party pricing logic: the three capability points every strategy
// exposes, the byte-exact wire payloads they are invoked with, the loader
// for compiled strategy artifacts, and the fault guard that keeps a
// misbehaving strategy from corrupting a simulation.
package strategy

import (
	"errors"

	"prop-amm-lab/internal/domain"
)

// Boundary errors.
var (
	ErrMissingQuote   = errors.New("strategy artifact does not export a quote capability")
	ErrQuotePanic     = errors.New("quote call panicked")
	ErrOutputTooLarge = errors.New("quote output would drain the pool")
)

// Strategy is a loaded, callable pricing unit. Exactly three capability
// points exist; nothing else of the artifact is trusted or interpreted.
//
// Quote must be pure: no storage mutation, safely re-callable many times per
// step. It is invoked both for authoritative trades and for read-only
// probing by the arbitrage engine and the router.
//
// AfterSwap runs after every authoritative trade (arbitrage or retail) and
// OnEpochBoundary once per epoch; both receive read-write access to the
// pool's persistent storage and may rewrite it freely. The engine never
// writes storage.
type Strategy interface {
	// Name returns the strategy's declared identity string.
	Name() string

	// Quote prices a swap of input against the given reserves. The storage
	// view is read-only by contract.
	Quote(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) (uint64, error)

	// AfterSwap is the post-trade hook.
	AfterSwap(p *AfterSwapPayload, storage *domain.Storage) error

	// OnEpochBoundary is the epoch-boundary hook.
	OnEpochBoundary(p *EpochBoundaryPayload, storage *domain.Storage) error
}
