package strategy

import (
	"fmt"
	"path/filepath"
	"plugin"
	"strings"

	"prop-amm-lab/internal/domain"
)

// Exported symbol names looked up in a compiled strategy artifact.
//
// ComputeSwap is mandatory; a strategy without it is rejected at load time.
// AfterSwap receives both post-trade and epoch-boundary payloads and
// dispatches on the tag byte itself; it is optional, as is StrategyName.
const (
	SymbolComputeSwap = "ComputeSwap"
	SymbolAfterSwap   = "AfterSwap"
	SymbolName        = "StrategyName"
)

// PluginStrategy adapts a compiled Go plugin to the Strategy interface.
// All calls cross the artifact boundary as byte buffers only; the artifact's
// internal control flow is never trusted.
type PluginStrategy struct {
	name    string
	compute func(data []byte) uint64
	after   func(data []byte, storage []byte)
}

// LoadPlugin opens a compiled strategy artifact and binds its entry points.
func LoadPlugin(path string) (*PluginStrategy, error) {
	lib, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open strategy artifact %s: %w", path, err)
	}

	sym, err := lib.Lookup(SymbolComputeSwap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingQuote)
	}
	compute, ok := sym.(func([]byte) uint64)
	if !ok {
		return nil, fmt.Errorf("%s: %s has wrong signature: %w", path, SymbolComputeSwap, ErrMissingQuote)
	}

	s := &PluginStrategy{
		name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		compute: compute,
	}

	if sym, err := lib.Lookup(SymbolAfterSwap); err == nil {
		if after, ok := sym.(func([]byte, []byte)); ok {
			s.after = after
		}
	}
	if sym, err := lib.Lookup(SymbolName); err == nil {
		if nameFn, ok := sym.(func() string); ok {
			if n := nameFn(); n != "" {
				s.name = n
			}
		}
	}

	return s, nil
}

// Name returns the declared identity string, falling back to the artifact
// file stem.
func (s *PluginStrategy) Name() string { return s.name }

// Quote builds the quote wire payload and crosses the boundary. Panics in
// the artifact surface as errors, never as crashes.
func (s *PluginStrategy) Quote(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) (out uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = 0, fmt.Errorf("%w: %v", ErrQuotePanic, r)
		}
	}()
	return s.compute(EncodeQuote(side, input, reserveX, reserveY, storage)), nil
}

// AfterSwap delivers the post-trade payload. The artifact mutates the
// storage slice in place; the payload's embedded storage copy is its
// read-only view.
func (s *PluginStrategy) AfterSwap(p *AfterSwapPayload, storage *domain.Storage) (err error) {
	if s.after == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("after-swap hook panicked: %v", r)
		}
	}()
	s.after(p.Encode(storage), storage[:])
	return nil
}

// OnEpochBoundary delivers the epoch payload through the same exported
// hook; the artifact dispatches on the tag byte.
func (s *PluginStrategy) OnEpochBoundary(p *EpochBoundaryPayload, storage *domain.Storage) (err error) {
	if s.after == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("epoch hook panicked: %v", r)
		}
	}()
	s.after(p.Encode(storage), storage[:])
	return nil
}

var _ Strategy = (*PluginStrategy)(nil)
