package memory

import (
	"context"
	"sort"
	"sync"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/storage"
)

// ReceiptStore is an in-memory implementation of storage.ReceiptStore.
type ReceiptStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunReceipt // keyed by run_id
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{
		data: make(map[string]*domain.RunReceipt),
	}
}

// Compile-time interface check.
var _ storage.ReceiptStore = (*ReceiptStore)(nil)

// Insert adds a new receipt. Returns ErrDuplicateKey if run_id exists.
func (s *ReceiptStore) Insert(_ context.Context, r *domain.RunReceipt) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *r
	cp.Strategies = append([]domain.StrategyAggregate(nil), r.Strategies...)
	s.data[r.RunID] = &cp
	return nil
}

// GetByID retrieves a receipt by run ID. Returns ErrNotFound if not exists.
func (s *ReceiptStore) GetByID(_ context.Context, runID string) (*domain.RunReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *r
	cp.Strategies = append([]domain.StrategyAggregate(nil), r.Strategies...)
	return &cp, nil
}

// List retrieves the most recent receipts, newest first, up to limit.
func (s *ReceiptStore) List(_ context.Context, limit int) ([]*domain.RunReceipt, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	receipts := make([]*domain.RunReceipt, 0, len(s.data))
	for _, r := range s.data {
		cp := *r
		cp.Strategies = append([]domain.StrategyAggregate(nil), r.Strategies...)
		receipts = append(receipts, &cp)
	}

	sort.Slice(receipts, func(i, j int) bool {
		if receipts[i].CreatedAt != receipts[j].CreatedAt {
			return receipts[i].CreatedAt > receipts[j].CreatedAt
		}
		return receipts[i].RunID < receipts[j].RunID
	})

	if len(receipts) > limit {
		receipts = receipts[:limit]
	}
	return receipts, nil
}
