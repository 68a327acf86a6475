package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/storage"
)

// TrajectoryStore is an in-memory implementation of storage.TrajectoryStore.
type TrajectoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.CapitalWeightPoint // keyed by run_id
	keys map[string]struct{}                     // run_id|strategy_id|epoch
}

// NewTrajectoryStore creates a new in-memory trajectory store.
func NewTrajectoryStore() *TrajectoryStore {
	return &TrajectoryStore{
		data: make(map[string][]*domain.CapitalWeightPoint),
		keys: make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.TrajectoryStore = (*TrajectoryStore)(nil)

func pointKey(p *domain.CapitalWeightPoint) string {
	return fmt.Sprintf("%s|%s|%d", p.RunID, p.StrategyID, p.Epoch)
}

// InsertBulk adds multiple points atomically. Fails entire batch on any
// duplicate (run_id, strategy_id, epoch).
func (s *TrajectoryStore) InsertBulk(_ context.Context, points []*domain.CapitalWeightPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.RunID == "" || p.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		key := pointKey(p)
		if _, exists := s.keys[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		cp := *p
		s.data[p.RunID] = append(s.data[p.RunID], &cp)
		s.keys[pointKey(p)] = struct{}{}
	}
	return nil
}

// GetByRunID retrieves all points for a run, ordered by strategy_id then
// epoch ASC.
func (s *TrajectoryStore) GetByRunID(_ context.Context, runID string) ([]*domain.CapitalWeightPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := make([]*domain.CapitalWeightPoint, 0, len(s.data[runID]))
	for _, p := range s.data[runID] {
		cp := *p
		points = append(points, &cp)
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].StrategyID != points[j].StrategyID {
			return points[i].StrategyID < points[j].StrategyID
		}
		return points[i].Epoch < points[j].Epoch
	})
	return points, nil
}
