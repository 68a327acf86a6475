package memory

import (
	"context"
	"errors"
	"testing"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/storage"
)

func point(runID, stratID string, epoch uint32, w float64) *domain.CapitalWeightPoint {
	return &domain.CapitalWeightPoint{RunID: runID, StrategyID: stratID, Epoch: epoch, MeanWeight: w}
}

func TestTrajectoryStoreInsertAndGet(t *testing.T) {
	s := NewTrajectoryStore()
	ctx := context.Background()

	err := s.InsertBulk(ctx, []*domain.CapitalWeightPoint{
		point("run-1", "b", 1, 0.4),
		point("run-1", "a", 0, 0.5),
		point("run-1", "b", 0, 0.5),
		point("run-1", "a", 1, 0.6),
	})
	if err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	got, err := s.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d points", len(got))
	}
	// Ordered by strategy then epoch.
	want := []struct {
		strat string
		epoch uint32
	}{{"a", 0}, {"a", 1}, {"b", 0}, {"b", 1}}
	for i, w := range want {
		if got[i].StrategyID != w.strat || got[i].Epoch != w.epoch {
			t.Errorf("position %d: got (%s, %d), want (%s, %d)",
				i, got[i].StrategyID, got[i].Epoch, w.strat, w.epoch)
		}
	}
}

func TestTrajectoryStoreDuplicateFailsWholeBatch(t *testing.T) {
	s := NewTrajectoryStore()
	ctx := context.Background()

	if err := s.InsertBulk(ctx, []*domain.CapitalWeightPoint{point("run-1", "a", 0, 0.5)}); err != nil {
		t.Fatal(err)
	}

	err := s.InsertBulk(ctx, []*domain.CapitalWeightPoint{
		point("run-1", "a", 1, 0.6),
		point("run-1", "a", 0, 0.7), // duplicate of the existing point
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}

	// Nothing from the failed batch landed.
	got, _ := s.GetByRunID(ctx, "run-1")
	if len(got) != 1 {
		t.Errorf("failed batch partially applied: %d points", len(got))
	}
}

func TestTrajectoryStoreIntraBatchDuplicate(t *testing.T) {
	s := NewTrajectoryStore()
	err := s.InsertBulk(context.Background(), []*domain.CapitalWeightPoint{
		point("run-1", "a", 0, 0.5),
		point("run-1", "a", 0, 0.5),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("got %v, want ErrDuplicateKey", err)
	}
}

func TestTrajectoryStoreInvalidAndEmpty(t *testing.T) {
	s := NewTrajectoryStore()
	ctx := context.Background()

	if err := s.InsertBulk(ctx, nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
	err := s.InsertBulk(ctx, []*domain.CapitalWeightPoint{point("", "a", 0, 0.5)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing run_id: got %v", err)
	}
}

func TestTrajectoryStoreUnknownRun(t *testing.T) {
	s := NewTrajectoryStore()
	got, err := s.GetByRunID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d points for unknown run", len(got))
	}
}
