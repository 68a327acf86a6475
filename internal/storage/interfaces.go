package storage

import (
	"context"

	"prop-amm-lab/internal/domain"
)

// ReceiptStore provides access to run_receipts storage. Receipts are the
// durable handoff to the external job layer.
type ReceiptStore interface {
	// Insert adds a new receipt. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunReceipt) error

	// GetByID retrieves a receipt by run ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunReceipt, error)

	// List retrieves the most recent receipts, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*domain.RunReceipt, error)
}

// TrajectoryStore provides access to capital_weight_points storage, the
// per-epoch mean capital-weight trajectory of each strategy in a run.
type TrajectoryStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (run_id, strategy_id, epoch).
	InsertBulk(ctx context.Context, points []*domain.CapitalWeightPoint) error

	// GetByRunID retrieves all points for a run, ordered by strategy_id
	// then epoch ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.CapitalWeightPoint, error)
}
