package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/storage"
)

// ReceiptStore implements storage.ReceiptStore using PostgreSQL. Per-strategy
// aggregates are stored as a JSONB document; the run metadata columns carry
// the queryable fields.
type ReceiptStore struct {
	pool *Pool
}

// NewReceiptStore creates a new ReceiptStore.
func NewReceiptStore(pool *Pool) *ReceiptStore {
	return &ReceiptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReceiptStore = (*ReceiptStore)(nil)

// Insert adds a new receipt. Returns ErrDuplicateKey if run_id exists.
func (s *ReceiptStore) Insert(ctx context.Context, r *domain.RunReceipt) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	strategies, err := json.Marshal(r.Strategies)
	if err != nil {
		return fmt.Errorf("marshal strategies: %w", err)
	}

	query := `
		INSERT INTO run_receipts (
			run_id, created_at, simulations, steps, epoch_len, seed_start, strategies
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err = s.pool.Exec(ctx, query,
		r.RunID, r.CreatedAt, r.Simulations, r.Steps, r.EpochLen, int64(r.SeedStart), strategies,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a receipt by run ID. Returns ErrNotFound if not exists.
func (s *ReceiptStore) GetByID(ctx context.Context, runID string) (*domain.RunReceipt, error) {
	query := `
		SELECT run_id, created_at, simulations, steps, epoch_len, seed_start, strategies
		FROM run_receipts
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanReceipt(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run receipt: %w", err)
	}
	return r, nil
}

// List retrieves the most recent receipts, newest first, up to limit.
func (s *ReceiptStore) List(ctx context.Context, limit int) ([]*domain.RunReceipt, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT run_id, created_at, simulations, steps, epoch_len, seed_start, strategies
		FROM run_receipts
		ORDER BY created_at DESC, run_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list run receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*domain.RunReceipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run receipts: %w", err)
	}
	return receipts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*domain.RunReceipt, error) {
	var r domain.RunReceipt
	var seedStart int64
	var strategies []byte

	if err := row.Scan(
		&r.RunID, &r.CreatedAt, &r.Simulations, &r.Steps, &r.EpochLen, &seedStart, &strategies,
	); err != nil {
		return nil, err
	}

	r.SeedStart = uint64(seedStart)
	if err := json.Unmarshal(strategies, &r.Strategies); err != nil {
		return nil, fmt.Errorf("unmarshal strategies: %w", err)
	}
	return &r, nil
}
