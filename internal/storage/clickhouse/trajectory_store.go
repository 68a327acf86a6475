package clickhouse

import (
	"context"
	"fmt"

	"prop-amm-lab/internal/domain"
	"prop-amm-lab/internal/storage"
)

// TrajectoryStore implements storage.TrajectoryStore using ClickHouse.
// Capital-weight points are write-once time series; ClickHouse's columnar
// layout keeps whole-run trajectory scans cheap.
type TrajectoryStore struct {
	conn *Conn
}

// NewTrajectoryStore creates a new TrajectoryStore.
func NewTrajectoryStore(conn *Conn) *TrajectoryStore {
	return &TrajectoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TrajectoryStore = (*TrajectoryStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on any duplicate
// (run_id, strategy_id, epoch).
func (s *TrajectoryStore) InsertBulk(ctx context.Context, points []*domain.CapitalWeightPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.RunID == "" || p.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		key := fmt.Sprintf("%s|%s|%d", p.RunID, p.StrategyID, p.Epoch)
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.RunID, p.StrategyID, p.Epoch)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO capital_weight_points (run_id, strategy_id, epoch, mean_weight)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.RunID, p.StrategyID, p.Epoch, p.MeanWeight); err != nil {
			return fmt.Errorf("append point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunID retrieves all points for a run, ordered by strategy_id then
// epoch ASC.
func (s *TrajectoryStore) GetByRunID(ctx context.Context, runID string) ([]*domain.CapitalWeightPoint, error) {
	query := `
		SELECT run_id, strategy_id, epoch, mean_weight
		FROM capital_weight_points
		WHERE run_id = ?
		ORDER BY strategy_id ASC, epoch ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query capital weight points: %w", err)
	}
	defer rows.Close()

	var points []*domain.CapitalWeightPoint
	for rows.Next() {
		var p domain.CapitalWeightPoint
		if err := rows.Scan(&p.RunID, &p.StrategyID, &p.Epoch, &p.MeanWeight); err != nil {
			return nil, fmt.Errorf("scan capital weight point: %w", err)
		}
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capital weight points: %w", err)
	}
	return points, nil
}

func (s *TrajectoryStore) exists(ctx context.Context, runID, strategyID string, epoch uint32) (bool, error) {
	query := `
		SELECT count() FROM capital_weight_points
		WHERE run_id = ? AND strategy_id = ? AND epoch = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID, strategyID, epoch).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
