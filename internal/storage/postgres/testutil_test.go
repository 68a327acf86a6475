package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// schema. Returns a cleanup function that must be called after tests
// complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the run_receipts table directly. The embedded
// migration runner lives a package above and would import-cycle here.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS run_receipts (
			run_id      TEXT PRIMARY KEY,
			created_at  BIGINT NOT NULL,
			simulations INTEGER NOT NULL,
			steps       INTEGER NOT NULL,
			epoch_len   INTEGER NOT NULL,
			seed_start  BIGINT NOT NULL,
			strategies  JSONB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_run_receipts_created_at
			ON run_receipts (created_at DESC);
	`)
	require.NoError(t, err, "failed to apply schema")
}
