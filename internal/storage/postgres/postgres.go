// Package postgres backs the receipt store with a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unique_violation, the error code the append-only insert contract maps to
// ErrDuplicateKey.
const pgErrUniqueViolation = "23505"

// Pool is our handle on a pgxpool.Pool; stores take it rather than a raw
// DSN so tests can hand them a containerized database.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to dsn and verifies the database answers before
// returning.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases the pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
