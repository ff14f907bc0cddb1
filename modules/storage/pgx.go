package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolExecer runs statements on a pgx connection pool.
type PoolExecer struct {
	pool *pgxpool.Pool
}

// NewPoolExecer wraps pool.
func NewPoolExecer(pool *pgxpool.Pool) *PoolExecer {
	return &PoolExecer{pool: pool}
}

func (e *PoolExecer) Exec(ctx context.Context, statement string) error {
	_, err := e.pool.Exec(ctx, statement)
	return err
}

// OpenPostgres creates a pool for url and verifies it with a ping.
func OpenPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
