// Package repository stores accounts in PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the pgx pool. Zero fields fall back to pool defaults.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// Repository is the PostgreSQL account store.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and verifies the connection before returning.
func New(ctx context.Context, databaseURL string, opts PoolOptions) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolCfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	repo := &Repository{pool: pool}
	if err := repo.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// Ping reports whether PostgreSQL answers. /readyz calls it.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool exposes the pool to integration tests for locking and cleanup.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
