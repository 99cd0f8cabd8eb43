package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// PoolOptions tunes the connection pool. Zero values keep pgxpool defaults.
type PoolOptions struct {
	MaxConns          int32
	ConnectTimeout    time.Duration
	HealthCheckPeriod time.Duration
	// Lazy skips the initial ping. The pool connects on first use.
	Lazy bool
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	return NewConnectionWithOptions(ctx, databaseURL, PoolOptions{})
}

// NewConnectionWithOptions creates a connection pool and verifies it with a ping.
// Connection failures are classified so callers can fall back to the local store.
func NewConnectionWithOptions(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Timestamps are compared across stores, keep every session in UTC
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}
	if opts.HealthCheckPeriod > 0 {
		config.HealthCheckPeriod = opts.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", ClassifyError(err))
	}

	if opts.Lazy {
		return &DB{Pool: pool}, nil
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", ClassifyError(err))
	}

	return &DB{Pool: pool}, nil
}

// Healthy reports whether the pool can reach the server right now
func (db *DB) Healthy(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return ClassifyError(err)
	}
	return nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
