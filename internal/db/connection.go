// Package db provides database connection management for olist-warehouse.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/olist-warehouse/internal/logging"
)

// DefaultPoolConfig returns default connection pool configuration. The
// pipeline is single-threaded, so the pool stays small; it exists for
// lifecycle management, not parallelism.
func DefaultPoolConfig() *pgxpool.Config {
	config, _ := pgxpool.ParseConfig("")

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	return config
}

// Connect establishes a connection pool to the warehouse database.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Apply default pool settings
	defaults := DefaultPoolConfig()
	config.MaxConns = defaults.MaxConns
	config.MinConns = defaults.MinConns
	config.MaxConnLifetime = defaults.MaxConnLifetime
	config.MaxConnIdleTime = defaults.MaxConnIdleTime
	config.HealthCheckPeriod = defaults.HealthCheckPeriod

	logging.Debug().
		Str("host", config.ConnConfig.Host).
		Uint16("port", config.ConnConfig.Port).
		Str("database", config.ConnConfig.Database).
		Msg("Connecting to warehouse")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	logging.Info().
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Msg("Connected to warehouse")

	return pool, nil
}
