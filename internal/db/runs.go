//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run is one recorded pipeline load.
type Run struct {
	RunID       uuid.UUID
	StartedAt   time.Time
	CompletedAt time.Time
	Watermark   pgtype.Date
	FactRows    int64
}

// ListRuns returns the most recent recorded loads, newest first.
func ListRuns(ctx context.Context, pool *pgxpool.Pool, limit int) ([]Run, error) {
	rows, err := pool.Query(ctx, `
        SELECT run_id, started_at, completed_at, watermark, fact_rows
        FROM etl_run
        ORDER BY completed_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.CompletedAt, &r.Watermark, &r.FactRows); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
