//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/olist-warehouse/internal/logging"
	"github.com/pgEdge/olist-warehouse/internal/staging"
)

// batchSize bounds how many dimension rows are queued per pgx batch.
const batchSize = 1000

// Loader writes the seven derived tables into the warehouse. One Run is one
// transaction: either every table loads or none do.
type Loader struct {
	store *staging.Store
	pool  *pgxpool.Pool
}

// NewLoader returns a Loader reading from store and writing through pool.
func NewLoader(store *staging.Store, pool *pgxpool.Pool) *Loader {
	return &Loader{store: store, pool: pool}
}

// Run loads all derived tables inside a single transaction, dimensions
// first, and records the run in etl_run. Natural-key dimensions skip rows
// that already exist; fact_sales and dim_payment always append.
func (l *Loader) Run(ctx context.Context, runID uuid.UUID) error {
	start := time.Now()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lastWatermark, err := l.lastWatermark(ctx, tx)
	if err != nil {
		return err
	}

	var factRows int64
	var watermark pgtype.Date
	for _, spec := range loadOrder {
		inserted, read, maxDate, err := l.loadTable(ctx, tx, spec)
		if err != nil {
			return err
		}
		if spec.def.Name == staging.FactSales.Name {
			factRows = read
			watermark = maxDate
		}
		logging.Info().
			Str("table", spec.def.Name).
			Int64("rows", read).
			Int64("inserted", inserted).
			Msg("Loaded table")
	}

	if lastWatermark.Valid && watermark.Valid && !watermark.Time.After(lastWatermark.Time) {
		logging.Warn().
			Time("watermark", watermark.Time).
			Time("last_watermark", lastWatermark.Time).
			Msg("Extract is not newer than the last completed load; fact and payment rows are appended again")
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO etl_run (run_id, started_at, completed_at, watermark, fact_rows)
        VALUES ($1, $2, $3, $4, $5)
    `, runID, start.UTC(), time.Now().UTC(), watermark, factRows)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit load transaction: %w", err)
	}

	logging.Info().
		Str("run_id", runID.String()).
		Int64("fact_rows", factRows).
		Dur("elapsed", time.Since(start)).
		Msg("Load complete")

	return nil
}

// loadTable loads one derived table. Returns inserted and read row counts
// plus the maximum date value seen in a date_id column, for watermarking.
func (l *Loader) loadTable(ctx context.Context, tx pgx.Tx, spec tableSpec) (int64, int64, pgtype.Date, error) {
	var maxDate pgtype.Date

	rows, err := l.store.Read(spec.def)
	if err != nil {
		return 0, 0, maxDate, err
	}

	dateCol := -1
	for i, name := range spec.def.Columns {
		if name == "date_id" {
			dateCol = i
			break
		}
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		converted, err := convertRow(spec, row)
		if err != nil {
			return 0, 0, maxDate, err
		}
		values[i] = converted

		if dateCol >= 0 {
			if d, ok := converted[dateCol].(pgtype.Date); ok && d.Valid {
				if !maxDate.Valid || d.Time.After(maxDate.Time) {
					maxDate = d
				}
			}
		}
	}

	var inserted int64
	if spec.conflictKey == "" {
		inserted, err = tx.CopyFrom(ctx,
			pgx.Identifier{spec.def.Name}, spec.def.Columns, pgx.CopyFromRows(values))
		if err != nil {
			return 0, 0, maxDate, fmt.Errorf("failed to copy into %s: %w", spec.def.Name, err)
		}
	} else {
		inserted, err = insertSkipConflicts(ctx, tx, spec, values)
		if err != nil {
			return 0, 0, maxDate, err
		}
	}

	return inserted, int64(len(rows)), maxDate, nil
}

// insertSkipConflicts inserts dimension rows in batches, silently skipping
// rows whose natural key already exists.
func insertSkipConflicts(ctx context.Context, tx pgx.Tx, spec tableSpec, values [][]any) (int64, error) {
	placeholders := make([]string, len(spec.def.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		spec.def.Name,
		strings.Join(spec.def.Columns, ", "),
		strings.Join(placeholders, ", "),
		spec.conflictKey)

	var inserted int64
	for off := 0; off < len(values); off += batchSize {
		end := min(off+batchSize, len(values))

		batch := &pgx.Batch{}
		for _, row := range values[off:end] {
			batch.Queue(sql, row...)
		}

		results := tx.SendBatch(ctx, batch)
		for range values[off:end] {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return 0, fmt.Errorf("failed to insert into %s: %w", spec.def.Name, err)
			}
			inserted += tag.RowsAffected()
		}
		if err := results.Close(); err != nil {
			return 0, fmt.Errorf("failed to close batch for %s: %w", spec.def.Name, err)
		}
	}
	return inserted, nil
}

// convertRow coerces a staged row into target column types. Empty fields are
// NULL. A field that cannot be coerced aborts the whole load.
func convertRow(spec tableSpec, row []string) ([]any, error) {
	out := make([]any, len(row))
	for i, s := range row {
		v, err := convertField(spec.kinds[i], s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v",
				staging.ErrSchemaViolation, spec.def.Name, spec.def.Columns[i], err)
		}
		out[i] = v
	}
	return out, nil
}

func convertField(kind colKind, s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch kind {
	case colText:
		return s, nil
	case colBigint, colInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", s)
		}
		return n, nil
	case colReal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", s)
		}
		return f, nil
	case colNumeric:
		var n pgtype.Numeric
		if err := n.Scan(s); err != nil {
			return nil, fmt.Errorf("not numeric: %q", s)
		}
		return n, nil
	case colDate:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("not a date: %q", s)
		}
		return pgtype.Date{Time: t, Valid: true}, nil
	case colTimestamp:
		t, err := time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return nil, fmt.Errorf("not a timestamp: %q", s)
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown column kind %d", kind)
}

// lastWatermark reads the most recent recorded watermark, if any.
func (l *Loader) lastWatermark(ctx context.Context, tx pgx.Tx) (pgtype.Date, error) {
	var wm pgtype.Date
	err := tx.QueryRow(ctx, `
        SELECT watermark FROM etl_run
        WHERE watermark IS NOT NULL
        ORDER BY completed_at DESC
        LIMIT 1
    `).Scan(&wm)
	if err == pgx.ErrNoRows {
		return pgtype.Date{}, nil
	}
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("failed to read last watermark: %w", err)
	}
	return wm, nil
}
