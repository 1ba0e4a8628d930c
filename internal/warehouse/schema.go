//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse creates the target star schema and loads the derived
// tables into it.
package warehouse

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/olist-warehouse/internal/logging"
)

//go:embed schema.sql
var createSchemaSQL string

const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_sales;
DROP TABLE IF EXISTS dim_product;
DROP TABLE IF EXISTS dim_customer;
DROP TABLE IF EXISTS dim_seller;
DROP TABLE IF EXISTS dim_date;
DROP TABLE IF EXISTS dim_payment;
DROP TABLE IF EXISTS dim_review;
DROP TABLE IF EXISTS etl_run;
`

// CreateSchema ensures the warehouse tables exist. Safe to call on every run.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	logging.Info().Msg("Warehouse schema ready")
	return nil
}

// DropSchema drops the warehouse tables.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop warehouse schema: %w", err)
	}
	logging.Info().Msg("Warehouse schema dropped")
	return nil
}
