//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline exposes the four pipeline operations consumed by an
// external orchestrator: InitializeSchema, Extract, Transform and Load.
// Each operation either completes fully or returns a fatal error; stages
// hand data to each other only through the staging area.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/olist-warehouse/internal/config"
	"github.com/pgEdge/olist-warehouse/internal/db"
	"github.com/pgEdge/olist-warehouse/internal/extract"
	"github.com/pgEdge/olist-warehouse/internal/logging"
	"github.com/pgEdge/olist-warehouse/internal/staging"
	"github.com/pgEdge/olist-warehouse/internal/transform"
	"github.com/pgEdge/olist-warehouse/internal/warehouse"
)

// Pipeline wires the stages over a shared configuration and a per-process
// run identifier. Stages are strictly sequential; nothing here is safe for
// concurrent runs against the same staging area.
type Pipeline struct {
	cfg   *config.Config
	store *staging.Store
	runID uuid.UUID
}

// New returns a Pipeline with a fresh run identifier.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		store: staging.NewStore(cfg.Staging),
		runID: uuid.New(),
	}
}

// RunID returns the identifier recorded for this pipeline run.
func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

// InitializeSchema idempotently ensures the warehouse tables exist. With
// drop-existing configured, the tables are dropped first.
func (p *Pipeline) InitializeSchema(ctx context.Context) error {
	pool, err := db.Connect(ctx, p.cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()

	if p.cfg.Schema.DropExisting {
		logging.Warn().Msg("Dropping existing warehouse schema")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return err
		}
	}
	return warehouse.CreateSchema(ctx, pool)
}

// Extract stages the raw source datasets.
func (p *Pipeline) Extract(ctx context.Context) error {
	return extract.New(p.cfg.Source, p.store).Run()
}

// Transform derives the fact and dimension tables from the staged sources.
func (p *Pipeline) Transform(ctx context.Context) error {
	return transform.New(p.store).Run(p.runID.String())
}

// Load writes the derived tables into the warehouse in one transaction. The
// connection is opened for this stage only and closed regardless of outcome.
func (p *Pipeline) Load(ctx context.Context) error {
	pool, err := db.Connect(ctx, p.cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()

	return warehouse.NewLoader(p.store, pool).Run(ctx, p.runID)
}

// Run executes all four operations in order, halting on the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	logging.Info().
		Str("run_id", p.runID.String()).
		Str("source", p.cfg.Source).
		Str("staging", p.cfg.Staging).
		Msg("Starting pipeline run")

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"init-schema", p.InitializeSchema},
		{"extract", p.Extract},
		{"transform", p.Transform},
		{"load", p.Load},
	}
	for _, stage := range stages {
		if err := stage.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", stage.name, err)
		}
	}

	logging.Info().
		Str("run_id", p.runID.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")

	return nil
}
