package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pgEdge/olist-warehouse/internal/pipeline"
)

var initSchemaDropExisting bool

var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Ensure the warehouse tables exist",
	Long: `Idempotently create the warehouse star schema (fact_sales plus the six
dimension tables and the etl_run bookkeeping table). Safe to run before
every pipeline run.

Example:
  olist-warehouse init-schema --connection "postgres://..."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initSchemaDropExisting {
			cfg.Schema.DropExisting = true
		}
		if err := cfg.ValidateWarehouse(); err != nil {
			return err
		}
		return pipeline.New(cfg).InitializeSchema(context.Background())
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Stage the raw source datasets",
	Long: `Copy the nine Olist dataset files from the source directory into the
staging area under canonical table names. No parsing or validation
happens here; a missing source file fails the stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateExtract(); err != nil {
			return err
		}
		return pipeline.New(cfg).Extract(context.Background())
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Derive the fact and dimension tables",
	Long: `Read the staged source tables and derive the seven warehouse tables:
fact_sales anchored on order items, plus the product, customer, seller,
date, payment and review dimensions. The derived tables are published
into the staging area atomically: all seven or none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		return pipeline.New(cfg).Transform(context.Background())
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the derived tables into the warehouse",
	Long: `Load the seven derived tables into PostgreSQL inside one transaction,
dimensions before the fact table. Natural-key dimensions skip rows that
already exist, so re-loading unchanged data never duplicates them;
fact_sales and dim_payment always append.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateWarehouse(); err != nil {
			return err
		}
		return pipeline.New(cfg).Load(context.Background())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline: init-schema, extract, transform, load",
	Long: `Execute all four pipeline operations in order, halting on the first
failure.

Example:
  olist-warehouse run --source ./data --staging ./staging --connection "postgres://..."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateExtract(); err != nil {
			return err
		}
		if err := cfg.ValidateWarehouse(); err != nil {
			return err
		}
		return pipeline.New(cfg).Run(context.Background())
	},
}

func init() {
	initSchemaCmd.Flags().BoolVar(&initSchemaDropExisting, "drop-existing", false,
		"drop the warehouse tables before creating them")
}
