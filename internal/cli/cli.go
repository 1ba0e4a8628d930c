//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for olist-warehouse.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/olist-warehouse/internal/config"
	"github.com/pgEdge/olist-warehouse/internal/logging"
	"github.com/pgEdge/olist-warehouse/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	source     string
	stagingDir string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "olist-warehouse",
		Short: "Star-schema warehouse ETL for the Olist e-commerce dataset",
		Long: `olist-warehouse ingests the raw Olist transactional extracts (orders,
items, payments, reviews, products, customers, sellers) and produces a
star-schema warehouse in PostgreSQL: one order-line fact table surrounded
by six dimension tables.

The pipeline is three sequential stages handing off through a file-based
staging area: extract (copy source datasets into staging), transform
(derive the fact and dimension tables) and load (conflict-safe bulk
inserts in one transaction). An external orchestrator invokes the stages
in order and halts on any failure; 'run' executes all of them locally.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./olist-warehouse.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string for the warehouse")
	rootCmd.PersistentFlags().StringVar(&source, "source", "",
		"directory holding the raw Olist dataset CSV files")
	rootCmd.PersistentFlags().StringVar(&stagingDir, "staging", "",
		"staging directory for extracted and derived tables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initSchemaCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if source != "" {
		cfg.Source = source
	}
	if stagingDir != "" {
		cfg.Staging = stagingDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
