//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for olist-warehouse.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for olist-warehouse.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// Source is the directory holding the raw Olist dataset CSV files.
	Source string `mapstructure:"source"`

	// Staging is the directory used for extracted and derived tables.
	Staging string `mapstructure:"staging"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Schema holds configuration for the init-schema subcommand.
	Schema SchemaConfig `mapstructure:"schema"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// SchemaConfig holds configuration for warehouse schema initialization.
type SchemaConfig struct {
	// DropExisting drops the warehouse tables before creating them.
	DropExisting bool `mapstructure:"drop_existing"`
}

// SeedConfig holds configuration for synthetic source data generation.
type SeedConfig struct {
	// Orders is the number of orders to generate.
	Orders int `mapstructure:"orders"`

	// Customers is the number of customers to generate.
	Customers int `mapstructure:"customers"`

	// Products is the number of products to generate.
	Products int `mapstructure:"products"`

	// Sellers is the number of sellers to generate.
	Sellers int `mapstructure:"sellers"`

	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Source:   "./data",
		Staging:  "./staging",
		LogLevel: "info",
		Schema: SchemaConfig{
			DropExisting: false,
		},
		Seed: SeedConfig{
			Orders:    1000,
			Customers: 800,
			Products:  200,
			Sellers:   50,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./olist-warehouse.yaml
// 3. ~/.config/olist-warehouse/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("olist-warehouse")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "olist-warehouse"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration shared by all pipeline stages.
func (c *Config) Validate() error {
	if c.Staging == "" {
		return fmt.Errorf("staging directory is required")
	}
	return nil
}

// ValidateExtract checks configuration required for the extract stage.
func (c *Config) ValidateExtract() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Source == "" {
		return fmt.Errorf("source directory is required")
	}
	return nil
}

// ValidateWarehouse checks configuration required for init-schema and load.
func (c *Config) ValidateWarehouse() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if c.Source == "" {
		return fmt.Errorf("source directory is required")
	}
	if c.Seed.Orders < 1 {
		return fmt.Errorf("seed orders must be at least 1")
	}
	if c.Seed.Customers < 1 {
		return fmt.Errorf("seed customers must be at least 1")
	}
	if c.Seed.Products < 1 {
		return fmt.Errorf("seed products must be at least 1")
	}
	if c.Seed.Sellers < 1 {
		return fmt.Errorf("seed sellers must be at least 1")
	}
	return nil
}
