//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultTestConnString is the default connection string for tests.
	// Override with OLIST_TEST_CONN environment variable.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "olist_test_"
)

// PostgresAvailable checks if PostgreSQL is available for testing.
// Returns the connection string if available, empty string otherwise.
func PostgresAvailable() string {
	connStr := os.Getenv("OLIST_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return ""
	}

	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// CreateTestDB creates a test database and returns the connection string.
func CreateTestDB(t *testing.T, baseConnStr string) string {
	t.Helper()

	// Generate random suffix for database name
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	dbName := TestDBPrefix + hex.EncodeToString(randomBytes)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to default database to create test database
	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Drop if exists and create fresh
	_, err = pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	if err != nil {
		t.Fatalf("Failed to drop existing test database: %v", err)
	}

	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Build the connection string manually since ConnString() doesn't reflect
	// changes made to ConnConfig.Database
	config, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	host := config.ConnConfig.Host
	port := config.ConnConfig.Port
	user := config.ConnConfig.User
	password := config.ConnConfig.Password

	var testConnStr string
	if password != "" {
		testConnStr = fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			user, password, host, port, dbName)
	} else {
		testConnStr = fmt.Sprintf("postgres://%s@%s:%d/%s",
			user, host, port, dbName)
	}

	return testConnStr
}

// DropTestDB drops the test database.
func DropTestDB(t *testing.T, baseConnStr, dbName string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer pool.Close()

	// Terminate connections to the database
	_, _ = pool.Exec(ctx, fmt.Sprintf(`
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = '%s' AND pid <> pg_backend_pid()
    `, dbName))

	_, err = pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	if err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

// GetDBNameFromConnStr extracts the database name from a connection string.
func GetDBNameFromConnStr(connStr string) string {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return ""
	}
	return config.ConnConfig.Database
}

// ConnectTestDB connects to a test database.
func ConnectTestDB(t *testing.T, connStr string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return pool
}
