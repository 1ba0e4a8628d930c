//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the warehouse loader.
// Run with: go test -tags=integration ./internal/warehouse/...
// Requires PostgreSQL to be available.
// Set OLIST_TEST_CONN environment variable to override connection string.

package warehouse_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/olist-warehouse/internal/db"
	"github.com/pgEdge/olist-warehouse/internal/staging"
	"github.com/pgEdge/olist-warehouse/internal/testutil"
	"github.com/pgEdge/olist-warehouse/internal/warehouse"
)

func stageDerivedTables(t *testing.T, store *staging.Store) {
	t.Helper()
	derived := []struct {
		def  staging.TableDef
		rows [][]string
	}{
		{staging.FactSales, [][]string{
			{"O1", "1", "P1", "S1", "C1", "2017-11-08 02:44:11", "50.00", "13.29",
				"credit_card", "60.00", "4", "delivered", "2017-11-01"},
			// PX has no dim_product row: referential completeness is soft.
			{"O1", "2", "PX", "S1", "C1", "2017-11-08 02:44:11", "30.00", "13.29",
				"credit_card", "60.00", "4", "delivered", "2017-11-01"},
		}},
		{staging.DimProduct, [][]string{
			{"P1", "brinquedos", "toys", "40", "500", "2", "300", "20", "10", "15"},
		}},
		{staging.DimCustomer, [][]string{
			{"C1", "U1", "13023", "campinas", "SP"},
		}},
		{staging.DimSeller, [][]string{
			{"S1", "01409", "sao paulo", "SP"},
		}},
		{staging.DimDate, [][]string{
			{"2017-11-01", "2017", "11", "1", "Wednesday"},
		}},
		{staging.DimPayment, [][]string{
			{"O1", "1", "credit_card", "1", "50.00"},
			{"O1", "2", "voucher", "1", "10.00"},
		}},
		{staging.DimReview, [][]string{
			{"R1", "O1", "4", "", "", "2017-11-10 00:00:00", "2017-11-12 03:10:00"},
		}},
	}
	for _, d := range derived {
		if err := store.Write(d.def, d.rows); err != nil {
			t.Fatalf("Failed to stage %s: %v", d.def.Name, err)
		}
	}
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int64 {
	t.Helper()
	var n int64
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func TestLoaderIntegration(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr)
	dbName := testutil.GetDBNameFromConnStr(connStr)

	pool := testutil.ConnectTestDB(t, connStr)
	t.Cleanup(func() {
		pool.Close()
		testutil.DropTestDB(t, baseConnStr, dbName)
	})

	ctx := context.Background()

	// Schema creation is idempotent
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema returned error: %v", err)
	}
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("Second CreateSchema returned error: %v", err)
	}

	store := staging.NewStore(t.TempDir())
	stageDerivedTables(t, store)

	loader := warehouse.NewLoader(store, pool)
	if err := loader.Run(ctx, uuid.New()); err != nil {
		t.Fatalf("First load returned error: %v", err)
	}

	expected := map[string]int64{
		"fact_sales":   2,
		"dim_product":  1,
		"dim_customer": 1,
		"dim_seller":   1,
		"dim_date":     1,
		"dim_payment":  2,
		"dim_review":   1,
	}
	for table, want := range expected {
		if got := countRows(t, pool, table); got != want {
			t.Errorf("%s: expected %d rows after first load, got %d", table, want, got)
		}
	}

	// Re-running the load with unchanged data must not grow the
	// deduplicated dimensions; fact and payment rows append again.
	if err := loader.Run(ctx, uuid.New()); err != nil {
		t.Fatalf("Second load returned error: %v", err)
	}
	for _, table := range []string{"dim_product", "dim_customer", "dim_seller", "dim_date", "dim_review"} {
		if got := countRows(t, pool, table); got != 1 {
			t.Errorf("%s: expected 1 row after second load, got %d", table, got)
		}
	}
	if got := countRows(t, pool, "fact_sales"); got != 4 {
		t.Errorf("fact_sales: expected 4 rows after second load, got %d", got)
	}
	if got := countRows(t, pool, "dim_payment"); got != 4 {
		t.Errorf("dim_payment: expected 4 rows after second load, got %d", got)
	}

	// Both runs are recorded with the fact watermark
	runs, err := db.ListRuns(ctx, pool, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 recorded runs, got %d", len(runs))
	}
	for _, r := range runs {
		if r.FactRows != 2 {
			t.Errorf("Expected 2 fact rows recorded, got %d", r.FactRows)
		}
		if !r.Watermark.Valid || r.Watermark.Time.Format("2006-01-02") != "2017-11-01" {
			t.Errorf("Expected watermark 2017-11-01, got %v", r.Watermark)
		}
	}

	// A value violating a target column type aborts the whole load and
	// rolls back everything from this run.
	bad := [][]string{
		{"O2", "1", "P1", "S1", "C1", "2017-11-08 02:44:11", "not-a-price", "13.29",
			"credit_card", "60.00", "4", "delivered", "2017-11-01"},
	}
	if err := store.Write(staging.FactSales, bad); err != nil {
		t.Fatalf("Failed to stage bad fact table: %v", err)
	}
	if err := loader.Run(ctx, uuid.New()); err == nil {
		t.Fatal("Expected load of bad fact table to fail")
	}
	if got := countRows(t, pool, "fact_sales"); got != 4 {
		t.Errorf("fact_sales: expected rollback to keep 4 rows, got %d", got)
	}
	if got := countRows(t, pool, "etl_run"); got != 2 {
		t.Errorf("etl_run: expected failed run to be unrecorded, got %d rows", got)
	}
}

func TestLoaderMissingDerivedTable(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr)
	dbName := testutil.GetDBNameFromConnStr(connStr)

	pool := testutil.ConnectTestDB(t, connStr)
	t.Cleanup(func() {
		pool.Close()
		testutil.DropTestDB(t, baseConnStr, dbName)
	})

	ctx := context.Background()
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema returned error: %v", err)
	}

	// Empty staging area: the load must fail before touching any table.
	store := staging.NewStore(t.TempDir())
	if err := warehouse.NewLoader(store, pool).Run(ctx, uuid.New()); err == nil {
		t.Fatal("Expected load without derived tables to fail")
	}
	if got := countRows(t, pool, "etl_run"); got != 0 {
		t.Errorf("Expected no recorded runs, got %d", got)
	}
}

func TestDropSchema(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr)
	dbName := testutil.GetDBNameFromConnStr(connStr)

	pool := testutil.ConnectTestDB(t, connStr)
	t.Cleanup(func() {
		pool.Close()
		testutil.DropTestDB(t, baseConnStr, dbName)
	})

	ctx := context.Background()
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema returned error: %v", err)
	}
	if err := warehouse.DropSchema(ctx, pool); err != nil {
		t.Fatalf("DropSchema returned error: %v", err)
	}
	// Dropping twice is fine
	if err := warehouse.DropSchema(ctx, pool); err != nil {
		t.Fatalf("Second DropSchema returned error: %v", err)
	}
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema after drop returned error: %v", err)
	}
}
