//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract stages the raw Olist dataset files. It is a mechanical
// byte copy from the source directory into the staging area under canonical
// table names; no parsing happens here.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pgEdge/olist-warehouse/internal/logging"
	"github.com/pgEdge/olist-warehouse/internal/staging"
)

// sourceFiles maps canonical staged table names to the Olist dataset file
// names as distributed.
var sourceFiles = map[string]string{
	staging.Customers.Name:           "olist_customers_dataset.csv",
	staging.Geolocation.Name:         "olist_geolocation_dataset.csv",
	staging.OrderItems.Name:          "olist_order_items_dataset.csv",
	staging.OrderPayments.Name:       "olist_order_payments_dataset.csv",
	staging.OrderReviews.Name:        "olist_order_reviews_dataset.csv",
	staging.Orders.Name:              "olist_orders_dataset.csv",
	staging.Products.Name:            "olist_products_dataset.csv",
	staging.Sellers.Name:             "olist_sellers_dataset.csv",
	staging.CategoryTranslation.Name: "product_category_name_translation.csv",
}

// SourceFile returns the dataset file name for a staged table.
func SourceFile(def staging.TableDef) string {
	return sourceFiles[def.Name]
}

// Extractor copies the source datasets into the staging area.
type Extractor struct {
	source string
	store  *staging.Store
}

// New returns an Extractor reading from the source directory.
func New(source string, store *staging.Store) *Extractor {
	return &Extractor{source: source, store: store}
}

// Run stages every source dataset. A missing or unreadable source file is
// fatal for the whole stage.
func (e *Extractor) Run() error {
	start := time.Now()

	if err := os.MkdirAll(e.store.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	var bytes int64
	for _, def := range staging.SourceTables {
		n, err := e.copyFile(filepath.Join(e.source, sourceFiles[def.Name]), e.store.Path(def))
		if err != nil {
			return err
		}
		bytes += n
	}

	logging.Info().
		Int("tables", len(staging.SourceTables)).
		Int64("bytes", bytes).
		Dur("elapsed", time.Since(start)).
		Msg("Extract complete")

	return nil
}

func (e *Extractor) copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", staging.ErrSourceUnavailable, src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return 0, fmt.Errorf("failed to stage %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return n, nil
}
