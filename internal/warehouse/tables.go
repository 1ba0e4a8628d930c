//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import "github.com/pgEdge/olist-warehouse/internal/staging"

// colKind is the target column type a staged field must coerce into.
type colKind int

const (
	colText colKind = iota
	colBigint
	colInteger
	colReal
	colNumeric
	colDate
	colTimestamp
)

// tableSpec maps a derived staged table onto its warehouse table: the column
// kinds positionally match the staged contract, and conflictKey names the
// natural key for insert-skip-on-duplicate tables. An empty conflictKey means
// append-only.
type tableSpec struct {
	def         staging.TableDef
	kinds       []colKind
	conflictKey string
}

// loadOrder fixes the load sequence: dimensions before the fact table. The
// schema declares no foreign keys, so ordering does not affect correctness,
// but it keeps the referential invariant auditable.
var loadOrder = []tableSpec{
	{
		def: staging.DimProduct,
		kinds: []colKind{
			colText, colText, colText, colReal, colReal,
			colReal, colReal, colReal, colReal, colReal,
		},
		conflictKey: "product_id",
	},
	{
		def:         staging.DimCustomer,
		kinds:       []colKind{colText, colText, colInteger, colText, colText},
		conflictKey: "customer_id",
	},
	{
		def:         staging.DimSeller,
		kinds:       []colKind{colText, colInteger, colText, colText},
		conflictKey: "seller_id",
	},
	{
		def:         staging.DimDate,
		kinds:       []colKind{colDate, colInteger, colInteger, colInteger, colText},
		conflictKey: "date_id",
	},
	{
		def: staging.DimReview,
		kinds: []colKind{
			colText, colText, colInteger, colText, colText,
			colTimestamp, colTimestamp,
		},
		conflictKey: "review_id",
	},
	{
		def:   staging.DimPayment,
		kinds: []colKind{colText, colInteger, colText, colInteger, colNumeric},
	},
	{
		def: staging.FactSales,
		kinds: []colKind{
			colText, colBigint, colText, colText, colText, colTimestamp,
			colNumeric, colNumeric, colText, colNumeric, colNumeric,
			colText, colDate,
		},
	},
}
