//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package staging

import "fmt"

// TableDef is the data contract for one staged table: its canonical name in
// the staging area and the exact header it must carry. Reads validate the
// header against the contract instead of trusting column order.
type TableDef struct {
	Name    string
	Columns []string
}

// Filename returns the file name for the table within a staging directory.
func (d TableDef) Filename() string {
	return d.Name + ".csv"
}

// Col returns the index of a column within the contract. Unknown names are a
// programmer error, not a data error.
func (d TableDef) Col(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	panic(fmt.Sprintf("staging: table %s has no column %s", d.Name, name))
}

// Source tables, staged verbatim from the Olist dataset extracts.
// Several product headers carry the upstream dataset's "lenght" misspelling;
// the contract has to match the files as shipped.
var (
	Customers = TableDef{
		Name: "customers",
		Columns: []string{
			"customer_id", "customer_unique_id", "customer_zip_code_prefix",
			"customer_city", "customer_state",
		},
	}

	Geolocation = TableDef{
		Name: "geolocation",
		Columns: []string{
			"geolocation_zip_code_prefix", "geolocation_lat", "geolocation_lng",
			"geolocation_city", "geolocation_state",
		},
	}

	OrderItems = TableDef{
		Name: "order_items",
		Columns: []string{
			"order_id", "order_item_id", "product_id", "seller_id",
			"shipping_limit_date", "price", "freight_value",
		},
	}

	OrderPayments = TableDef{
		Name: "order_payments",
		Columns: []string{
			"order_id", "payment_sequential", "payment_type",
			"payment_installments", "payment_value",
		},
	}

	OrderReviews = TableDef{
		Name: "order_reviews",
		Columns: []string{
			"review_id", "order_id", "review_score", "review_comment_title",
			"review_comment_message", "review_creation_date", "review_answer_timestamp",
		},
	}

	Orders = TableDef{
		Name: "orders",
		Columns: []string{
			"order_id", "customer_id", "order_status", "order_purchase_timestamp",
			"order_approved_at", "order_delivered_carrier_date",
			"order_delivered_customer_date", "order_estimated_delivery_date",
		},
	}

	Products = TableDef{
		Name: "products",
		Columns: []string{
			"product_id", "product_category_name", "product_name_lenght",
			"product_description_lenght", "product_photos_qty", "product_weight_g",
			"product_length_cm", "product_height_cm", "product_width_cm",
		},
	}

	Sellers = TableDef{
		Name: "sellers",
		Columns: []string{
			"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state",
		},
	}

	CategoryTranslation = TableDef{
		Name: "category_translation",
		Columns: []string{
			"product_category_name", "product_category_name_english",
		},
	}
)

// Derived tables, written by the transform stage and read by the loader.
var (
	FactSales = TableDef{
		Name: "fact_sales",
		Columns: []string{
			"order_id", "order_item_id", "product_id", "seller_id", "customer_id",
			"shipping_limit_date", "price", "freight_value", "payment_type",
			"payment_value", "review_score", "order_status", "date_id",
		},
	}

	DimProduct = TableDef{
		Name: "dim_product",
		Columns: []string{
			"product_id", "category_name", "category_name_english", "name_length",
			"description_length", "photos_qty", "weight_g", "length_cm",
			"height_cm", "width_cm",
		},
	}

	DimCustomer = TableDef{
		Name: "dim_customer",
		Columns: []string{
			"customer_id", "unique_id", "zip_prefix", "city", "state",
		},
	}

	DimSeller = TableDef{
		Name: "dim_seller",
		Columns: []string{
			"seller_id", "zip_prefix", "city", "state",
		},
	}

	DimDate = TableDef{
		Name: "dim_date",
		Columns: []string{
			"date_id", "year", "month", "day", "weekday",
		},
	}

	DimPayment = TableDef{
		Name: "dim_payment",
		Columns: []string{
			"order_id", "payment_sequential", "payment_type", "installments",
			"payment_value",
		},
	}

	DimReview = TableDef{
		Name: "dim_review",
		Columns: []string{
			"review_id", "order_id", "score", "comment_title", "comment_message",
			"created_at", "answered_at",
		},
	}
)

// SourceTables lists every table the extract stage must stage, in a stable
// order. Geolocation is staged for completeness even though the transform
// does not consume it.
var SourceTables = []TableDef{
	Customers, Geolocation, OrderItems, OrderPayments, OrderReviews,
	Orders, Products, Sellers, CategoryTranslation,
}

// DerivedTables lists every table the transform stage must produce.
var DerivedTables = []TableDef{
	FactSales, DimProduct, DimCustomer, DimSeller, DimDate, DimPayment, DimReview,
}
