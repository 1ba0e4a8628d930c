//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform derives the star-schema tables from the staged Olist
// extracts: one fact table anchored on order items plus six dimensions.
// All joins are left-outer with order items as the cardinality source, so a
// missing order, payment or review yields NULL columns, never a dropped row.
package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/olist-warehouse/internal/logging"
	"github.com/pgEdge/olist-warehouse/internal/staging"
)

// TimestampLayout is the datetime format used throughout the Olist extracts.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date format used for date_id values.
const DateLayout = "2006-01-02"

// Engine reads staged source tables and publishes the derived tables back
// into the same staging area. It touches no network or database.
type Engine struct {
	store *staging.Store
}

// New returns an Engine over the given staging store.
func New(store *staging.Store) *Engine {
	return &Engine{store: store}
}

// Run derives all seven tables and publishes them atomically under tag.
// Either every derived table becomes visible in the staging area or none do.
func (e *Engine) Run(tag string) error {
	start := time.Now()

	items, err := e.store.Read(staging.OrderItems)
	if err != nil {
		return err
	}
	orders, err := e.store.Read(staging.Orders)
	if err != nil {
		return err
	}
	payments, err := e.store.Read(staging.OrderPayments)
	if err != nil {
		return err
	}
	reviews, err := e.store.Read(staging.OrderReviews)
	if err != nil {
		return err
	}
	products, err := e.store.Read(staging.Products)
	if err != nil {
		return err
	}
	customers, err := e.store.Read(staging.Customers)
	if err != nil {
		return err
	}
	sellers, err := e.store.Read(staging.Sellers)
	if err != nil {
		return err
	}
	translations, err := e.store.Read(staging.CategoryTranslation)
	if err != nil {
		return err
	}

	fact, err := DeriveFact(items, orders, payments, reviews)
	if err != nil {
		return fmt.Errorf("deriving fact_sales: %w", err)
	}
	dimDate, err := DeriveDimDate(orders)
	if err != nil {
		return fmt.Errorf("deriving dim_date: %w", err)
	}
	dimProduct := DeriveDimProduct(products, translations)
	dimCustomer := DeriveDimCustomer(customers)
	dimSeller := DeriveDimSeller(sellers)
	dimPayment := DeriveDimPayment(payments)
	dimReview := DeriveDimReview(reviews)

	err = e.store.Publish(tag, staging.DerivedTables, func(tmp *staging.Store) error {
		for _, t := range []struct {
			def  staging.TableDef
			rows [][]string
		}{
			{staging.FactSales, fact},
			{staging.DimProduct, dimProduct},
			{staging.DimCustomer, dimCustomer},
			{staging.DimSeller, dimSeller},
			{staging.DimDate, dimDate},
			{staging.DimPayment, dimPayment},
			{staging.DimReview, dimReview},
		} {
			if err := tmp.Write(t.def, t.rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Info().
		Int("fact_rows", len(fact)).
		Int("products", len(dimProduct)).
		Int("customers", len(dimCustomer)).
		Int("sellers", len(dimSeller)).
		Int("dates", len(dimDate)).
		Int("payments", len(dimPayment)).
		Int("reviews", len(dimReview)).
		Dur("elapsed", time.Since(start)).
		Msg("Transform complete")

	return nil
}

// orderInfo is the slice of an order the fact table needs.
type orderInfo struct {
	customerID string
	status     string
	dateID     string
}

// paymentSummary aggregates an order's installments: the first recorded
// payment type by file order and the sum of all installment values.
type paymentSummary struct {
	firstType string
	total     decimal.Decimal
}

// DeriveFact produces one fact row per order item. Orders, the per-order
// payment summary and the first review score per order are left-joined in;
// join misses become empty (NULL) fields.
func DeriveFact(items, orders, payments, reviews [][]string) ([][]string, error) {
	var (
		itOrderID   = staging.OrderItems.Col("order_id")
		itItemID    = staging.OrderItems.Col("order_item_id")
		itProductID = staging.OrderItems.Col("product_id")
		itSellerID  = staging.OrderItems.Col("seller_id")
		itShipLimit = staging.OrderItems.Col("shipping_limit_date")
		itPrice     = staging.OrderItems.Col("price")
		itFreight   = staging.OrderItems.Col("freight_value")
	)

	orderByID, err := indexOrders(orders)
	if err != nil {
		return nil, err
	}
	paymentByOrder, err := summarizePayments(payments)
	if err != nil {
		return nil, err
	}
	scoreByOrder := firstReviewScores(reviews)

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		orderID := item[itOrderID]

		if _, err := strconv.ParseInt(item[itItemID], 10, 64); err != nil {
			return nil, fmt.Errorf("order %s: bad order_item_id %q: %w",
				orderID, item[itItemID], staging.ErrSchemaViolation)
		}
		price, err := truncMoney(item[itPrice])
		if err != nil {
			return nil, fmt.Errorf("order %s: bad price: %w", orderID, err)
		}
		freight, err := truncMoney(item[itFreight])
		if err != nil {
			return nil, fmt.Errorf("order %s: bad freight_value: %w", orderID, err)
		}

		var customerID, status, dateID string
		if o, ok := orderByID[orderID]; ok {
			customerID = o.customerID
			status = o.status
			dateID = o.dateID
		}

		var payType, payValue string
		if p, ok := paymentByOrder[orderID]; ok {
			payType = p.firstType
			payValue = p.total.StringFixed(2)
		}

		rows = append(rows, []string{
			orderID,
			item[itItemID],
			item[itProductID],
			item[itSellerID],
			customerID,
			item[itShipLimit],
			price,
			freight,
			payType,
			payValue,
			scoreByOrder[orderID],
			status,
			dateID,
		})
	}
	return rows, nil
}

// DeriveDimProduct left-joins products with the category translation lookup
// and deduplicates by product_id, keeping the first occurrence.
func DeriveDimProduct(products, translations [][]string) [][]string {
	var (
		trName    = staging.CategoryTranslation.Col("product_category_name")
		trEnglish = staging.CategoryTranslation.Col("product_category_name_english")
	)
	english := make(map[string]string, len(translations))
	for _, tr := range translations {
		if tr[trName] != "" {
			english[tr[trName]] = tr[trEnglish]
		}
	}

	var (
		pID       = staging.Products.Col("product_id")
		pCategory = staging.Products.Col("product_category_name")
		pName     = staging.Products.Col("product_name_lenght")
		pDesc     = staging.Products.Col("product_description_lenght")
		pPhotos   = staging.Products.Col("product_photos_qty")
		pWeight   = staging.Products.Col("product_weight_g")
		pLength   = staging.Products.Col("product_length_cm")
		pHeight   = staging.Products.Col("product_height_cm")
		pWidth    = staging.Products.Col("product_width_cm")
	)

	rows := make([][]string, 0, len(products))
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if seen[p[pID]] {
			continue
		}
		seen[p[pID]] = true
		rows = append(rows, []string{
			p[pID],
			p[pCategory],
			english[p[pCategory]],
			p[pName],
			p[pDesc],
			p[pPhotos],
			p[pWeight],
			p[pLength],
			p[pHeight],
			p[pWidth],
		})
	}
	return rows
}

// DeriveDimCustomer projects the customer attributes, deduplicated on full
// row equality.
func DeriveDimCustomer(customers [][]string) [][]string {
	var (
		cID     = staging.Customers.Col("customer_id")
		cUnique = staging.Customers.Col("customer_unique_id")
		cZip    = staging.Customers.Col("customer_zip_code_prefix")
		cCity   = staging.Customers.Col("customer_city")
		cState  = staging.Customers.Col("customer_state")
	)
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{c[cID], c[cUnique], c[cZip], c[cCity], c[cState]})
	}
	return dedupRows(rows)
}

// DeriveDimSeller projects the seller attributes, deduplicated on full row
// equality.
func DeriveDimSeller(sellers [][]string) [][]string {
	var (
		sID    = staging.Sellers.Col("seller_id")
		sZip   = staging.Sellers.Col("seller_zip_code_prefix")
		sCity  = staging.Sellers.Col("seller_city")
		sState = staging.Sellers.Col("seller_state")
	)
	rows := make([][]string, 0, len(sellers))
	for _, s := range sellers {
		rows = append(rows, []string{s[sID], s[sZip], s[sCity], s[sState]})
	}
	return dedupRows(rows)
}

// DeriveDimDate decomposes the distinct purchase dates across all orders
// into calendar parts, one row per date, sorted ascending. Weekday names are
// English regardless of locale.
func DeriveDimDate(orders [][]string) ([][]string, error) {
	oPurchase := staging.Orders.Col("order_purchase_timestamp")

	dates := make(map[string]time.Time)
	for _, o := range orders {
		ts, ok, err := parseTimestamp(o[oPurchase])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		dates[ts.Format(DateLayout)] = ts
	}

	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		ts := dates[k]
		rows = append(rows, []string{
			k,
			strconv.Itoa(ts.Year()),
			strconv.Itoa(int(ts.Month())),
			strconv.Itoa(ts.Day()),
			ts.Weekday().String(),
		})
	}
	return rows, nil
}

// DeriveDimPayment is a direct projection of the payment installments: no
// deduplication and no aggregation, one row per installment.
func DeriveDimPayment(payments [][]string) [][]string {
	var (
		pOrderID      = staging.OrderPayments.Col("order_id")
		pSequential   = staging.OrderPayments.Col("payment_sequential")
		pType         = staging.OrderPayments.Col("payment_type")
		pInstallments = staging.OrderPayments.Col("payment_installments")
		pValue        = staging.OrderPayments.Col("payment_value")
	)
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p[pOrderID], p[pSequential], p[pType], p[pInstallments], p[pValue],
		})
	}
	return rows
}

// DeriveDimReview projects the reviews, deduplicated by review_id with the
// first occurrence winning.
func DeriveDimReview(reviews [][]string) [][]string {
	var (
		rID       = staging.OrderReviews.Col("review_id")
		rOrderID  = staging.OrderReviews.Col("order_id")
		rScore    = staging.OrderReviews.Col("review_score")
		rTitle    = staging.OrderReviews.Col("review_comment_title")
		rMessage  = staging.OrderReviews.Col("review_comment_message")
		rCreated  = staging.OrderReviews.Col("review_creation_date")
		rAnswered = staging.OrderReviews.Col("review_answer_timestamp")
	)
	rows := make([][]string, 0, len(reviews))
	seen := make(map[string]bool, len(reviews))
	for _, r := range reviews {
		if seen[r[rID]] {
			continue
		}
		seen[r[rID]] = true
		rows = append(rows, []string{
			r[rID], r[rOrderID], r[rScore], r[rTitle], r[rMessage], r[rCreated], r[rAnswered],
		})
	}
	return rows
}

func indexOrders(orders [][]string) (map[string]orderInfo, error) {
	var (
		oID       = staging.Orders.Col("order_id")
		oCustomer = staging.Orders.Col("customer_id")
		oStatus   = staging.Orders.Col("order_status")
		oPurchase = staging.Orders.Col("order_purchase_timestamp")
	)
	byID := make(map[string]orderInfo, len(orders))
	for _, o := range orders {
		ts, ok, err := parseTimestamp(o[oPurchase])
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o[oID], err)
		}
		info := orderInfo{customerID: o[oCustomer], status: o[oStatus]}
		if ok {
			info.dateID = ts.Format(DateLayout)
		}
		if _, exists := byID[o[oID]]; !exists {
			byID[o[oID]] = info
		}
	}
	return byID, nil
}

func summarizePayments(payments [][]string) (map[string]paymentSummary, error) {
	var (
		pOrderID = staging.OrderPayments.Col("order_id")
		pType    = staging.OrderPayments.Col("payment_type")
		pValue   = staging.OrderPayments.Col("payment_value")
	)
	byOrder := make(map[string]paymentSummary, len(payments))
	for _, p := range payments {
		orderID := p[pOrderID]

		var value decimal.Decimal
		if p[pValue] != "" {
			var err error
			value, err = decimal.NewFromString(p[pValue])
			if err != nil {
				return nil, fmt.Errorf("order %s: bad payment_value %q: %w",
					orderID, p[pValue], staging.ErrSchemaViolation)
			}
		}

		summary, ok := byOrder[orderID]
		if !ok {
			summary.firstType = p[pType]
		}
		summary.total = summary.total.Add(value).Truncate(2)
		byOrder[orderID] = summary
	}
	return byOrder, nil
}

func firstReviewScores(reviews [][]string) map[string]string {
	var (
		rOrderID = staging.OrderReviews.Col("order_id")
		rScore   = staging.OrderReviews.Col("review_score")
	)
	byOrder := make(map[string]string, len(reviews))
	for _, r := range reviews {
		if _, ok := byOrder[r[rOrderID]]; !ok {
			byOrder[r[rOrderID]] = r[rScore]
		}
	}
	return byOrder
}

// parseTimestamp parses an Olist datetime field. Empty means NULL; anything
// else that fails to parse is fatal.
func parseTimestamp(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	ts, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad timestamp %q: %w", s, staging.ErrSchemaViolation)
	}
	return ts, true, nil
}

// truncMoney normalizes a monetary field to two decimal places. Empty means
// NULL and passes through.
func truncMoney(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("bad numeric %q: %w", s, staging.ErrSchemaViolation)
	}
	return d.Truncate(2).StringFixed(2), nil
}

func dedupRows(rows [][]string) [][]string {
	out := rows[:0]
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
