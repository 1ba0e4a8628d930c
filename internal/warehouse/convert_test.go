package warehouse

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/olist-warehouse/internal/staging"
)

func TestConvertField(t *testing.T) {
	tests := []struct {
		name    string
		kind    colKind
		in      string
		want    any
		wantErr bool
	}{
		{"empty is null", colNumeric, "", nil, false},
		{"text", colText, "credit_card", "credit_card", false},
		{"bigint", colBigint, "42", int64(42), false},
		{"bigint bad", colBigint, "forty-two", nil, true},
		{"integer with leading zero", colInteger, "01409", int64(1409), false},
		{"real", colReal, "58.9", 58.9, false},
		{"real bad", colReal, "heavy", nil, true},
		{"numeric bad", colNumeric, "sixty", nil, true},
		{"date", colDate, "2018-03-14",
			pgtype.Date{Time: time.Date(2018, 3, 14, 0, 0, 0, 0, time.UTC), Valid: true}, false},
		{"date bad", colDate, "14/03/2018", nil, true},
		{"timestamp bad", colTimestamp, "2018-03-14", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertField(tt.kind, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.want != nil && got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if tt.want == nil && got != nil {
				t.Errorf("Expected nil, got %v", got)
			}
		})
	}
}

func TestConvertFieldNumeric(t *testing.T) {
	got, err := convertField(colNumeric, "60.00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	n, ok := got.(pgtype.Numeric)
	if !ok {
		t.Fatalf("Expected pgtype.Numeric, got %T", got)
	}
	if !n.Valid {
		t.Error("Expected valid numeric")
	}
}

func TestConvertFieldTimestamp(t *testing.T) {
	got, err := convertField(colTimestamp, "2018-03-14 09:22:00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("Expected time.Time, got %T", got)
	}
	if ts.Hour() != 9 || ts.Minute() != 22 {
		t.Errorf("Unexpected timestamp %v", ts)
	}
}

func TestConvertRowReportsColumn(t *testing.T) {
	spec := loadOrder[len(loadOrder)-1] // fact_sales
	row := make([]string, len(spec.def.Columns))
	row[spec.def.Col("price")] = "not-a-price"

	_, err := convertRow(spec, row)
	if err == nil {
		t.Fatal("Expected error for bad price")
	}
	if !strings.Contains(err.Error(), "fact_sales.price") {
		t.Errorf("Expected error to name fact_sales.price, got %v", err)
	}
}

func TestLoadOrder(t *testing.T) {
	if loadOrder[len(loadOrder)-1].def.Name != staging.FactSales.Name {
		t.Error("Expected fact_sales to load last")
	}

	conflictKeys := map[string]string{
		"dim_product":  "product_id",
		"dim_customer": "customer_id",
		"dim_seller":   "seller_id",
		"dim_date":     "date_id",
		"dim_review":   "review_id",
		"dim_payment":  "",
		"fact_sales":   "",
	}
	if len(loadOrder) != len(conflictKeys) {
		t.Fatalf("Expected %d load specs, got %d", len(conflictKeys), len(loadOrder))
	}
	for _, spec := range loadOrder {
		want, ok := conflictKeys[spec.def.Name]
		if !ok {
			t.Errorf("Unexpected table %s in load order", spec.def.Name)
			continue
		}
		if spec.conflictKey != want {
			t.Errorf("%s: expected conflict key %q, got %q", spec.def.Name, want, spec.conflictKey)
		}
		if len(spec.kinds) != len(spec.def.Columns) {
			t.Errorf("%s: %d column kinds for %d columns",
				spec.def.Name, len(spec.kinds), len(spec.def.Columns))
		}
	}
}
