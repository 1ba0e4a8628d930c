package datagen

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pgEdge/olist-warehouse/internal/extract"
	"github.com/pgEdge/olist-warehouse/internal/staging"
	"github.com/pgEdge/olist-warehouse/internal/transform"
)

func readSeedFile(t *testing.T, dir string, def staging.TableDef) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, extract.SourceFile(def)))
	if err != nil {
		t.Fatalf("Failed to open seeded file for %s: %v", def.Name, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read seeded file for %s: %v", def.Name, err)
	}
	return rows
}

func TestSeederProducesTransformableData(t *testing.T) {
	source := t.TempDir()
	seeder := NewSeeder(Spec{
		Orders:     50,
		Customers:  30,
		Products:   20,
		Sellers:    5,
		RandomSeed: 7,
	})
	if err := seeder.Run(source); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// The generated files must satisfy the staged-table contracts end to
	// end: extract them and run the full transform.
	store := staging.NewStore(t.TempDir())
	if err := extract.New(source, store).Run(); err != nil {
		t.Fatalf("Extract over seeded data failed: %v", err)
	}
	if err := transform.New(store).Run("seed-test"); err != nil {
		t.Fatalf("Transform over seeded data failed: %v", err)
	}

	items, err := store.Read(staging.OrderItems)
	if err != nil {
		t.Fatalf("Failed to read staged items: %v", err)
	}
	fact, err := store.Read(staging.FactSales)
	if err != nil {
		t.Fatalf("Failed to read fact table: %v", err)
	}
	if len(fact) != len(items) {
		t.Errorf("Expected one fact row per order item: %d items, %d fact rows",
			len(items), len(fact))
	}

	orders, err := store.Read(staging.Orders)
	if err != nil {
		t.Fatalf("Failed to read staged orders: %v", err)
	}
	if len(orders) != 50 {
		t.Errorf("Expected 50 orders, got %d", len(orders))
	}
}

func TestSeederIsReproducible(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	if err := NewSeeder(Spec{Orders: 10, Customers: 5, Products: 5, Sellers: 2, RandomSeed: 42}).Run(dirA); err != nil {
		t.Fatalf("First run returned error: %v", err)
	}
	if err := NewSeeder(Spec{Orders: 10, Customers: 5, Products: 5, Sellers: 2, RandomSeed: 42}).Run(dirB); err != nil {
		t.Fatalf("Second run returned error: %v", err)
	}

	a := readSeedFile(t, dirA, staging.Orders)
	b := readSeedFile(t, dirB, staging.Orders)
	if len(a) != len(b) {
		t.Fatalf("Run sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("Row %d column %d differs: %q vs %q", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestHexID(t *testing.T) {
	f := NewFakerWithSeed(1)
	id := f.HexID()
	if len(id) != 32 {
		t.Fatalf("Expected 32-character id, got %d", len(id))
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("Unexpected character %q in hex id", c)
		}
	}
}
