package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pgEdge/olist-warehouse/internal/staging"
)

func TestRunStagesAllSources(t *testing.T) {
	source := t.TempDir()
	for _, def := range staging.SourceTables {
		content := []byte("header\nrow\n")
		if err := os.WriteFile(filepath.Join(source, sourceFiles[def.Name]), content, 0o644); err != nil {
			t.Fatalf("Failed to write source file: %v", err)
		}
	}

	store := staging.NewStore(t.TempDir())
	if err := New(source, store).Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, def := range staging.SourceTables {
		data, err := os.ReadFile(store.Path(def))
		if err != nil {
			t.Fatalf("Expected staged file for %s: %v", def.Name, err)
		}
		if string(data) != "header\nrow\n" {
			t.Errorf("Staged %s differs from source", def.Name)
		}
	}
}

func TestRunMissingSourceFile(t *testing.T) {
	source := t.TempDir()
	// Stage everything except orders
	for _, def := range staging.SourceTables {
		if def.Name == staging.Orders.Name {
			continue
		}
		if err := os.WriteFile(filepath.Join(source, sourceFiles[def.Name]), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("Failed to write source file: %v", err)
		}
	}

	err := New(source, staging.NewStore(t.TempDir())).Run()
	if err == nil {
		t.Fatal("Expected error for missing source file")
	}
	if !errors.Is(err, staging.ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestSourceFileMapping(t *testing.T) {
	if got := SourceFile(staging.CategoryTranslation); got != "product_category_name_translation.csv" {
		t.Errorf("Unexpected source file name: %s", got)
	}
	for _, def := range staging.SourceTables {
		if sourceFiles[def.Name] == "" {
			t.Errorf("No source file mapped for %s", def.Name)
		}
	}
}
