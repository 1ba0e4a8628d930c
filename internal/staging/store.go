//-------------------------------------------------------------------------
//
// Olist Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package staging implements the file-based staging area shared by the
// pipeline stages: headered UTF-8 CSV, one file per table, with an explicit
// column contract per table. Empty fields represent NULL.
package staging

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pgEdge/olist-warehouse/internal/logging"
)

// Sentinel errors for the staging layer. Callers match with errors.Is.
var (
	// ErrSourceUnavailable reports a required staged file that is missing
	// or unreadable.
	ErrSourceUnavailable = errors.New("staged table unavailable")

	// ErrSchemaViolation reports a staged file whose header does not match
	// its table contract.
	ErrSchemaViolation = errors.New("staged table schema violation")
)

// Store reads and writes staged tables under a single directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the staging directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a staged table.
func (s *Store) Path(def TableDef) string {
	return filepath.Join(s.dir, def.Filename())
}

// Read loads all rows of a staged table after validating its header against
// the table contract. Every returned row has exactly len(def.Columns) fields.
func (s *Store) Read(def TableDef) ([][]string, error) {
	f, err := os.Open(s.Path(def))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, def.Name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(def.Columns)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading header: %v", ErrSchemaViolation, def.Name, err)
	}
	if err := checkHeader(def, header); err != nil {
		return nil, err
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaViolation, def.Name, err)
	}

	logging.Debug().
		Str("table", def.Name).
		Int("rows", len(rows)).
		Msg("Read staged table")

	return rows, nil
}

// Write replaces a staged table with the given rows, header first.
func (s *Store) Write(def TableDef, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	f, err := os.Create(s.Path(def))
	if err != nil {
		return fmt.Errorf("failed to create staged table %s: %w", def.Name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(def.Columns); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", def.Name, err)
	}
	for _, row := range rows {
		if len(row) != len(def.Columns) {
			return fmt.Errorf("%w: %s: row has %d fields, want %d",
				ErrSchemaViolation, def.Name, len(row), len(def.Columns))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", def.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush staged table %s: %w", def.Name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close staged table %s: %w", def.Name, err)
	}

	logging.Debug().
		Str("table", def.Name).
		Int("rows", len(rows)).
		Msg("Wrote staged table")

	return nil
}

// Publish runs write against a temporary store inside the staging area and,
// only if it succeeds for every table, renames the produced files into place.
// A failed transform therefore never leaves partially derived tables visible.
func (s *Store) Publish(tag string, tables []TableDef, write func(tmp *Store) error) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	tmpDir := filepath.Join(s.dir, ".publish-"+tag)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("failed to create publish directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmp := NewStore(tmpDir)
	if err := write(tmp); err != nil {
		return err
	}

	// Everything written; verify before moving anything.
	for _, def := range tables {
		if _, err := os.Stat(tmp.Path(def)); err != nil {
			return fmt.Errorf("%w: %s: not produced before publish", ErrSourceUnavailable, def.Name)
		}
	}
	for _, def := range tables {
		if err := os.Rename(tmp.Path(def), s.Path(def)); err != nil {
			return fmt.Errorf("failed to publish staged table %s: %w", def.Name, err)
		}
	}

	logging.Debug().
		Int("tables", len(tables)).
		Str("staging", s.dir).
		Msg("Published staged tables")

	return nil
}

func checkHeader(def TableDef, header []string) error {
	if len(header) != len(def.Columns) {
		return fmt.Errorf("%w: %s: header has %d columns, want %d",
			ErrSchemaViolation, def.Name, len(header), len(def.Columns))
	}
	for i, col := range def.Columns {
		if header[i] != col {
			return fmt.Errorf("%w: %s: column %d is %q, want %q",
				ErrSchemaViolation, def.Name, i, header[i], col)
		}
	}
	return nil
}
