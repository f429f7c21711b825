// Package csvfile stores an expense table as a CSV file with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"spendwise/internal/core"
	"spendwise/internal/tabular"
)

// defaultMode applies to files created by Save.
const defaultMode fs.FileMode = 0o644

// File is a CSV-backed tabular.Source.
type File struct {
	path string
}

var _ tabular.Source = (*File)(nil)

// New returns a source for the CSV file at path.
func New(path string) *File {
	return &File{path: path}
}

// ForUser returns the source for "<username>_expenses.csv" inside dir.
func ForUser(dir, username string) *File {
	return New(filepath.Join(dir, tabular.ResourceName(username)))
}

func (f *File) Name() string { return f.path }

// Load reads the file. A missing file is an empty table.
func (f *File) Load(ctx context.Context) ([]core.Expense, error) {
	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.DebugContext(ctx, "Expense file not found, starting empty", "path", f.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", f.path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	expenses, err := tabular.RecordsFromRows(header, rows)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return expenses, nil
}

// Save replaces the file contents. The new table is written to a temporary
// file in the same directory and renamed over the old one.
func (f *File) Save(ctx context.Context, expenses []core.Expense) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(tabular.Rows(expenses)); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	// Keep the permissions of the file being replaced.
	mode := defaultMode
	if info, err := os.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}

	slog.DebugContext(ctx, "Expense file written", "path", f.path, "rows", len(expenses))
	return nil
}
