package backend

import (
	"context"

	"spendwise/internal/tabular"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the source bound to one user and an optional cleanup.
type BackendResult struct {
	Source  tabular.Source
	Cleanup CleanupFunc
}

// Factory creates per-user sources based on configuration.
type Factory interface {
	// CreateBackend opens the storage resource belonging to username.
	CreateBackend(ctx context.Context, config Config, username string) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// CSV backend: directory holding "<username>_expenses.csv".
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// ValidTypes lists the accepted backend names.
func ValidTypes() []string {
	return []string{string(CSVBackend), string(MemoryBackend), string(SQLiteBackend), string(SheetsBackend)}
}
