package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"spendwise/internal/tabular"
	"spendwise/internal/tabular/csvfile"
	gsheet "spendwise/internal/tabular/google"
	"spendwise/internal/tabular/memory"
	"spendwise/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger

	mu       sync.Mutex
	memories map[string]*memory.Store
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:   logger,
		memories: make(map[string]*memory.Store),
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, username string) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(config, username)
	case MemoryBackend:
		return f.createMemoryBackend(username)
	case SQLiteBackend:
		return f.createSQLiteBackend(config, username)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config, username)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVBackend(config Config, username string) (*BackendResult, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = "."
	}
	src := csvfile.ForUser(dir, username)
	f.logger.Info("Initialized CSV backend", "path", src.Name())
	return &BackendResult{Source: src}, nil
}

// createMemoryBackend hands out one store per user so a reopened session in
// the same process sees what the previous one saved.
func (f *DefaultFactory) createMemoryBackend(username string) (*BackendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := tabular.TableName(username)
	store, ok := f.memories[key]
	if !ok {
		store = memory.New(key)
		f.memories[key] = store
	}
	f.logger.Info("Initialized memory backend", "table", key)
	return &BackendResult{Source: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config, username string) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	owner := tabular.TableName(username)
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "owner", owner)
	return &BackendResult{
		Source:  repo.Source(owner),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config, username string) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	tab := tabular.TableName(username)
	f.logger.Info("Initialized Google Sheets backend", "tab", tab)
	return &BackendResult{Source: cli.Source(tab)}, nil
}
