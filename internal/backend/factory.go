package backend

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/export"
	"gastos/internal/ledger"
	"gastos/internal/ledger/google"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the store, then the exporter. The store is closed
// again if the exporter cannot be built.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store ledger.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store, err = f.createMemoryStore(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	exporter, err := f.createExporter(ctx, config)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	return &Result{Store: store, Exporter: exporter, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (ledger.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger.WithComponent(log.ComponentStorage).Slog())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) (ledger.Store, error) {
	if config.MemorySeedFile == "" {
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	}
	store, err := memory.NewFromFile(config.MemorySeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed file: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seed_file", config.MemorySeedFile)
	return store, nil
}

// createExporter returns nil when exports are disabled.
func (f *DefaultFactory) createExporter(ctx context.Context, config Config) (ledger.Exporter, error) {
	switch config.ExportTarget {
	case ExportToFile:
		format, err := export.ParseFormat(config.ExportFormat)
		if err != nil {
			return nil, err
		}
		x := export.NewFileExporter(config.ExportDir, format)
		x.Logger = f.logger.WithComponent(log.ComponentExport).Slog()
		f.logger.Info("File exporter ready", "dir", config.ExportDir, "format", format)
		return x, nil
	case ExportToSheets:
		x, err := google.New(ctx, google.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		}, f.logger.WithComponent(log.ComponentSheets).Slog())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
		}
		return x, nil
	default:
		return nil, nil
	}
}
