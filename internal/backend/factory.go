package backend

import (
	"context"
	"fmt"
	"log/slog"

	"warikan/internal/services"
	"warikan/internal/sheets/gas"
	gsheet "warikan/internal/sheets/google"
	"warikan/internal/sheets/memory"
	"warikan/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the store first so the gas source can resolve the
// URL saved from the dashboard.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, cleanup, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	settings := services.NewSourceSettings(store, config.GASURL)

	result := &BackendResult{
		Store:   store,
		Cleanup: cleanup,
	}

	switch config.Source {
	case GASSource:
		result.Settings = settings
		result.Source = gas.New(settings.SourceURL, nil, config.FetchTimeout)
		f.logger.Info("Initialized GAS source",
			"url_configured", settings.Configured(ctx))
	case SheetsSource:
		cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName)
		if err != nil {
			result.close()
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		result.Source = cli
		f.logger.Info("Initialized Google Sheets source",
			"sheet", config.GoogleSheetName)
	case MemorySource:
		src, err := memory.NewFromFile(config.FixtureFile)
		if err != nil {
			result.close()
			return nil, fmt.Errorf("failed to load ledger fixture: %w", err)
		}
		result.Source = src
		f.logger.Info("Initialized memory source", "fixture", config.FixtureFile)
	default:
		result.close()
		return nil, fmt.Errorf("unsupported source type: %s", config.Source)
	}

	return result, nil
}

func (f *DefaultFactory) createStore(config Config) (Store, CleanupFunc, error) {
	switch config.Store {
	case SQLiteStore:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil
	case MemoryStore:
		f.logger.Warn("Using memory store, advances are lost on restart")
		return storage.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store type: %s", config.Store)
	}
}

func (r *BackendResult) close() {
	if r.Cleanup != nil {
		_ = r.Cleanup()
	}
}
