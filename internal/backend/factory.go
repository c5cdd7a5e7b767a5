package backend

import (
	"context"
	"fmt"

	applog "denario/internal/log"
	"denario/internal/storage"
	"denario/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		applog.FieldBackend, config.Type.String(),
		applog.FieldDBPath, config.SQLiteDBPath)

	return &BackendResult{
		Ledger:      repo.Ledger(),
		Preferences: repo.Preferences(),
		Cleanup:     repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend; nothing will be kept after exit",
		applog.FieldBackend, MemoryBackend.String())

	return &BackendResult{
		Ledger:      memory.NewLedger(),
		Preferences: memory.NewPreferences(),
		Cleanup:     nil, // No cleanup needed for memory backend
	}, nil
}
