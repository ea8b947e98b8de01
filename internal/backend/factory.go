package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
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
		log.FieldComponent, log.ComponentBackend,
		"db_path", config.SQLiteDBPath)

	return &BackendResult{Documents: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var docs *memory.Store
	if config.SeedDir != "" {
		docs = memory.NewFromDir(config.SeedDir)
	} else {
		docs = memory.New()
	}

	f.logger.InfoContext(ctx, "Initialized memory backend",
		log.FieldComponent, log.ComponentBackend,
		"seed_dir", config.SeedDir,
		"documents", docs.Len())

	return &BackendResult{Documents: docs}, nil
}
