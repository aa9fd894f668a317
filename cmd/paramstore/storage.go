package main

import (
	"fmt"
	"log/slog"

	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/database"
	"github.com/enixma/dashboard/internal/storage"
	gormstorage "github.com/enixma/dashboard/internal/storage/gorm"
	"github.com/enixma/dashboard/internal/storage/memory"
	sqlitestorage "github.com/enixma/dashboard/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

func createStorageBackend(cfg config.StorageConfig, logger *slog.Logger, zlog zerolog.Logger) (storage.Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.GetPostgresDB(cfg.DB, zlog)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		logger.Info("Postgres storage backend initialized", "host", cfg.DB.Host, "database", cfg.DB.Database)
		return gormstorage.New(gormstorage.Dependencies{DB: db, Logger: zlog}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(cfg.SQLite, zlog)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend initialized", "dumpPath", cfg.SQLite.DumpPath)
		return backend, nil

	case "", "memory":
		logger.Info("Memory storage backend initialized")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
