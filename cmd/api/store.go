package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"userapi/internal/config"
	"userapi/internal/database"
	"userapi/internal/database/migration"
	handlers "userapi/internal/http/handler"
	"userapi/internal/repository"
	"userapi/internal/repository/memory"
	"userapi/internal/repository/postgres"
)

// userStore is the repository picked by STORE_DRIVER. pinger is nil for the memory store.
type userStore struct {
	users  repository.UserRepository
	pinger handlers.Pinger
	close  func() error
}

type storeOpener struct {
	connect func(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error)
	migrate func(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error
}

var defaultOpener = storeOpener{
	connect: database.NewPostgres,
	migrate: migration.EnsureMigrated,
}

func (o storeOpener) open(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*userStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return &userStore{
			users: memory.NewUserMemory(),
			close: func() error { return nil },
		}, nil
	case config.StorePostgres:
		db, err := o.connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := o.migrate(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		pg := postgres.NewUserPostgres(db)
		return &userStore{users: pg, pinger: pg, close: db.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
