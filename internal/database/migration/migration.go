package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"userapi/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         BIGINT      PRIMARY KEY,
  firstname  TEXT        NOT NULL,
  lastname   TEXT        NOT NULL,
  nick       TEXT        NOT NULL,
  pass       TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NULL,
  updated_at TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_index_users_nick",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_nick ON users (nick);`,
	},
	{
		Name: "seed_users",
		SQL: `INSERT INTO users (id, firstname, lastname, nick) VALUES
  (1, 'Eddard', 'Stark', 'ned'),
  (2, 'Catelyn', 'Tully', 'cat')
ON CONFLICT (id) DO NOTHING;`,
	},
}

// EnsureMigrated checks if the 'users' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	log.InfoContext(ctx, "db_migration_check")

	var exists bool
	query := "SELECT to_regclass('public.users') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		err = fmt.Errorf("failed to check sentinel table: %w", err)
		log.ErrorContext(ctx, "db_migration_failed",
			logger.Err(err),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return err
	}

	if exists {
		log.InfoContext(ctx, "db_migration_skip",
			slog.String("reason", "schema already exists"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.InfoContext(ctx, "db_migration_start")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				slog.String("migration_step", step.Name),
				logger.Err(err),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.InfoContext(ctx, "db_migration_step",
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.InfoContext(ctx, "db_migration_success",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
