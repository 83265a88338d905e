package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/logger"
)

const sentinelQuery = `SELECT to_regclass\('public.users'\) IS NOT NULL`

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("runs every step on a fresh database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		var buf bytes.Buffer

		mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, step := range steps {
			mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		err = EnsureMigrated(ctx, db, logger.New(&buf, nil), "db.local")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), `"msg":"db_migration_success"`)
		assert.Contains(t, buf.String(), `"migration_step":"seed_users"`)
	})

	t.Run("skips when the table exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		var buf bytes.Buffer

		mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = EnsureMigrated(ctx, db, logger.New(&buf, nil), "db.local")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), `"msg":"db_migration_skip"`)
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		var buf bytes.Buffer

		mock.ExpectQuery(sentinelQuery).WillReturnError(errors.New("conn reset"))

		err = EnsureMigrated(ctx, db, logger.New(&buf, nil), "db.local")

		assert.ErrorContains(t, err, "failed to check sentinel table: conn reset")
		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), `"db_host":"db.local"`)
	})

	t.Run("step failure stops the run", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		var buf bytes.Buffer

		mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, logger.New(&buf, nil), "db.local")

		assert.ErrorContains(t, err, "migration step create_table_users failed: permission denied")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
