package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/model"
)

var userRowColumns = []string{"id", "firstname", "lastname", "nick", "pass", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*UserPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserPostgres(db), mock
}

func TestUserPostgres_GetAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(userRowColumns).
			AddRow(1, "Eddard", "Stark", "ned", "", created, nil).
			AddRow(2, "Catelyn", "Tully", "cat", "", nil, nil)

		mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnRows(rows)

		users, err := repo.GetAll(ctx)

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "ned", users[0].Nick)
		require.NotNil(t, users[0].CreatedAt)
		assert.True(t, created.Equal(*users[0].CreatedAt))
		assert.Nil(t, users[1].CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnRows(sqlmock.NewRows(userRowColumns))

		users, err := repo.GetAll(ctx)

		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnError(errors.New("db down"))

		users, err := repo.GetAll(ctx)

		assert.EqualError(t, err, "db down")
		assert.Nil(t, users)
	})
}

func TestUserPostgres_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userRowColumns).AddRow(2, "Catelyn", "Tully", "cat", "", nil, nil)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs(int64(2)).
			WillReturnRows(rows)

		u, err := repo.Get(ctx, 2)

		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, int64(2), u.ID)
		assert.Equal(t, "Catelyn", u.Firstname)
	})

	t.Run("absent", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs(int64(42)).
			WillReturnError(sql.ErrNoRows)

		u, err := repo.Get(ctx, 42)

		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs(int64(3)).
			WillReturnError(errors.New("boom"))

		u, err := repo.Get(ctx, 3)

		assert.Error(t, err)
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_Create(t *testing.T) {
	ctx := context.Background()
	in := &model.User{Firstname: "John", Lastname: "Snow", Nick: "snow"}
	const insertQuery = `INSERT INTO users (.+) SELECT COALESCE\(MAX\(id\), 0\) \+ 1`
	const lockQuery = `SELECT pg_advisory_xact_lock\(\$1\)`

	t.Run("success allocates id under lock", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		rows := sqlmock.NewRows(userRowColumns).AddRow(3, "John", "Snow", "snow", "", nil, nil)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(createLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(insertQuery).
			WithArgs("John", "Snow", "snow", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(rows)
		mock.ExpectCommit()

		u, err := repo.Create(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, &model.User{ID: 3, Firstname: "John", Lastname: "Snow", Nick: "snow"}, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(createLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(insertQuery).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()

		u, err := repo.Create(ctx, in)

		assert.EqualError(t, err, "duplicate key")
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock error rolls back before inserting", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WillReturnError(errors.New("canceling statement"))
		mock.ExpectRollback()

		u, err := repo.Create(ctx, in)

		assert.EqualError(t, err, "canceling statement")
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		u, err := repo.Create(ctx, in)

		assert.EqualError(t, err, "too many connections")
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		rows := sqlmock.NewRows(userRowColumns).AddRow(3, "John", "Snow", "snow", "", nil, nil)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(createLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(insertQuery).WillReturnRows(rows)
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		u, err := repo.Create(ctx, in)

		assert.EqualError(t, err, "serialization failure")
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_Update(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	in := &model.User{ID: 9, Firstname: "Sansa", Lastname: "Stark", Nick: "sansa"}

	t.Run("success keeps path id", func(t *testing.T) {
		rows := sqlmock.NewRows(userRowColumns).AddRow(1, "Sansa", "Stark", "sansa", "", nil, nil)
		mock.ExpectQuery("UPDATE users SET (.+) WHERE id = ").
			WithArgs("Sansa", "Stark", "sansa", "", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1)).
			WillReturnRows(rows)

		u, err := repo.Update(ctx, in, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		assert.Equal(t, "sansa", u.Nick)
	})

	t.Run("absent", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users SET (.+) WHERE id = ").
			WithArgs("Sansa", "Stark", "sansa", "", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(42)).
			WillReturnError(sql.ErrNoRows)

		u, err := repo.Update(ctx, in, 42)

		assert.NoError(t, err)
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	t.Run("existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := repo.Delete(ctx, 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("missing row still returns id", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		id, err := repo.Delete(ctx, 42)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs(int64(5)).
			WillReturnError(errors.New("locked"))

		_, err := repo.Delete(ctx, 5)

		assert.EqualError(t, err, "locked")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserPostgres(db)

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("ping failed"))
	assert.Error(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
