package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, firstname, lastname, nick, pass, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u                    model.User
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(
		&u.ID,
		&u.Firstname,
		&u.Lastname,
		&u.Nick,
		&u.Pass,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		u.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return &u, nil
}

// GetAll returns every user ordered by id, which matches insertion order since ids only grow.
func (r *UserPostgres) GetAll(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a single user by id. A missing row is reported as nil without error.
func (r *UserPostgres) Get(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// createLockKey names the transaction-scoped advisory lock that serializes id allocation.
const createLockKey int64 = 0x75736572

// Create inserts a row under max(id)+1 (1 for an empty table) and returns it.
// Concurrent creates queue on an advisory lock so two inserts never compute the same id.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	// No-op once the transaction has been committed.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, createLockKey); err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO users (` + userColumns + `)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6 FROM users
		RETURNING ` + userColumns
	out, err := scanUser(tx.QueryRowContext(ctx, q,
		u.Firstname,
		u.Lastname,
		u.Nick,
		u.Pass,
		nullTime(u.CreatedAt),
		nullTime(u.UpdatedAt),
	))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every column except id. A missing row is reported as nil without error.
func (r *UserPostgres) Update(ctx context.Context, u *model.User, id int64) (*model.User, error) {
	const q = `
		UPDATE users
		SET firstname = $1, lastname = $2, nick = $3, pass = $4, created_at = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.Firstname,
		u.Lastname,
		u.Nick,
		u.Pass,
		nullTime(u.CreatedAt),
		nullTime(u.UpdatedAt),
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Delete removes a user by id. It does not return an error if the row does not exist.
func (r *UserPostgres) Delete(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM users WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Ping reports whether the database is reachable.
func (r *UserPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
