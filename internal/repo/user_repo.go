package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-users/internal/model/user"
)

const userColumns = `id, email, hashed_password, full_name, is_active, is_superuser`

const (
	queryInsertUser = `
INSERT INTO users (email, hashed_password, full_name, is_active, is_superuser)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

	queryUpdateUser = `
UPDATE users
SET email           = COALESCE($2, email),
    hashed_password = COALESCE($3, hashed_password),
    full_name       = CASE WHEN $7 THEN NULL ELSE COALESCE($4, full_name) END,
    is_active       = COALESCE($5, is_active),
    is_superuser    = COALESCE($6, is_superuser)
WHERE id = $1
RETURNING ` + userColumns

	queryFindUserByID    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	queryFindUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	queryExistsByID      = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	queryExistsByEmail   = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	queryListUsers       = `SELECT ` + userColumns + ` FROM users WHERE id > $1 ORDER BY id LIMIT $2`
	queryDeleteUser      = `DELETE FROM users WHERE id = $1`
)

type UserRepository struct {
	DB
}

func NewUserRepository(pool connectionPool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.IsActive,
		&u.IsSuperuser,
	)
	if err != nil {
		return user.User{}, classify(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (user.User, error) {
	if u.Email == "" || u.HashedPassword == "" {
		return user.User{}, errors.New("failed to create user: email and password hash must be set")
	}

	createLogic := func() (user.User, error) {
		created, err := scanUser(r.pool.QueryRow(ctx, queryInsertUser,
			u.Email, u.HashedPassword, u.FullName, u.IsActive, u.IsSuperuser))
		if err != nil {
			return user.User{}, fmt.Errorf("failed to insert user: %w", err)
		}
		return created, nil
	}

	return WithRetry[user.User](createLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func (r *UserRepository) Update(ctx context.Context, id int64, upd *user.Update,
) (user.User, error) {
	if upd.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	updateLogic := func() (user.User, error) {
		updated, err := scanUser(r.pool.QueryRow(ctx, queryUpdateUser,
			id, upd.Email, upd.HashedPassword, upd.FullName, upd.IsActive, upd.IsSuperuser,
			upd.ClearFullName))
		if err != nil {
			return user.User{}, fmt.Errorf("failed to update user %d: %w", id, err)
		}
		return updated, nil
	}

	return WithRetry[user.User](updateLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// nolint: dupl // same shape, different key
func (r *UserRepository) FindByID(ctx context.Context, id int64) (user.User, error) {
	findByIDLogic := func() (user.User, error) {
		u, err := scanUser(r.pool.QueryRow(ctx, queryFindUserByID, id))
		if err != nil {
			return user.User{}, fmt.Errorf("failed to find user by ID %d: %w", id, err)
		}
		return u, nil
	}

	return WithRetry[user.User](findByIDLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// nolint: dupl // same shape, different key
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user.User, error) {
	findByEmailLogic := func() (user.User, error) {
		u, err := scanUser(r.pool.QueryRow(ctx, queryFindUserByEmail, email))
		if err != nil {
			return user.User{}, fmt.Errorf("failed to find user by email: %w", err)
		}
		return u, nil
	}

	return WithRetry[user.User](findByEmailLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, queryExistsByID, id)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, queryExistsByEmail, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, key any) (bool, error) {
	existsLogic := func() (bool, error) {
		var exists bool
		if err := r.pool.QueryRow(ctx, query, key).Scan(&exists); err != nil {
			return false, fmt.Errorf("failed to check if user exists in DB: %w", err)
		}
		return exists, nil
	}

	return WithRetry[bool](existsLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// List returns up to limit users with id greater than skipID, ordered by id.
func (r *UserRepository) List(ctx context.Context, skipID int64, limit int,
) ([]user.User, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("failed to list users: limit must be positive, got %d", limit)
	}

	listLogic := func() ([]user.User, error) {
		rows, err := r.pool.Query(ctx, queryListUsers, skipID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		defer rows.Close()

		users := make([]user.User, 0, limit)
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan user: %w", err)
			}
			users = append(users, u)
		}
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		return users, nil
	}

	return WithRetry[[]user.User](listLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// Delete reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleteLogic := func(ctx context.Context, tx connectionPool) (any, error) {
		tag, err := tx.Exec(ctx, queryDeleteUser, id)
		if err != nil {
			return false, fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		return tag.RowsAffected() > 0, nil
	}

	deleteWithTX := func() (bool, error) {
		return WithTX[bool](ctx, r.pool, r.log, deleteLogic)
	}

	deleted, err := WithRetry[bool](deleteWithTX, 0)
	if err != nil {
		return false, err //nolint: wrapcheck // error from wrapped function
	}
	if !deleted {
		r.log.LogAttrs(ctx, slog.LevelDebug, "nothing to delete", slog.Int64("user_id", id))
	}
	return deleted, nil
}
