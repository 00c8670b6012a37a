package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/dbmanager"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/pgcontainer"
)

const testDefaultTimeout = 5 * time.Second

var (
	getDSN       func() string
	getDBManager func() *dbmanager.DBManager
)

func TestMain(m *testing.M) {
	log := slog.Default()
	code, err := runMain(m, log)
	if err != nil {
		log.ErrorContext(context.TODO(),
			"unexpected test failure",
			slog.Any(model.KeyLoggerError, err),
		)
	}
	os.Exit(code)
}

func runMain(m *testing.M, log *slog.Logger) (int, error) {
	pg := pgcontainer.New(log)
	getDSN = func() string {
		return pg.GetDSN()
	}
	err := pg.RunContainer()
	defer pg.Close()
	if err != nil {
		return 1, fmt.Errorf("failed to run docker container: %w", err)
	}

	if err = initGetDBManager(log); err != nil {
		return 1, fmt.Errorf("failed to init test DB: %w", err)
	}

	db := getDBManager()
	defer db.Close()

	exitCode := m.Run()
	return exitCode, nil
}

func initGetDBManager(log *slog.Logger) error {
	dsn := getDSN()
	db := dbmanager.New(dsn, log)

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx).Ping(ctx).ApplyMigrations(ctx)
	if err := db.Error(); err != nil {
		return fmt.Errorf("failed to prepare test DB using dsn %s: %w", dsn, err)
	}

	getDBManager = func() *dbmanager.DBManager {
		return db
	}
	return nil
}

func loadFixtureFile(conn *pgxpool.Pool, filepath string) error {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read fixture file: %w", err)
	}

	queries := strings.Split(string(content), ";")

	for _, rawQuery := range queries {
		query := strings.TrimSpace(rawQuery)
		if query == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
		_, err := conn.Exec(ctx, query)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to execute query [%s]: %w", query, err)
		}
	}

	return nil
}

func setupRepo[T any](t *testing.T,
	repoConstructor func(pool connectionPool, log *slog.Logger) T,
) (T, context.Context, context.CancelFunc, *pgxpool.Pool) {
	t.Helper()

	db := getDBManager()
	pool, err := db.GetPool(context.Background())
	require.NoError(t, err)
	require.NoError(t, loadFixtureFile(pool, "./fixtures/users.sql"))
	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	return repoConstructor(pool, slog.Default()), ctx, cancel, pool
}

func TestWithRetry(t *testing.T) {
	origDelay := retryDelay
	retryDelay = func(int) time.Duration { return time.Millisecond }
	defer func() { retryDelay = origDelay }()

	retryable := &pgconn.PgError{Code: pgerrcode.ConnectionFailure}
	permanent := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"success", []error{nil}, 1, false},
		{"retry then success", []error{retryable, retryable, nil}, 3, false},
		{"permanent error", []error{permanent}, 1, true},
		{"retries exhausted", []error{retryable, retryable, retryable, retryable}, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := WithRetry[int](func() (int, error) {
				err := tt.errs[calls]
				calls++
				if err != nil {
					return 0, err
				}
				return 42, nil
			}, 0)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 42, got)
		})
	}
}

func TestClassify(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	other := errors.New("boom")

	assert.ErrorIs(t, classify(pgx.ErrNoRows), serviceerrs.ErrNotFound)
	assert.ErrorIs(t, classify(pgx.ErrNoRows), pgx.ErrNoRows)
	assert.ErrorIs(t, classify(unique), serviceerrs.ErrAlreadyExists)
	assert.Equal(t, other, classify(other))
}

func TestWithTX_rollback_on_error(t *testing.T) {
	_, ctx, cancel, pool := setupRepo(t, NewUserRepository)
	defer cancel()

	wantErr := errors.New("abort")
	_, err := WithTX[struct{}](ctx, pool, slog.Default(),
		func(ctx context.Context, tx connectionPool) (any, error) {
			if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, wantErr
		})
	require.ErrorIs(t, err, wantErr)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 3, count)
}
