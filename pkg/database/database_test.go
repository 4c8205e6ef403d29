package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbench/pkg/config"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestInTx_Commit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO search_runs").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := InTx(context.Background(), mock, func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(), "INSERT INTO search_runs (id) VALUES ($1)", "run-1")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	expected := errors.New("insert failed")
	err := InTx(context.Background(), mock, func(pgx.Tx) error { return expected })

	assert.ErrorIs(t, err, expected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = InTx(context.Background(), mock, func(pgx.Tx) error { panic("unexpected") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginFails(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := InTx(context.Background(), mock, func(pgx.Tx) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "begin tx")
	assert.False(t, called)
}

func TestInTx_CommitFails(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := InTx(context.Background(), mock, func(pgx.Tx) error { return nil })

	assert.ErrorContains(t, err, "commit tx: serialization failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(pgxmock.NewRows([]string{"one"}).AddRow(1))

	assert.NoError(t, HealthCheck(context.Background(), mock))

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("down"))
	assert.ErrorContains(t, HealthCheck(context.Background(), mock), "health check failed")
}

func TestSQLiteMigrations(t *testing.T) {
	ctx := context.Background()

	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"00001_runs.sql": {Data: []byte(`-- +goose Up
CREATE TABLE runs (id TEXT PRIMARY KEY, name TEXT NOT NULL);

-- +goose Down
DROP TABLE runs;
`)},
	}

	m, err := NewMigrator(db, "sqlite3", fsys)
	require.NoError(t, err)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = db.ExecContext(ctx, "INSERT INTO runs (id, name) VALUES ('a', 'first')")
	require.NoError(t, err)

	// повторный прогон ничего не применяет
	applied, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	require.NoError(t, m.Down(ctx))
	_, err = db.ExecContext(ctx, "SELECT 1 FROM runs")
	assert.Error(t, err)
}

func TestOpenSQLite_File(t *testing.T) {
	path := t.TempDir() + "/runs.db"

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestApplyPoolLimits(t *testing.T) {
	pc, err := pgxpool.ParseConfig("host=localhost port=5432 user=u dbname=gridbench")
	require.NoError(t, err)

	applyPoolLimits(pc, &config.DatabaseConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Minute,
	})

	assert.Equal(t, int32(4), pc.MaxConns)
	assert.Equal(t, int32(4), pc.MinConns)
	assert.Equal(t, time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, connectTimeout, pc.ConnConfig.ConnectTimeout)
}
