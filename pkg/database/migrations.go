package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"gridbench/pkg/logger"
)

// Migrator применяет goose-миграции из встроенной файловой системы
type Migrator struct {
	provider *goose.Provider
}

// NewMigrator создаёт мигратор. fsys должен содержать SQL-файлы в корне.
func NewMigrator(db *sql.DB, dialect goose.Dialect, fsys fs.FS) (*Migrator, error) {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return &Migrator{provider: p}, nil
}

// Up применяет все новые миграции и возвращает их количество
func (m *Migrator) Up(ctx context.Context) (int, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Log.Info("Migrations applied", "count", len(results))
	return len(results), nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	if _, err := m.provider.Down(ctx); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Version текущая версия схемы
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

// MigratePostgres применяет миграции к пулу pgx через database/sql обёртку
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	m, err := NewMigrator(db, goose.DialectPostgres, fsys)
	if err != nil {
		return err
	}
	_, err = m.Up(ctx)
	return err
}

// MigrateSQLite применяет миграции к SQLite
func MigrateSQLite(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	m, err := NewMigrator(db, goose.DialectSQLite3, fsys)
	if err != nil {
		return err
	}
	_, err = m.Up(ctx)
	return err
}
