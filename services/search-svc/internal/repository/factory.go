package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gridbench/pkg/config"
	"gridbench/pkg/database"
	"gridbench/pkg/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Drivers хранилищ
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Migrations возвращает SQL-миграции для драйвера
func Migrations(driver string) (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations/"+driver)
}

// Open создаёт репозиторий по конфигурации. Пустой драйвер означает память.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverMemory, "":
		return NewMemoryRepository(), nil

	case DriverPostgres, "postgresql":
		return openPostgres(ctx, cfg)

	case DriverSQLite:
		return openSQLite(ctx, cfg)

	default:
		return nil, fmt.Errorf("unsupported repository driver: %s", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	pool, err := database.OpenPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if cfg.AutoMigrate {
		fsys, err := Migrations(DriverPostgres)
		if err == nil {
			err = database.MigratePostgres(ctx, pool, fsys)
		}
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return NewPostgresRepository(pool), nil
}

func openSQLite(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	db, err := database.OpenSQLite(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		fsys, err := Migrations(DriverSQLite)
		if err == nil {
			err = database.MigrateSQLite(ctx, db, fsys)
		}
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Log.Info("Opened SQLite run history", "path", cfg.Database)
	return NewSQLiteRepository(db), nil
}
