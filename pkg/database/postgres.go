// Package database открывает хранилища истории прогонов: PostgreSQL через
// pgxpool и SQLite через database/sql, и применяет к ним goose-миграции.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gridbench/pkg/config"
	"gridbench/pkg/logger"
)

// DB то подмножество pgxpool.Pool, которое нужно репозиторию;
// в тестах его реализует pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// OpenPostgres открывает пул и не возвращает его, пока база не ответит на ping.
func OpenPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	applyPoolLimits(pc, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := HealthCheck(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Log.Info("Run history stored in PostgreSQL",
		"addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"database", cfg.Database,
		"max_conns", pc.MaxConns,
	)
	return pool, nil
}

// applyPoolLimits переносит лимиты database/sql-стиля на pgxpool.
// Нулевые значения оставляют настройки pgx по умолчанию.
func applyPoolLimits(pc *pgxpool.Config, cfg *config.DatabaseConfig) {
	pc.ConnConfig.ConnectTimeout = connectTimeout
	if n := cfg.MaxOpenConns; n > 0 {
		pc.MaxConns = int32(n)
	}
	if n := cfg.MaxIdleConns; n > 0 {
		pc.MinConns = int32(min(n, int(pc.MaxConns)))
	}
	if d := cfg.ConnMaxLifetime; d > 0 {
		pc.MaxConnLifetime = d
	}
	if d := cfg.ConnMaxIdleTime; d > 0 {
		pc.MaxConnIdleTime = d
	}
}

// HealthCheck выполняет SELECT 1, ожидая ответа не дольше pingTimeout.
func HealthCheck(ctx context.Context, db DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var one int
	if err := db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
