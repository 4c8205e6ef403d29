package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gridbench/pkg/domain"
	"gridbench/pkg/telemetry"
)

// SQLiteRepository реализация на SQLite для локальных прогонов без сервера БД.
// Массивы хранятся как JSON, время как unix-наносекунды.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository создаёт репозиторий поверх открытой базы
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, run *Run) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.Save")
	defer span.End()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	widths, err := json.Marshal(nonNilInts(run.BeamWidths))
	if err != nil {
		return fmt.Errorf("failed to encode beam widths: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO search_runs (
			id, batch_id, kind, label, grid_rows, grid_cols,
			start_row, start_col, goal_row, goal_col,
			seed, density, max_nodes, beam_widths, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.BatchID, string(run.Kind), run.Label,
		run.Bounds.Rows, run.Bounds.Cols,
		run.Start.Row, run.Start.Col, run.Goal.Row, run.Goal.Col,
		run.Seed, run.Density, run.MaxNodes, string(widths), run.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, res := range run.Results {
		var path []byte
		path, err = json.Marshal(flattenPath(res.Path))
		if err != nil {
			return fmt.Errorf("failed to encode path: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO search_results (
				run_id, seq, algorithm, beam_width, cost,
				nodes_processed, limit_reached, elapsed_ns, path
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, res.Algorithm, res.BeamWidth, res.Cost,
			res.NodesProcessed, res.LimitReached, res.Elapsed.Nanoseconds(), string(path),
		); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const sqliteRunColumns = `id, batch_id, kind, label, grid_rows, grid_cols,
		start_row, start_col, goal_row, goal_col,
		seed, density, max_nodes, beam_widths, created_at`

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.Get")
	defer span.End()

	run, err := scanSQLiteRun(r.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM search_runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT algorithm, beam_width, cost, nodes_processed, limit_reached, elapsed_ns, path
		FROM search_results
		WHERE run_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		res := &domain.SearchResult{}
		var elapsed int64
		var path string
		if err := rows.Scan(&res.Algorithm, &res.BeamWidth, &res.Cost,
			&res.NodesProcessed, &res.LimitReached, &elapsed, &path); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		var flat []int64
		if err := json.Unmarshal([]byte(path), &flat); err != nil {
			return nil, fmt.Errorf("failed to decode path: %w", err)
		}
		res.Elapsed = time.Duration(elapsed)
		res.Path = expandPath(flat)
		run.Results = append(run.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return run, nil
}

func (r *SQLiteRepository) List(ctx context.Context, filter ListFilter) ([]*Run, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.List")
	defer span.End()

	filter = filter.Normalize()

	conditions := []string{"1 = 1"}
	var args []any
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.BatchID != "" {
		conditions = append(conditions, "batch_id = ?")
		args = append(args, filter.BatchID)
	}
	if filter.Algorithm != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM search_results sr WHERE sr.run_id = search_runs.id AND sr.algorithm = ?)")
		args = append(args, filter.Algorithm)
	}
	if filter.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_runs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteRunColumns+`
		FROM search_runs
		WHERE `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}
	return runs, total, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM search_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Close закрывает базу
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var kind, widths string
	var created int64

	if err := row.Scan(
		&run.ID, &run.BatchID, &kind, &run.Label,
		&run.Bounds.Rows, &run.Bounds.Cols,
		&run.Start.Row, &run.Start.Col, &run.Goal.Row, &run.Goal.Col,
		&run.Seed, &run.Density, &run.MaxNodes, &widths, &created,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(widths), &run.BeamWidths); err != nil {
		return nil, fmt.Errorf("failed to decode beam widths: %w", err)
	}
	run.Kind = RunKind(kind)
	run.CreatedAt = time.Unix(0, created).UTC()
	return run, nil
}

func nonNilInts(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}
