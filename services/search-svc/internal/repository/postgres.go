package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"gridbench/pkg/database"
	"gridbench/pkg/domain"
	"gridbench/pkg/telemetry"
)

// PostgresRepository PostgreSQL реализация
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository создаёт репозиторий поверх пула или мока
func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const insertRunQuery = `
		INSERT INTO search_runs (
			id, batch_id, kind, label, grid_rows, grid_cols,
			start_row, start_col, goal_row, goal_col,
			seed, density, max_nodes, beam_widths, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

const insertResultQuery = `
		INSERT INTO search_results (
			run_id, seq, algorithm, beam_width, cost,
			nodes_processed, limit_reached, elapsed_ns, path
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

func (r *PostgresRepository) Save(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Save")
	defer span.End()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertRunQuery,
			run.ID,
			nullableUUID(run.BatchID),
			string(run.Kind),
			run.Label,
			run.Bounds.Rows,
			run.Bounds.Cols,
			run.Start.Row,
			run.Start.Col,
			run.Goal.Row,
			run.Goal.Col,
			run.Seed,
			run.Density,
			run.MaxNodes,
			pq.Array(toInt64s(run.BeamWidths)),
			run.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i, res := range run.Results {
			if _, err := tx.Exec(ctx, insertResultQuery,
				run.ID,
				i,
				res.Algorithm,
				res.BeamWidth,
				res.Cost,
				res.NodesProcessed,
				res.LimitReached,
				res.Elapsed.Nanoseconds(),
				pq.Array(flattenPath(res.Path)),
			); err != nil {
				return fmt.Errorf("failed to insert result %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}
	return nil
}

const runColumns = `
			id, COALESCE(batch_id::text, ''), kind, label, grid_rows, grid_cols,
			start_row, start_col, goal_row, goal_col,
			seed, density, max_nodes, beam_widths, created_at`

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Get")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRunNotFound
	}

	run, err := scanRun(r.db.QueryRow(ctx, `SELECT`+runColumns+` FROM search_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT algorithm, beam_width, cost, nodes_processed, limit_reached, elapsed_ns, path
		FROM search_results
		WHERE run_id = $1
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		res := &domain.SearchResult{}
		var elapsed int64
		var path []int64
		if err := rows.Scan(
			&res.Algorithm,
			&res.BeamWidth,
			&res.Cost,
			&res.NodesProcessed,
			&res.LimitReached,
			&elapsed,
			&path,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Elapsed = time.Duration(elapsed)
		res.Path = expandPath(path)
		run.Results = append(run.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return run, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Run, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.List")
	defer span.End()

	filter = filter.Normalize()
	where, args := buildWhereClause(filter)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM search_runs WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	selectQuery := fmt.Sprintf(`SELECT%s
		FROM search_runs
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, runColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
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

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Delete")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return ErrRunNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM search_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Close закрывает пул соединений
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, r.db)
}

func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}

func buildWhereClause(f ListFilter) (string, []any) {
	conditions := []string{"TRUE"}
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.BatchID != "" {
		add("batch_id = $%d", f.BatchID)
	}
	if f.Algorithm != "" {
		add("EXISTS (SELECT 1 FROM search_results sr WHERE sr.run_id = search_runs.id AND sr.algorithm = $%d)", f.Algorithm)
	}
	if f.Since != nil {
		add("created_at >= $%d", *f.Since)
	}

	return strings.Join(conditions, " AND "), args
}

func scanRun(row pgx.Row) (*Run, error) {
	run := &Run{}
	var kind string
	var widths []int64

	err := row.Scan(
		&run.ID,
		&run.BatchID,
		&kind,
		&run.Label,
		&run.Bounds.Rows,
		&run.Bounds.Cols,
		&run.Start.Row,
		&run.Start.Col,
		&run.Goal.Row,
		&run.Goal.Col,
		&run.Seed,
		&run.Density,
		&run.MaxNodes,
		&widths,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Kind = RunKind(kind)
	run.BeamWidths = toInts(widths)
	return run, nil
}

func nullableUUID(s string) any {
	if s == "" {
		return nil
	}
	return s
}
