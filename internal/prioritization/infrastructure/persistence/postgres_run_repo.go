package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRunRepository stores analysis runs in PostgreSQL. Integer lists
// map onto BIGINT[] columns.
type PostgresRunRepository struct {
	conn database.Connection
}

// NewPostgresRunRepository creates a new repository.
func NewPostgresRunRepository(conn database.Connection) *PostgresRunRepository {
	return &PostgresRunRepository{conn: conn}
}

// Save inserts a run.
func (r *PostgresRunRepository) Save(ctx context.Context, run *analysis.Run) error {
	query := `
		INSERT INTO analysis_runs (id, strategy, task_count, cycle_detected, cycle_path, top_task_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.conn.Exec(ctx, query,
		run.ID(),
		run.Strategy(),
		run.TaskCount(),
		run.CycleDetected(),
		pq.Array(toInt64s(run.CyclePath())),
		pq.Array(toInt64s(run.TopTaskIDs())),
		run.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// FindByID loads one run.
func (r *PostgresRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*analysis.Run, error) {
	query := `
		SELECT id, strategy, task_count, cycle_path, top_task_ids, created_at
		FROM analysis_runs
		WHERE id = $1
	`
	run, err := scanPostgresRun(r.conn.QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return nil, analysis.ErrRunNotFound
	}
	return run, err
}

// ListRecent returns up to limit runs, newest first.
func (r *PostgresRunRepository) ListRecent(ctx context.Context, limit int) ([]*analysis.Run, error) {
	query := `
		SELECT id, strategy, task_count, cycle_path, top_task_ids, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*analysis.Run{}
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func scanPostgresRun(row database.Row) (*analysis.Run, error) {
	var (
		id         uuid.UUID
		strategy   string
		taskCount  int
		cyclePath  pq.Int64Array
		topTaskIDs pq.Int64Array
		createdAt  time.Time
	)
	if err := row.Scan(&id, &strategy, &taskCount, &cyclePath, &topTaskIDs, &createdAt); err != nil {
		return nil, err
	}
	return analysis.RehydrateRun(id, strategy, taskCount, toInts(cyclePath), toInts(topTaskIDs), createdAt), nil
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func toInts(ids []int64) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
