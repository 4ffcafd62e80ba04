package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// sqliteTimeLayout is fixed width so that created_at sorts as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRunRepository stores analysis runs in the local SQLite file.
// Integer lists are kept as JSON text.
type SQLiteRunRepository struct {
	conn database.Connection
}

// NewSQLiteRunRepository creates a new repository.
func NewSQLiteRunRepository(conn database.Connection) *SQLiteRunRepository {
	return &SQLiteRunRepository{conn: conn}
}

// Save inserts a run.
func (r *SQLiteRunRepository) Save(ctx context.Context, run *analysis.Run) error {
	cyclePath, err := encodeIDs(run.CyclePath())
	if err != nil {
		return err
	}
	topIDs, err := encodeIDs(run.TopTaskIDs())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_runs (id, strategy, task_count, cycle_detected, cycle_path, top_task_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.conn.Exec(ctx, query,
		run.ID().String(),
		run.Strategy(),
		run.TaskCount(),
		boolToInt(run.CycleDetected()),
		cyclePath,
		topIDs,
		run.CreatedAt().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// FindByID loads one run.
func (r *SQLiteRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*analysis.Run, error) {
	query := `
		SELECT id, strategy, task_count, cycle_path, top_task_ids, created_at
		FROM analysis_runs
		WHERE id = ?
	`
	run, err := scanSQLiteRun(r.conn.QueryRow(ctx, query, id.String()))
	if database.IsNoRows(err) {
		return nil, analysis.ErrRunNotFound
	}
	return run, err
}

// ListRecent returns up to limit runs, newest first.
func (r *SQLiteRunRepository) ListRecent(ctx context.Context, limit int) ([]*analysis.Run, error) {
	query := `
		SELECT id, strategy, task_count, cycle_path, top_task_ids, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*analysis.Run{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
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

func scanSQLiteRun(row database.Row) (*analysis.Run, error) {
	var (
		id, strategy, cyclePath, topIDs, createdAt string
		taskCount                                  int
	)
	if err := row.Scan(&id, &strategy, &taskCount, &cyclePath, &topIDs, &createdAt); err != nil {
		return nil, err
	}

	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	created, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	path, err := decodeIDs(cyclePath)
	if err != nil {
		return nil, err
	}
	top, err := decodeIDs(topIDs)
	if err != nil {
		return nil, err
	}

	return analysis.RehydrateRun(runID, strategy, taskCount, path, top, created), nil
}

func encodeIDs(ids []int) (string, error) {
	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeIDs(s string) ([]int, error) {
	var ids []int
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("invalid id list %q: %w", s, err)
	}
	return ids, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
