package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

// Timestamps are stored as RFC3339 text in UTC; NULL means never.
const timeLayout = time.RFC3339

const (
	taskColumns   = "id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled"
	resultColumns = "task_id, started_at, ended_at, success, error, items_processed"
)

// schedulerStore persists the periodic ingest task and its run log.
type schedulerStore struct {
	db *sql.DB
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// GetTask returns nil and no error when the task is unknown.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	tasks, err := s.queryTasks(ctx, "SELECT "+taskColumns+" FROM scheduled_tasks WHERE id = ?", taskID)
	if err != nil || len(tasks) == 0 {
		return nil, err
	}
	return &tasks[0], nil
}

// ListTasks returns every task ordered by id.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM scheduled_tasks ORDER BY id")
}

// SaveTask upserts a task by id.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name             = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run         = excluded.last_run,
			next_run         = excluded.next_run,
			last_error       = excluded.last_error,
			last_success     = excluded.last_success,
			enabled          = excluded.enabled`,
		task.ID, task.Name, int64(task.Interval/time.Second),
		sqlTime(task.LastRun), sqlTime(task.NextRun),
		sql.NullString{String: task.LastError, Valid: task.LastError != ""},
		sqlTime(task.LastSuccess), task.Enabled)
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task. Its run log is kept until pruned.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM scheduled_tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}

// RecordResult appends one run to the log.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO task_results ("+resultColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		result.TaskID,
		result.StartedAt.UTC().Format(timeLayout),
		result.EndedAt.UTC().Format(timeLayout),
		result.Success,
		sql.NullString{String: result.Error, Valid: result.Error != ""},
		result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("record result of %s: %w", result.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns up to limit runs of a task, newest first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+resultColumns+" FROM task_results WHERE task_id = ? ORDER BY started_at DESC, id DESC LIMIT ?",
		taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("task history of %s: %w", taskID, err)
	}
	defer rows.Close()

	var results []domain.TaskResult
	for rows.Next() {
		var (
			r              domain.TaskResult
			started, ended string
			errMsg         sql.NullString
		)
		if err := rows.Scan(&r.TaskID, &started, &ended, &r.Success, &errMsg, &r.ItemsProcessed); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.EndedAt = parseTime(ended)
		r.Error = errMsg.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneHistory keeps the newest keep runs of every task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM task_results WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rn
				FROM task_results
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune task history: %w", err)
	}
	return nil
}

func (s *schedulerStore) queryTasks(ctx context.Context, query string, args ...any) ([]domain.ScheduledTask, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask
	for rows.Next() {
		var (
			t                                   domain.ScheduledTask
			seconds                             int64
			lastRun, nextRun, lastErr, lastSucc sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &seconds, &lastRun, &nextRun, &lastErr, &lastSucc, &t.Enabled); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Interval = time.Duration(seconds) * time.Second
		t.LastRun = parseTime(lastRun.String)
		t.NextRun = parseTime(nextRun.String)
		t.LastSuccess = parseTime(lastSucc.String)
		t.LastError = lastErr.String
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// sqlTime maps the zero time to NULL.
func sqlTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

// parseTime returns the zero time for empty or malformed values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
