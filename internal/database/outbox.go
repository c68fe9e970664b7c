package database

import (
	"context"
	"fmt"
	"time"

	"studiodesk/internal/models"
)

const outboxColumns = `id, task_type, booking_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

func insertOutboxTasks(ctx context.Context, q queryer, bookingID string, tasks []*models.OutboxTask) error {
	for _, task := range tasks {
		task.BookingID = bookingID
		if err := insertOutboxTask(ctx, q, task); err != nil {
			return err
		}
	}
	return nil
}

func insertOutboxTask(ctx context.Context, q queryer, task *models.OutboxTask) error {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Payload == "" {
		task.Payload = "{}"
	}
	now := time.Now()
	result, err := q.ExecContext(ctx, `INSERT INTO outbox (task_type, booking_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.TaskType,
		task.BookingID,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	return nil
}

func (db *DB) CreateOutboxTask(ctx context.Context, task *models.OutboxTask) error {
	return insertOutboxTask(ctx, db, task)
}

func (db *DB) GetOutboxTask(ctx context.Context, id int64) (*models.OutboxTask, error) {
	t, err := scanOutboxTask(db.QueryRowContext(ctx, `SELECT `+outboxColumns+` FROM outbox WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox task: %w", notFound(err))
	}
	return t, nil
}

// GetPendingOutboxTasks returns tasks that are due, oldest first.
func (db *DB) GetPendingOutboxTasks(ctx context.Context, limit int) ([]*models.OutboxTask, error) {
	return db.queryOutbox(ctx, `SELECT `+outboxColumns+` FROM outbox
              WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC, id ASC LIMIT ?`,
		models.TaskStatusPending, models.TaskStatusRetry, time.Now(), limit)
}

func (db *DB) GetFailedOutboxTasks(ctx context.Context) ([]*models.OutboxTask, error) {
	return db.queryOutbox(ctx, `SELECT `+outboxColumns+` FROM outbox WHERE status = ? ORDER BY created_at DESC`,
		models.TaskStatusFailed)
}

// ClaimOutboxTask marks a due task as processing. It reports false when
// another worker got there first.
func (db *DB) ClaimOutboxTask(ctx context.Context, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE outbox SET status = ? WHERE id = ? AND status IN (?, ?)`,
		models.TaskStatusProcessing, id, models.TaskStatusPending, models.TaskStatusRetry)
	if err != nil {
		return false, fmt.Errorf("failed to claim outbox task: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (db *DB) UpdateOutboxTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []any
	now := time.Now()

	var lastErr *string
	if errMsg != "" {
		lastErr = &errMsg
	}

	switch status {
	case models.TaskStatusRetry:
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []any{status, lastErr, nextRetryAt, id}
	case models.TaskStatusCompleted, models.TaskStatusFailed:
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []any{status, lastErr, nextRetryAt, now, id}
	default:
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []any{status, lastErr, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update outbox task status: %w", err)
	}
	return nil
}

// ResetStuckOutboxTasks returns tasks left in processing by a crashed worker
// to the queue.
func (db *DB) ResetStuckOutboxTasks(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, `UPDATE outbox SET status = ? WHERE status = ?`,
		models.TaskStatusRetry, models.TaskStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to reset outbox tasks: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func (db *DB) queryOutbox(ctx context.Context, query string, args ...any) ([]*models.OutboxTask, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	tasks := []*models.OutboxTask{}
	for rows.Next() {
		t, err := scanOutboxTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanOutboxTask(r rowScanner) (*models.OutboxTask, error) {
	var t models.OutboxTask
	err := r.Scan(&t.ID, &t.TaskType, &t.BookingID, &t.Payload, &t.Status, &t.RetryCount,
		&t.LastError, &t.CreatedAt, &t.ProcessedAt, &t.NextRetryAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
