package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studiodesk/internal/conflict"
	"studiodesk/internal/models"
)

const holidayColumns = `id, date, type, start_time, end_time, description, created_at`

// CreateHolidayChecked stores a holiday unless it collides with an existing
// one on the same date. Check and insert share one write transaction.
func (db *DB) CreateHolidayChecked(ctx context.Context, h *models.Holiday) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := holidaysByDate(ctx, tx, h.Date)
		if err != nil {
			return err
		}
		if cerr := conflict.ResolveHoliday(h.Interval(), h.Type, existing); cerr != nil {
			return cerr
		}

		h.CreatedAt = time.Now()
		_, err = tx.ExecContext(ctx, `INSERT INTO holidays (`+holidayColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Date, h.Type, h.StartTime, h.EndTime, h.Description, h.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert holiday in tx: %w", err)
		}
		return nil
	})
}

// ListHolidays returns holidays ordered by date, optionally for one date.
func (db *DB) ListHolidays(ctx context.Context, date string) ([]*models.Holiday, error) {
	if date != "" {
		return holidaysByDate(ctx, db, date)
	}
	return queryHolidays(ctx, db, `SELECT `+holidayColumns+` FROM holidays ORDER BY date ASC, start_time ASC`)
}

func (db *DB) GetHoliday(ctx context.Context, id string) (*models.Holiday, error) {
	row := db.QueryRowContext(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE id = ?`, id)
	h, err := scanHoliday(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get holiday: %w", notFound(err))
	}
	return h, nil
}

func (db *DB) DeleteHoliday(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePastHolidays removes holidays dated before today (YYYY-MM-DD).
// Running it again with the same argument removes nothing.
func (db *DB) DeletePastHolidays(ctx context.Context, today string) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM holidays WHERE date < ?`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to delete past holidays: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func holidaysByDate(ctx context.Context, q queryer, date string) ([]*models.Holiday, error) {
	return queryHolidays(ctx, q,
		`SELECT `+holidayColumns+` FROM holidays WHERE date = ? ORDER BY start_time ASC`, date)
}

func queryHolidays(ctx context.Context, q queryer, query string, args ...any) ([]*models.Holiday, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	holidays := []*models.Holiday{}
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func scanHoliday(r rowScanner) (*models.Holiday, error) {
	var h models.Holiday
	if err := r.Scan(&h.ID, &h.Date, &h.Type, &h.StartTime, &h.EndTime, &h.Description, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}
