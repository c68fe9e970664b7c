package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studiodesk/internal/models"
)

// NextApprovedBooking returns the first approved booking starting after
// nowTime on today, or on any later date.
func (db *DB) NextApprovedBooking(ctx context.Context, today, nowTime string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` `+bookingFrom+`
		WHERE b.status = ? AND ((b.date = ? AND b.start_time > ?) OR b.date > ?)
		ORDER BY b.date ASC, b.start_time ASC LIMIT 1`,
		models.StatusApproved, today, nowTime, today)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return b, nil
}

// CountActiveBookings counts approved bookings running right now plus those
// earlier this month.
func (db *DB) CountActiveBookings(ctx context.Context, monthStart, today, nowTime string) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM bookings
		WHERE status = ? AND (
			(date = ? AND start_time <= ? AND end_time > ?) OR
			(date >= ? AND date < ?))`,
		models.StatusApproved, today, nowTime, nowTime, monthStart, today)
}

// CountBookingsBetween counts bookings dated from..to inclusive. An empty
// status counts every status.
func (db *DB) CountBookingsBetween(ctx context.Context, status, from, to string) (int64, error) {
	if status == "" {
		return db.count(ctx, `SELECT COUNT(*) FROM bookings WHERE date >= ? AND date <= ?`, from, to)
	}
	return db.count(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ? AND date >= ? AND date <= ?`, status, from, to)
}

// CountBookingsAfter counts bookings with status dated strictly after date.
func (db *DB) CountBookingsAfter(ctx context.Context, status, date string) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ? AND date > ?`, status, date)
}

// CountBookings counts bookings with status, or all bookings for "".
func (db *DB) CountBookings(ctx context.Context, status string) (int64, error) {
	if status == "" {
		return db.count(ctx, `SELECT COUNT(*) FROM bookings`)
	}
	return db.count(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ?`, status)
}

func (db *DB) CountCustomersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM customers WHERE created_at >= ? AND created_at <= ?`, from, to)
}

// BookingsPerMonth groups bookings dated on or after fromDate by YYYY-MM.
func (db *DB) BookingsPerMonth(ctx context.Context, fromDate string) (map[string]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT substr(date, 1, 7) AS month, COUNT(*) FROM bookings
		WHERE date >= ? GROUP BY month`, fromDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings per month: %w", err)
	}
	return scanCounts(rows)
}

func (db *DB) BookingsPerPackage(ctx context.Context) (map[string]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT package_type, COUNT(*) FROM bookings GROUP BY package_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings per package: %w", err)
	}
	return scanCounts(rows)
}

func (db *DB) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func scanCounts(rows *sql.Rows) (map[string]int64, error) {
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}
