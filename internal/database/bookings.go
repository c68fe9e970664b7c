package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"studiodesk/internal/conflict"
	"studiodesk/internal/models"
)

const bookingColumns = `b.id, b.customer_id, c.name, c.email, c.phone,
	b.date, b.start_time, b.end_time, b.package_type, b.note, b.status,
	b.google_event_id, b.created_at, b.updated_at, b.version`

const bookingFrom = `FROM bookings b JOIN customers c ON c.id = b.customer_id`

// CreateBookingChecked stores a new booking after running the conflict
// rules against the holidays and bookings of its date. The read, the check
// and the inserts share one write transaction. The customer is matched by
// email and refreshed, or created. Outbox tasks are stored in the same
// transaction with their booking id filled in.
func (db *DB) CreateBookingChecked(
	ctx context.Context,
	booking *models.Booking,
	customer *models.Customer,
	tasks []*models.OutboxTask,
) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		holidays, err := holidaysByDate(ctx, tx, booking.Date)
		if err != nil {
			return err
		}
		existing, err := activeBookingsByDate(ctx, tx, booking.Date)
		if err != nil {
			return err
		}
		if cerr := conflict.ResolveBooking(booking.Interval(), holidays, existing); cerr != nil {
			return cerr
		}

		if err := upsertCustomer(ctx, tx, customer); err != nil {
			return err
		}

		now := time.Now()
		booking.CustomerID = customer.ID
		booking.CustomerName = customer.Name
		booking.CustomerEmail = customer.Email
		booking.CustomerPhone = customer.Phone
		booking.Status = models.StatusPending
		booking.CreatedAt = now
		booking.UpdatedAt = now
		booking.Version = 1

		_, err = tx.ExecContext(ctx, `INSERT INTO bookings (
				id, customer_id, date, start_time, end_time, package_type,
				note, status, google_event_id, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID,
			booking.CustomerID,
			booking.Date,
			booking.StartTime,
			booking.EndTime,
			booking.PackageType,
			booking.Note,
			booking.Status,
			booking.GoogleEventID,
			now,
			now,
			booking.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking in tx: %w", err)
		}

		return insertOutboxTasks(ctx, tx, booking.ID, tasks)
	})
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` `+bookingFrom+` WHERE b.id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", notFound(err))
	}
	return b, nil
}

// ListBookings returns bookings ordered by date and start time.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		where []string
		args  []any
	)
	if filter.Date != "" {
		where = append(where, "b.date = ?")
		args = append(args, filter.Date)
	}
	if filter.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + bookingColumns + ` ` + bookingFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.date ASC, b.start_time ASC"

	return queryBookings(ctx, db, query, args...)
}

// ListBookingsInRange returns bookings dated from..to inclusive.
func (db *DB) ListBookingsInRange(ctx context.Context, from, to string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingFrom + `
		WHERE b.date >= ? AND b.date <= ? ORDER BY b.date ASC, b.start_time ASC`
	return queryBookings(ctx, db, query, from, to)
}

// UpdateBookingStatusWithVersion moves a booking to status if it is still at
// fromVersion, and stores tasks in the same transaction.
func (db *DB) UpdateBookingStatusWithVersion(
	ctx context.Context,
	id string,
	fromVersion int64,
	status string,
	tasks []*models.OutboxTask,
) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
			status, time.Now(), id, fromVersion)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrConcurrentModification
		}
		return insertOutboxTasks(ctx, tx, id, tasks)
	})
}

// SetBookingEventID records the calendar event created for a booking.
func (db *DB) SetBookingEventID(ctx context.Context, id, eventID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET google_event_id = ?, updated_at = ? WHERE id = ?`,
		eventID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set booking event id: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBooking removes a booking and stores tasks in the same transaction.
func (db *DB) DeleteBooking(ctx context.Context, id string, tasks []*models.OutboxTask) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrNotFound
		}
		return insertOutboxTasks(ctx, tx, id, tasks)
	})
}

func activeBookingsByDate(ctx context.Context, q queryer, date string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingFrom + `
		WHERE b.date = ? AND b.status != ? ORDER BY b.start_time ASC`
	return queryBookings(ctx, q, query, date, models.StatusDisapproved)
}

func queryBookings(ctx context.Context, q queryer, query string, args ...any) ([]*models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(r rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := r.Scan(
		&b.ID, &b.CustomerID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.Date, &b.StartTime, &b.EndTime, &b.PackageType, &b.Note, &b.Status,
		&b.GoogleEventID, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
