package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studiodesk/internal/models"

	"github.com/google/uuid"
)

const customerColumns = `id, name, email, phone, created_at, updated_at`

// upsertCustomer matches on email. An existing customer gets the latest
// name and phone; a new one gets an id. c is filled from the stored row.
func upsertCustomer(ctx context.Context, q queryer, c *models.Customer) error {
	now := time.Now()
	existing, err := scanCustomer(q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = ?`, c.Email))

	switch {
	case err == nil:
		_, err = q.ExecContext(ctx, `UPDATE customers SET name = ?, phone = ?, updated_at = ? WHERE id = ?`,
			c.Name, c.Phone, now, existing.ID)
		if err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
		return nil
	case errors.Is(err, sql.ErrNoRows):
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		_, err = q.ExecContext(ctx, `INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to find customer: %w", err)
	}
}

func (db *DB) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	c, err := scanCustomer(db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", notFound(err))
	}
	return c, nil
}

func (db *DB) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	c, err := scanCustomer(db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = ?`, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", notFound(err))
	}
	return c, nil
}

// ListCustomers returns customers, newest first.
func (db *DB) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomer(r rowScanner) (*models.Customer, error) {
	var c models.Customer
	if err := r.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
