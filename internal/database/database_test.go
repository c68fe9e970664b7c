package database

import (
	"context"
	"path/filepath"
	"testing"

	"studiodesk/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "studio.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newBooking(date, start, end string) *models.Booking {
	return &models.Booking{
		ID:          uuid.NewString(),
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		PackageType: "P-basic",
	}
}

func newCustomer(email string) *models.Customer {
	return &models.Customer{Name: "Nimali Perera", Email: email, Phone: "0771234567"}
}

func mustCreateBooking(t *testing.T, db *DB, b *models.Booking) *models.Booking {
	t.Helper()
	require.NoError(t, db.CreateBookingChecked(context.Background(), b, newCustomer("nimali@example.com"), nil))
	return b
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "studio.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestNewDB_InMemory(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	mustCreateBooking(t, db, newBooking("2025-03-01", "10:00", "11:00"))
	list, err := db.ListBookings(context.Background(), models.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnsureColumn(t *testing.T) {
	db := setupTestDB(t)

	// the column already exists after migrations
	require.NoError(t, db.ensureColumn("bookings", "google_event_id", "TEXT NOT NULL DEFAULT ''"))
	assert.Error(t, db.ensureColumn("no_such_table", "x", "TEXT"))
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestDB_ClosedErrors(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "closed.db"), &logger)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()

	_, err = db.ListBookings(ctx, models.BookingFilter{})
	assert.Error(t, err)

	err = db.CreateBookingChecked(ctx, newBooking("2025-03-01", "10:00", "11:00"), newCustomer("a@b.co"), nil)
	assert.Error(t, err)

	_, err = db.ListHolidays(ctx, "")
	assert.Error(t, err)

	err = db.CreateOutboxTask(ctx, &models.OutboxTask{TaskType: models.TaskStaffNotify})
	assert.Error(t, err)

	_, err = db.CountBookings(ctx, "")
	assert.Error(t, err)
}
