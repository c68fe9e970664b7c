package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"studiodesk/internal/conflict"
	"studiodesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingChecked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := newBooking("2025-03-01", "10:00", "11:00")
	tasks := []*models.OutboxTask{{TaskType: models.TaskEmailBookingCreated}, {TaskType: models.TaskStaffNotify}}
	require.NoError(t, db.CreateBookingChecked(ctx, b, newCustomer("nimali@example.com"), tasks))

	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, int64(1), b.Version)
	assert.NotEmpty(t, b.CustomerID)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nimali Perera", got.CustomerName)
	assert.Equal(t, "nimali@example.com", got.CustomerEmail)
	assert.Equal(t, "10:00", got.StartTime)

	pending, err := db.GetPendingOutboxTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, task := range pending {
		assert.Equal(t, b.ID, task.BookingID)
	}
}

func TestCreateBookingChecked_Conflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("back to back allowed", func(t *testing.T) {
		db := setupTestDB(t)
		mustCreateBooking(t, db, newBooking("2025-03-01", "10:00", "11:00"))
		err := db.CreateBookingChecked(ctx, newBooking("2025-03-01", "11:00", "12:00"), newCustomer("x@example.com"), nil)
		assert.NoError(t, err)
	})

	t.Run("overlap rejected", func(t *testing.T) {
		db := setupTestDB(t)
		existing := mustCreateBooking(t, db, newBooking("2025-03-01", "09:00", "10:30"))

		tasks := []*models.OutboxTask{{TaskType: models.TaskStaffNotify}}
		err := db.CreateBookingChecked(ctx, newBooking("2025-03-01", "10:00", "11:00"), newCustomer("x@example.com"), tasks)

		var cerr *conflict.Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, conflict.ReasonBookingSlotTaken, cerr.Reason)
		assert.Equal(t, existing.ID, cerr.WithID)

		// nothing from the rejected request was stored
		_, err = db.GetCustomerByEmail(ctx, "x@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		pending, err := db.GetPendingOutboxTasks(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("disapproved ignored", func(t *testing.T) {
		db := setupTestDB(t)
		old := mustCreateBooking(t, db, newBooking("2025-03-01", "09:00", "10:00"))
		require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, old.ID, old.Version, models.StatusDisapproved, nil))

		err := db.CreateBookingChecked(ctx, newBooking("2025-03-01", "09:00", "10:00"), newCustomer("x@example.com"), nil)
		assert.NoError(t, err)
	})

	t.Run("holiday takes precedence", func(t *testing.T) {
		db := setupTestDB(t)
		mustCreateBooking(t, db, newBooking("2025-03-01", "10:00", "11:00"))
		require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{
			ID: "h1", Date: "2025-03-01", Type: models.HolidayTimeSlot, StartTime: "09:00", EndTime: "12:00",
		}))

		err := db.CreateBookingChecked(ctx, newBooking("2025-03-01", "10:00", "11:00"), newCustomer("x@example.com"), nil)
		assert.ErrorIs(t, err, conflict.ErrHolidayTimeSlot)
	})

	t.Run("full day holiday", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "h1", Date: "2025-03-01", Type: models.HolidayFullDay}))

		err := db.CreateBookingChecked(ctx, newBooking("2025-03-01", "18:00", "19:00"), newCustomer("x@example.com"), nil)
		assert.ErrorIs(t, err, conflict.ErrHolidayFullDay)

		err = db.CreateBookingChecked(ctx, newBooking("2025-03-02", "18:00", "19:00"), newCustomer("x@example.com"), nil)
		assert.NoError(t, err)
	})
}

func TestCreateBookingChecked_ReusesCustomer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := newBooking("2025-03-01", "10:00", "11:00")
	require.NoError(t, db.CreateBookingChecked(ctx, first, newCustomer("same@example.com"), nil))

	second := newBooking("2025-03-02", "10:00", "11:00")
	c := &models.Customer{Name: "Nimali P.", Email: "same@example.com", Phone: "0719999999"}
	require.NoError(t, db.CreateBookingChecked(ctx, second, c, nil))

	assert.Equal(t, first.CustomerID, second.CustomerID)

	stored, err := db.GetCustomer(ctx, first.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Nimali P.", stored.Name)
	assert.Equal(t, "0719999999", stored.Phone)

	customers, err := db.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestConcurrentBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			results <- db.CreateBookingChecked(ctx, newBooking("2025-03-01", "10:00", "11:00"),
				newCustomer("race@example.com"), nil)
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, conflict.ErrBookingSlotTaken):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, numGoroutines-1, conflicts)
}

func TestListBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := mustCreateBooking(t, db, newBooking("2025-03-02", "10:00", "11:00"))
	mustCreateBooking(t, db, newBooking("2025-03-01", "12:00", "13:00"))
	mustCreateBooking(t, db, newBooking("2025-03-01", "09:00", "10:00"))
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, a.ID, 1, models.StatusApproved, nil))

	all, err := db.ListBookings(ctx, models.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "09:00", all[0].StartTime)
	assert.Equal(t, "12:00", all[1].StartTime)
	assert.Equal(t, "2025-03-02", all[2].Date)

	byDate, err := db.ListBookings(ctx, models.BookingFilter{Date: "2025-03-01"})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	approved, err := db.ListBookings(ctx, models.BookingFilter{Status: models.StatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a.ID, approved[0].ID)

	none, err := db.ListBookings(ctx, models.BookingFilter{Date: "2030-01-01"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	ranged, err := db.ListBookingsInRange(ctx, "2025-03-02", "2025-03-31")
	require.NoError(t, err)
	assert.Len(t, ranged, 1)
}

func TestUpdateBookingStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := mustCreateBooking(t, db, newBooking("2025-03-01", "10:00", "11:00"))
	tasks := []*models.OutboxTask{{TaskType: models.TaskCalendarCreate}}
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusApproved, tasks))

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, int64(2), got.Version)

	err = db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusDisapproved, nil)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	pending, err := db.GetPendingOutboxTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.TaskCalendarCreate, pending[0].TaskType)
}

func TestSetBookingEventIDAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := mustCreateBooking(t, db, newBooking("2025-03-01", "10:00", "11:00"))
	require.NoError(t, db.SetBookingEventID(ctx, b.ID, "evt-1"))
	assert.ErrorIs(t, db.SetBookingEventID(ctx, "missing", "evt-2"), ErrNotFound)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", got.GoogleEventID)

	tasks := []*models.OutboxTask{{TaskType: models.TaskCalendarDelete, Payload: `{"event_id":"evt-1"}`}}
	require.NoError(t, db.DeleteBooking(ctx, b.ID, tasks))

	_, err = db.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteBooking(ctx, b.ID, nil), ErrNotFound)

	pending, err := db.GetPendingOutboxTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].BookingID)
}
