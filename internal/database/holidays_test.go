package database

import (
	"context"
	"testing"

	"studiodesk/internal/conflict"
	"studiodesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotHoliday(id, date, start, end string) *models.Holiday {
	return &models.Holiday{ID: id, Date: date, Type: models.HolidayTimeSlot, StartTime: start, EndTime: end}
}

func TestCreateHolidayChecked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateHolidayChecked(ctx, slotHoliday("h1", "2025-03-01", "09:00", "10:00")))

	t.Run("touching endpoints conflict", func(t *testing.T) {
		err := db.CreateHolidayChecked(ctx, slotHoliday("h2", "2025-03-01", "10:00", "11:00"))
		assert.ErrorIs(t, err, conflict.ErrHolidayAlreadyExists)
	})

	t.Run("full day over time slot conflicts", func(t *testing.T) {
		err := db.CreateHolidayChecked(ctx, &models.Holiday{ID: "h3", Date: "2025-03-01", Type: models.HolidayFullDay})
		assert.ErrorIs(t, err, conflict.ErrHolidayAlreadyExists)
	})

	t.Run("separate slot allowed", func(t *testing.T) {
		require.NoError(t, db.CreateHolidayChecked(ctx, slotHoliday("h4", "2025-03-01", "13:00", "14:00")))
	})

	t.Run("other date allowed", func(t *testing.T) {
		require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "h5", Date: "2025-03-02", Type: models.HolidayFullDay, Description: "Poya"}))
	})

	all, err := db.ListHolidays(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onDate, err := db.ListHolidays(ctx, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, onDate, 2)
	assert.Equal(t, "09:00", onDate[0].StartTime)

	h, err := db.GetHoliday(ctx, "h5")
	require.NoError(t, err)
	assert.Equal(t, "Poya", h.Description)
	assert.True(t, h.IsFullDay())
}

func TestDeleteHoliday(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateHolidayChecked(ctx, slotHoliday("h1", "2025-03-01", "09:00", "10:00")))
	require.NoError(t, db.DeleteHoliday(ctx, "h1"))
	assert.ErrorIs(t, db.DeleteHoliday(ctx, "h1"), ErrNotFound)

	_, err := db.GetHoliday(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePastHolidays(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "old", Date: "2025-02-27", Type: models.HolidayFullDay}))
	require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "today", Date: "2025-03-01", Type: models.HolidayFullDay}))
	require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "later", Date: "2025-03-05", Type: models.HolidayFullDay}))

	n, err := db.DeletePastHolidays(ctx, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = db.DeletePastHolidays(ctx, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	left, err := db.ListHolidays(ctx, "")
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "today", left[0].ID)
}
