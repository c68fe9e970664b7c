package service

import (
	"context"
	"testing"
	"time"

	"studiodesk/internal/conflict"
	"studiodesk/internal/database"
	"studiodesk/internal/events"
	"studiodesk/internal/models"
	"studiodesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolidayService(t *testing.T) (*HolidayService, *database.DB, *recordingBus) {
	t.Helper()
	db := newTestDB(t)
	bus := &recordingBus{}
	svc := NewHolidayService(db, repository.NewMemoryLocker(), bus, testOptions(), testLogger())
	svc.now = func() time.Time { return testNow }
	return svc, db, bus
}

func TestValidateHolidayRequest(t *testing.T) {
	tests := []struct {
		name  string
		req   HolidayRequest
		field string
		msg   string
	}{
		{"bad date", HolidayRequest{Date: "2030/06/20", Type: models.HolidayFullDay}, "date", ""},
		{"unknown type", HolidayRequest{Date: "2030-06-20", Type: "weekend"}, "type", ""},
		{"half day without times", HolidayRequest{Date: "2030-06-20", Type: models.HolidayHalfDay}, "start_time", ""},
		{"slot without times", HolidayRequest{Date: "2030-06-20", Type: models.HolidayTimeSlot, StartTime: "10:00"}, "start_time",
			"Start time and end time are required for time-slot holidays"},
		{"slot reversed", HolidayRequest{Date: "2030-06-20", Type: models.HolidayTimeSlot, StartTime: "12:00", EndTime: "10:00"}, "end_time", ""},
		{"slot malformed", HolidayRequest{Date: "2030-06-20", Type: models.HolidayTimeSlot, StartTime: "1200", EndTime: "13:00"}, "start_time", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := ValidateHolidayRequest(&req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, verr.Message)
			}
		})
	}

	t.Run("full day drops times", func(t *testing.T) {
		req := HolidayRequest{Date: "2030-06-20", Type: models.HolidayFullDay, StartTime: "10:00", EndTime: "11:00"}
		require.NoError(t, ValidateHolidayRequest(&req))
		assert.Empty(t, req.StartTime)
		assert.Empty(t, req.EndTime)
	})
}

func TestCreateHoliday(t *testing.T) {
	svc, _, bus := newHolidayService(t)
	ctx := context.Background()

	h, err := svc.CreateHoliday(ctx, HolidayRequest{Date: "2030-06-20", Type: models.HolidayTimeSlot, StartTime: "10:00", EndTime: "12:00", Description: "maintenance"})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, []string{events.EventHolidayCreated}, bus.types())

	t.Run("touching endpoints conflict", func(t *testing.T) {
		_, err := svc.CreateHoliday(ctx, HolidayRequest{Date: "2030-06-20", Type: models.HolidayTimeSlot, StartTime: "12:00", EndTime: "13:00"})
		assert.ErrorIs(t, err, conflict.ErrHolidayAlreadyExists)
	})

	t.Run("full day on a date with a slot conflicts", func(t *testing.T) {
		_, err := svc.CreateHoliday(ctx, HolidayRequest{Date: "2030-06-20", Type: models.HolidayFullDay})
		assert.ErrorIs(t, err, conflict.ErrHolidayAlreadyExists)
	})

	t.Run("other date is free", func(t *testing.T) {
		_, err := svc.CreateHoliday(ctx, HolidayRequest{Date: "2030-06-21", Type: models.HolidayFullDay})
		assert.NoError(t, err)
	})
}

func TestCreateHoliday_HalfDayIsTimeSlot(t *testing.T) {
	svc, db, _ := newHolidayService(t)
	ctx := context.Background()

	h, err := svc.CreateHoliday(ctx, HolidayRequest{Date: "2030-06-20", Type: models.HolidayHalfDay, StartTime: "10:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, models.HolidayTimeSlot, h.Type)

	stored, err := db.ListHolidays(ctx, "2030-06-20")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.HolidayTimeSlot, stored[0].Type)

	bookings := NewBookingService(db, repository.NewMemoryLocker(), nil, nil, testOptions(), testLogger())
	bookings.now = func() time.Time { return testNow }

	req := validRequest()
	req.StartTime, req.EndTime = "11:00", "13:00"
	_, err = bookings.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, conflict.ErrHolidayTimeSlot)

	req.StartTime, req.EndTime = "12:00", "13:00"
	_, err = bookings.CreateBooking(ctx, req)
	assert.NoError(t, err)
}

func TestListHolidays_SweepsPast(t *testing.T) {
	svc, db, _ := newHolidayService(t)
	ctx := context.Background()

	require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "old", Date: "2030-06-14", Type: models.HolidayFullDay}))
	require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "today", Date: "2030-06-15", Type: models.HolidayFullDay}))
	require.NoError(t, db.CreateHolidayChecked(ctx, &models.Holiday{ID: "next", Date: "2030-06-16", Type: models.HolidayFullDay}))

	list, err := svc.ListHolidays(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "today", list[0].ID)
	assert.Equal(t, "next", list[1].ID)

	// idempotent
	n, err := svc.SweepPastHolidays(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	byDate, err := svc.ListHolidays(ctx, "2030-06-16")
	require.NoError(t, err)
	assert.Len(t, byDate, 1)

	_, err = svc.ListHolidays(ctx, "junk")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteHoliday(t *testing.T) {
	svc, _, _ := newHolidayService(t)
	ctx := context.Background()

	h, err := svc.CreateHoliday(ctx, HolidayRequest{Date: "2030-06-20", Type: models.HolidayFullDay})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHoliday(ctx, h.ID))
	assert.ErrorIs(t, svc.DeleteHoliday(ctx, h.ID), database.ErrNotFound)
}
