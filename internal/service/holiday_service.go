package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiodesk/internal/conflict"
	"studiodesk/internal/domain"
	"studiodesk/internal/events"
	"studiodesk/internal/metrics"
	"studiodesk/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type HolidayRequest struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

type HolidayService struct {
	store    domain.HolidayStore
	locker   domain.DateLocker
	eventBus domain.EventPublisher
	opts     Options
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewHolidayService(
	store domain.HolidayStore,
	locker domain.DateLocker,
	eventBus domain.EventPublisher,
	opts Options,
	logger *zerolog.Logger,
) *HolidayService {
	opts.defaults()
	return &HolidayService{
		store:    store,
		locker:   locker,
		eventBus: eventBus,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

func ValidateHolidayRequest(req *HolidayRequest) error {
	trimAll(&req.Date, &req.Type, &req.StartTime, &req.EndTime, &req.Description)

	if !validDate(req.Date) {
		return invalid("date", "Date must be a valid YYYY-MM-DD date")
	}
	if req.Type == models.HolidayHalfDay {
		req.Type = models.HolidayTimeSlot
	}
	switch req.Type {
	case models.HolidayFullDay:
		// times are ignored for a full day
		req.StartTime, req.EndTime = "", ""
		return nil
	case models.HolidayTimeSlot:
	default:
		return invalid("type", "Type must be full-day, time-slot or half-day")
	}

	if req.StartTime == "" || req.EndTime == "" {
		return invalid("start_time", "Start time and end time are required for time-slot holidays")
	}
	if verr := checkTimeRange(req.StartTime, req.EndTime); verr != nil {
		return verr
	}
	return nil
}

// CreateHoliday stores the holiday unless it touches or overlaps an
// existing one on the same date.
func (s *HolidayService) CreateHoliday(ctx context.Context, req HolidayRequest) (*models.Holiday, error) {
	if err := ValidateHolidayRequest(&req); err != nil {
		metrics.IncReservation("holiday", "invalid")
		return nil, err
	}

	holiday := &models.Holiday{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Type:        req.Type,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}

	err := lockDate(ctx, s.locker, holiday.Date, s.opts, func(ctx context.Context) error {
		return s.store.CreateHolidayChecked(ctx, holiday)
	})
	if err != nil {
		var cerr *conflict.Error
		if errors.As(err, &cerr) {
			metrics.IncConflict(string(cerr.Reason))
			metrics.IncReservation("holiday", "conflict")
			return nil, err
		}
		metrics.IncReservation("holiday", "error")
		return nil, fmt.Errorf("create holiday: %w", err)
	}

	metrics.IncReservation("holiday", "created")
	s.logger.Info().Str("holiday_id", holiday.ID).Str("date", holiday.Date).Str("type", holiday.Type).Msg("Holiday created")
	s.publish(events.EventHolidayCreated, holiday)
	return holiday, nil
}

// ListHolidays sweeps past holidays, then lists the rest. A failed sweep is
// logged and the listing still goes ahead.
func (s *HolidayService) ListHolidays(ctx context.Context, date string) ([]*models.Holiday, error) {
	if date != "" && !validDate(date) {
		return nil, invalid("date", "Date must be a valid YYYY-MM-DD date")
	}
	if _, err := s.SweepPastHolidays(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to sweep past holidays")
	}
	return s.store.ListHolidays(ctx, date)
}

// SweepPastHolidays deletes holidays dated before today in the studio zone.
func (s *HolidayService) SweepPastHolidays(ctx context.Context) (int64, error) {
	today := s.now().In(s.opts.Location).Format(models.DateLayout)
	n, err := s.store.DeletePastHolidays(ctx, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddHolidaysSwept(n)
		s.logger.Debug().Int64("count", n).Str("before", today).Msg("Swept past holidays")
	}
	return n, nil
}

func (s *HolidayService) DeleteHoliday(ctx context.Context, id string) error {
	h, err := s.store.GetHoliday(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteHoliday(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("holiday_id", id).Msg("Holiday deleted")
	s.publish(events.EventHolidayDeleted, h)
	return nil
}

func (s *HolidayService) publish(eventType string, h *models.Holiday) {
	if s.eventBus == nil {
		return
	}
	payload := events.HolidayEventPayload{
		HolidayID: h.ID,
		Date:      h.Date,
		Type:      h.Type,
		StartTime: h.StartTime,
		EndTime:   h.EndTime,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
