package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studiodesk/internal/conflict"
	"studiodesk/internal/domain"
	"studiodesk/internal/events"
	"studiodesk/internal/metrics"
	"studiodesk/internal/models"
	"studiodesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingRequest is the public booking form.
type BookingRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	PackageType string `json:"package_type"`
	Note        string `json:"note"`
}

// UnmarshalJSON also accepts the camelCase keys older clients send.
func (r *BookingRequest) UnmarshalJSON(data []byte) error {
	type plain BookingRequest
	var aux struct {
		plain
		StartTimeCamel   string `json:"startTime"`
		EndTimeCamel     string `json:"endTime"`
		PackageTypeCamel string `json:"packageType"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = BookingRequest(aux.plain)
	if r.StartTime == "" {
		r.StartTime = aux.StartTimeCamel
	}
	if r.EndTime == "" {
		r.EndTime = aux.EndTimeCamel
	}
	if r.PackageType == "" {
		r.PackageType = aux.PackageTypeCamel
	}
	return nil
}

// Options carries the tunables shared by the write services.
type Options struct {
	MaxAdvanceDays int
	LockTTL        time.Duration
	LockWait       time.Duration
	Location       *time.Location
}

func (o *Options) defaults() {
	if o.MaxAdvanceDays <= 0 {
		o.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 10 * time.Second
	}
	if o.LockWait <= 0 {
		o.LockWait = 3 * time.Second
	}
	if o.Location == nil {
		o.Location = time.Local
	}
}

type BookingService struct {
	store    domain.BookingStore
	locker   domain.DateLocker
	eventBus domain.EventPublisher
	outbox   domain.OutboxNotifier
	opts     Options
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(
	store domain.BookingStore,
	locker domain.DateLocker,
	eventBus domain.EventPublisher,
	outbox domain.OutboxNotifier,
	opts Options,
	logger *zerolog.Logger,
) *BookingService {
	opts.defaults()
	return &BookingService{
		store:    store,
		locker:   locker,
		eventBus: eventBus,
		outbox:   outbox,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *BookingService) today() string {
	return s.now().In(s.opts.Location).Format(models.DateLayout)
}

// ValidateBookingRequest returns the first failing field.
func (s *BookingService) ValidateBookingRequest(req *BookingRequest) error {
	trimAll(&req.Name, &req.Email, &req.Phone, &req.Date, &req.StartTime, &req.EndTime, &req.PackageType, &req.Note)

	if req.Name == "" {
		return invalid("name", "Name is required")
	}
	if !validEmail(req.Email) {
		return invalid("email", "Invalid email address")
	}
	if len(req.Phone) < minPhoneLength {
		return invalid("phone", "Phone number must be at least 10 characters")
	}
	if !validDate(req.Date) {
		return invalid("date", "Date must be a valid YYYY-MM-DD date")
	}
	if verr := checkTimeRange(req.StartTime, req.EndTime); verr != nil {
		return verr
	}
	if !models.IsPackageType(req.PackageType) {
		return invalid("package_type", "Invalid package type")
	}

	today := s.today()
	if req.Date < today {
		return invalid("date", "Date cannot be in the past")
	}
	day, _ := time.ParseInLocation(models.DateLayout, today, s.opts.Location)
	maxDate := day.AddDate(0, 0, s.opts.MaxAdvanceDays).Format(models.DateLayout)
	if req.Date > maxDate {
		return invalid("date", fmt.Sprintf("Date cannot be more than %d days ahead", s.opts.MaxAdvanceDays))
	}
	return nil
}

// CreateBooking validates the request, then checks and stores the booking
// under the date lock. Side effects are queued in the same transaction.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	if err := s.ValidateBookingRequest(&req); err != nil {
		metrics.IncReservation("booking", "invalid")
		return nil, err
	}

	customer := &models.Customer{Name: req.Name, Email: strings.ToLower(req.Email), Phone: req.Phone}
	booking := &models.Booking{
		ID:            uuid.NewString(),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		PackageType:   req.PackageType,
		Note:          req.Note,
		Status:        models.StatusPending,
	}

	tasks, err := buildTasks(booking, models.TaskEmailBookingCreated, models.TaskStaffNotify)
	if err != nil {
		return nil, err
	}

	err = s.withDateLock(ctx, booking.Date, func(ctx context.Context) error {
		return s.store.CreateBookingChecked(ctx, booking, customer, tasks)
	})
	if err != nil {
		var cerr *conflict.Error
		if errors.As(err, &cerr) {
			metrics.IncConflict(string(cerr.Reason))
			metrics.IncReservation("booking", "conflict")
			s.logger.Info().Str("date", booking.Date).Str("reason", string(cerr.Reason)).Str("with", cerr.WithID).Msg("Booking rejected")
			return nil, err
		}
		metrics.IncReservation("booking", "error")
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncReservation("booking", "created")
	s.logger.Info().Str("booking_id", booking.ID).Str("date", booking.Date).Str("start", booking.StartTime).Msg("Booking created")

	s.publishEvent(events.EventBookingCreated, booking)
	s.notifyOutbox(ctx)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	if filter.Date != "" && !validDate(filter.Date) {
		return nil, invalid("date", "Date must be a valid YYYY-MM-DD date")
	}
	switch filter.Status {
	case "", models.StatusPending, models.StatusApproved, models.StatusDisapproved:
	default:
		return nil, invalid("status", "Invalid status")
	}
	return s.store.ListBookings(ctx, filter)
}

// ListBookingsInRange returns bookings dated from..to inclusive.
func (s *BookingService) ListBookingsInRange(ctx context.Context, from, to string) ([]*models.Booking, error) {
	if !validDate(from) {
		return nil, invalid("from", "Date must be a valid YYYY-MM-DD date")
	}
	if !validDate(to) {
		return nil, invalid("to", "Date must be a valid YYYY-MM-DD date")
	}
	if from > to {
		return nil, invalid("to", "End date must not be before start date")
	}
	return s.store.ListBookingsInRange(ctx, from, to)
}

// ApproveBooking confirms a pending booking and queues the calendar entry
// and the confirmation email.
func (s *BookingService) ApproveBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusApproved, events.EventBookingApproved,
		models.TaskCalendarCreate, models.TaskEmailBookingApproved)
}

// DisapproveBooking rejects a pending booking, which frees its slot.
func (s *BookingService) DisapproveBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusDisapproved, events.EventBookingDisapproved)
}

func (s *BookingService) transition(ctx context.Context, id, status, eventType string, taskTypes ...string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending {
		return nil, invalid("status", fmt.Sprintf("Booking is already %s", booking.Status))
	}

	fromVersion := booking.Version
	booking.Status = status
	tasks, err := buildTasks(booking, taskTypes...)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateBookingStatusWithVersion(ctx, id, fromVersion, status, tasks); err != nil {
		return nil, err
	}
	booking.Version = fromVersion + 1

	s.logger.Info().Str("booking_id", id).Str("status", status).Msg("Booking status changed")
	s.publishEvent(eventType, booking)
	if len(tasks) > 0 {
		s.notifyOutbox(ctx)
	}
	return booking, nil
}

// DeleteBooking removes the booking and queues removal of its calendar event.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	var tasks []*models.OutboxTask
	if booking.GoogleEventID != "" {
		tasks, err = buildTasks(booking, models.TaskCalendarDelete)
		if err != nil {
			return err
		}
	}

	if err := s.store.DeleteBooking(ctx, id, tasks); err != nil {
		return err
	}

	s.logger.Info().Str("booking_id", id).Msg("Booking deleted")
	s.publishEvent(events.EventBookingDeleted, booking)
	if len(tasks) > 0 {
		s.notifyOutbox(ctx)
	}
	return nil
}

func (s *BookingService) withDateLock(ctx context.Context, date string, fn func(ctx context.Context) error) error {
	return lockDate(ctx, s.locker, date, s.opts, fn)
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:     b.ID,
		CustomerID:    b.CustomerID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		Date:          b.Date,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		PackageType:   b.PackageType,
		Status:        b.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

func (s *BookingService) notifyOutbox(ctx context.Context) {
	if s.outbox != nil {
		s.outbox.Notify(ctx)
	}
}

func buildTasks(b *models.Booking, taskTypes ...string) ([]*models.OutboxTask, error) {
	tasks := make([]*models.OutboxTask, 0, len(taskTypes))
	for _, tt := range taskTypes {
		task, err := models.NewOutboxTask(tt, b)
		if err != nil {
			return nil, fmt.Errorf("build %s task: %w", tt, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// lockDate serializes writers touching one calendar date. Without a locker
// the IMMEDIATE transaction alone guards the check.
func lockDate(ctx context.Context, locker domain.DateLocker, date string, opts Options, fn func(ctx context.Context) error) error {
	if locker == nil {
		return fn(ctx)
	}
	return repository.WithLock(ctx, locker, "date:"+date, opts.LockTTL, opts.LockWait, fn)
}
