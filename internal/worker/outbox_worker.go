package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiodesk/internal/database"
	"studiodesk/internal/domain"
	"studiodesk/internal/metrics"
	"studiodesk/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Options tunes the outbox worker. Zero values get defaults.
type Options struct {
	PollInterval  time.Duration
	BatchSize     int
	RedisQueueKey string
}

// Collaborators are the delivery targets. Any of them may be nil, in which
// case tasks for it complete without doing anything.
type Collaborators struct {
	Calendar domain.CalendarSyncer
	Mailer   domain.Mailer
	Staff    domain.StaffNotifier
}

// OutboxWorker delivers outbox tasks written next to bookings. The database
// is the queue; Redis or a local channel only wake the loop early.
type OutboxWorker struct {
	store         domain.OutboxStore
	targets       Collaborators
	redis         *redis.Client
	retryPolicy   RetryPolicy
	wake          chan struct{}
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	loc           *time.Location
	logger        *zerolog.Logger
}

// NewOutboxWorker builds a worker with sane defaults.
func NewOutboxWorker(
	store domain.OutboxStore,
	targets Collaborators,
	redisClient *redis.Client,
	retry RetryPolicy,
	opts Options,
	loc *time.Location,
	logger *zerolog.Logger,
) *OutboxWorker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.RedisQueueKey == "" {
		opts.RedisQueueKey = "studiodesk:outbox"
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &OutboxWorker{
		store:         store,
		targets:       targets,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		wake:          make(chan struct{}, models.WorkerQueueSize),
		redisQueueKey: opts.RedisQueueKey,
		deadLetterKey: opts.RedisQueueKey + ":deadletter",
		pollInterval:  opts.PollInterval,
		batchSize:     opts.BatchSize,
		loc:           loc,
		logger:        logger,
	}
}

// Notify wakes the worker. Redis is tried first so other instances see it.
func (w *OutboxWorker) Notify(ctx context.Context) {
	if w.redis != nil {
		err := w.redis.LPush(ctx, w.redisQueueKey, time.Now().UnixNano()).Err()
		if err == nil {
			return
		}
		w.logger.Warn().Err(err).Msg("redis push failed, fallback to memory queue")
	}

	select {
	case w.wake <- struct{}{}:
	default:
		// already awake
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("outbox worker started")
	defer w.logger.Info().Msg("outbox worker stopped")

	if n, err := w.store.ResetStuckOutboxTasks(ctx); err != nil {
		w.logger.Error().Err(err).Msg("reset stuck tasks")
	} else if n > 0 {
		w.logger.Warn().Int64("count", n).Msg("requeued tasks left in processing")
	}

	if w.redis != nil {
		go w.listenRedis(ctx)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.ProcessPending(ctx)

		select {
		case <-ctx.Done():
			return
		case <-w.wake:
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) listenRedis(ctx context.Context) {
	for ctx.Err() == nil {
		_, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.logger.Warn().Err(err).Msg("redis BRPOP error")
			select {
			case <-ctx.Done():
			case <-time.After(w.pollInterval):
			}
			continue
		}
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

// ProcessPending drains due tasks until none are left.
func (w *OutboxWorker) ProcessPending(ctx context.Context) {
	for ctx.Err() == nil {
		tasks, err := w.store.GetPendingOutboxTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending outbox tasks")
			return
		}
		if len(tasks) == 0 {
			return
		}
		for _, task := range tasks {
			w.processTask(ctx, task)
		}
		if len(tasks) < w.batchSize {
			return
		}
	}
}

func (w *OutboxWorker) processTask(ctx context.Context, task *models.OutboxTask) {
	claimed, err := w.store.ClaimOutboxTask(ctx, task.ID)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("claim outbox task")
		return
	}
	if !claimed {
		return
	}

	log := w.logger.With().Int64("task_id", task.ID).Str("task_type", task.TaskType).Str("booking_id", task.BookingID).Logger()

	payload, err := task.DecodePayload()
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handle(ctx, task, payload); err != nil {
		log.Warn().Err(err).Int("attempt", task.RetryCount+1).Msg("outbox task failed")
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.store.UpdateOutboxTaskStatus(ctx, task.ID, models.TaskStatusCompleted, "", nil); err != nil {
		log.Error().Err(err).Msg("mark completed")
	}
	metrics.IncOutbox(task.TaskType, models.TaskStatusCompleted)
	log.Debug().Msg("outbox task delivered")
}

func (w *OutboxWorker) handle(ctx context.Context, task *models.OutboxTask, payload models.OutboxPayload) error {
	switch task.TaskType {
	case models.TaskCalendarCreate:
		return w.createCalendarEvent(ctx, task.BookingID)
	case models.TaskCalendarDelete:
		if w.targets.Calendar == nil || payload.EventID == "" {
			return nil
		}
		return w.targets.Calendar.DeleteEvent(ctx, payload.EventID)
	case models.TaskEmailBookingCreated, models.TaskEmailBookingApproved:
		if w.targets.Mailer == nil {
			return nil
		}
		if payload.Booking == nil || payload.Booking.CustomerEmail == "" {
			return errors.New("booking payload missing recipient")
		}
		subject, body := customerEmail(task.TaskType, payload.Booking)
		return w.targets.Mailer.Send(ctx, payload.Booking.CustomerEmail, subject, body)
	case models.TaskStaffNotify:
		if w.targets.Staff == nil {
			return nil
		}
		if payload.Booking == nil {
			return errors.New("booking payload missing")
		}
		return w.targets.Staff.NotifyStaff(ctx, staffMessage(payload.Booking))
	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

// createCalendarEvent reads the booking fresh so a disapproval or delete
// that happened after enqueueing wins.
func (w *OutboxWorker) createCalendarEvent(ctx context.Context, bookingID string) error {
	if w.targets.Calendar == nil {
		return nil
	}
	booking, err := w.store.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if booking.Status != models.StatusApproved || booking.GoogleEventID != "" {
		return nil
	}

	eventID, err := w.targets.Calendar.CreateEvent(ctx, booking)
	if err != nil {
		return err
	}
	return w.store.SetBookingEventID(ctx, booking.ID, eventID)
}

func (w *OutboxWorker) retryOrFail(ctx context.Context, task *models.OutboxTask, cause error) {
	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.failTask(ctx, task, cause)
		return
	}

	nextTime := w.retryPolicy.NextAttemptAt(time.Now(), attempt)
	if err := w.store.UpdateOutboxTaskStatus(ctx, task.ID, models.TaskStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry")
	}
	metrics.IncOutbox(task.TaskType, models.TaskStatusRetry)
}

func (w *OutboxWorker) failTask(ctx context.Context, task *models.OutboxTask, cause error) {
	if err := w.store.UpdateOutboxTaskStatus(ctx, task.ID, models.TaskStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed")
	}
	metrics.IncOutbox(task.TaskType, models.TaskStatusFailed)
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Str("task_type", task.TaskType).Msg("outbox task gave up")
	w.pushDeadLetter(ctx, task)
}

func (w *OutboxWorker) pushDeadLetter(ctx context.Context, task *models.OutboxTask) {
	if w.redis == nil {
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, task.ID).Err(); err != nil {
		w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("deadletter push")
	}
}
