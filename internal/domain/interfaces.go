package domain

import (
	"context"
	"io"
	"time"

	"studiodesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type BookingStore interface {
	CreateBookingChecked(ctx context.Context, booking *models.Booking, customer *models.Customer, tasks []*models.OutboxTask) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	ListBookingsInRange(ctx context.Context, from, to string) ([]*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, status string, tasks []*models.OutboxTask) error
	DeleteBooking(ctx context.Context, id string, tasks []*models.OutboxTask) error
}

type HolidayStore interface {
	CreateHolidayChecked(ctx context.Context, h *models.Holiday) error
	ListHolidays(ctx context.Context, date string) ([]*models.Holiday, error)
	GetHoliday(ctx context.Context, id string) (*models.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
	DeletePastHolidays(ctx context.Context, today string) (int64, error)
}

type CustomerStore interface {
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
}

type GalleryStore interface {
	CreateGallery(ctx context.Context, g *models.Gallery, subImageURLs []string) error
	GetGallery(ctx context.Context, id string) (*models.Gallery, error)
	ListGalleries(ctx context.Context, category string) ([]*models.Gallery, error)
	UpdateGallery(ctx context.Context, id, title, slug, category string) error
	DeleteGallery(ctx context.Context, id string) (*models.Gallery, error)
}

type StatsStore interface {
	NextApprovedBooking(ctx context.Context, today, nowTime string) (*models.Booking, error)
	CountActiveBookings(ctx context.Context, monthStart, today, nowTime string) (int64, error)
	CountBookingsBetween(ctx context.Context, status, from, to string) (int64, error)
	CountBookingsAfter(ctx context.Context, status, date string) (int64, error)
	CountBookings(ctx context.Context, status string) (int64, error)
	CountCustomersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	BookingsPerMonth(ctx context.Context, fromDate string) (map[string]int64, error)
	BookingsPerPackage(ctx context.Context) (map[string]int64, error)
}

type OutboxStore interface {
	GetPendingOutboxTasks(ctx context.Context, limit int) ([]*models.OutboxTask, error)
	ClaimOutboxTask(ctx context.Context, id int64) (bool, error)
	UpdateOutboxTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
	ResetStuckOutboxTasks(ctx context.Context) (int64, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	SetBookingEventID(ctx context.Context, id, eventID string) error
}

// DateLocker hands out short leases that serialize writers per key.
type DateLocker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// OutboxNotifier wakes the outbox worker after tasks were committed.
type OutboxNotifier interface {
	Notify(ctx context.Context)
}

type CalendarSyncer interface {
	CreateEvent(ctx context.Context, booking *models.Booking) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type StaffNotifier interface {
	NotifyStaff(ctx context.Context, text string) error
}

type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// TelegramService is the slice of the bot API the staff bot uses.
type TelegramService interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// BookingManager is what staff tooling may do with bookings.
type BookingManager interface {
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	ApproveBooking(ctx context.Context, id string) (*models.Booking, error)
	DisapproveBooking(ctx context.Context, id string) (*models.Booking, error)
}
