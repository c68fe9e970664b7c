package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"studiodesk/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// CalendarService mirrors approved bookings into a shared Google calendar.
type CalendarService struct {
	service    *calendar.Service
	calendarID string
	timeZone   string
}

func NewCalendarService(ctx context.Context, credentialsFile, calendarID, timeZone string) (*CalendarService, error) {
	// service account key
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	return NewCalendarServiceWith(srv, calendarID, timeZone), nil
}

// NewCalendarServiceWith wraps an already built client.
func NewCalendarServiceWith(srv *calendar.Service, calendarID, timeZone string) *CalendarService {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarService{service: srv, calendarID: calendarID, timeZone: timeZone}
}

// CreateEvent inserts the booking and returns the new event id.
func (s *CalendarService) CreateEvent(ctx context.Context, booking *models.Booking) (string, error) {
	event, err := s.service.Events.Insert(s.calendarID, buildEvent(booking, s.timeZone)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to insert event: %w", err)
	}
	return event.Id, nil
}

// DeleteEvent removes an event. An event that is already gone counts as deleted.
func (s *CalendarService) DeleteEvent(ctx context.Context, eventID string) error {
	err := s.service.Events.Delete(s.calendarID, eventID).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to delete event %s: %w", eventID, err)
	}
	return nil
}

func buildEvent(b *models.Booking, timeZone string) *calendar.Event {
	var desc strings.Builder
	desc.WriteString("Customer Details:\n")
	fmt.Fprintf(&desc, "- Name: %s\n- Email: %s\n- Phone: %s\n", b.CustomerName, b.CustomerEmail, b.CustomerPhone)
	desc.WriteString("Booking Details:\n")
	fmt.Fprintf(&desc, "- Package: %s\n", b.PackageType)
	if b.Note != "" {
		fmt.Fprintf(&desc, "- Note: %s\n", b.Note)
	}

	return &calendar.Event{
		Summary:     fmt.Sprintf("Booking:%s-%s", b.CustomerName, b.PackageType),
		Description: desc.String(),
		Start: &calendar.EventDateTime{
			DateTime: b.Date + "T" + b.StartTime + ":00",
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: b.Date + "T" + b.EndTime + ":00",
			TimeZone: timeZone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}
