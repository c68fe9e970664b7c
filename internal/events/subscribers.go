package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studiodesk/internal/metrics"
)

const alertTimeout = 10 * time.Second

// AllEvents lists every event type the services publish.
var AllEvents = []string{
	EventBookingCreated,
	EventBookingApproved,
	EventBookingDisapproved,
	EventBookingDeleted,
	EventHolidayCreated,
	EventHolidayDeleted,
}

// StaffNotifier receives plain-text alerts for the studio staff.
type StaffNotifier interface {
	NotifyStaff(ctx context.Context, text string) error
}

// SubscribeMetrics counts published events by type.
func SubscribeMetrics(bus *EventBus) {
	for _, eventType := range AllEvents {
		bus.Subscribe(eventType, func(ev *Event) error {
			metrics.IncEvent(ev.Type)
			return nil
		})
	}
}

// SubscribeStaffAlerts tells staff about schedule changes that have no
// outbox task of their own. New booking requests already reach staff via
// the outbox. Sends run off the publishing goroutine.
func SubscribeStaffAlerts(bus *EventBus, staff StaffNotifier) {
	handler := func(ev *Event) error {
		text, err := staffAlert(ev)
		if err != nil {
			return err
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
			defer cancel()
			if err := staff.NotifyStaff(ctx, text); err != nil {
				bus.logger.Warn().Err(err).Str("event", ev.Type).Msg("staff alert failed")
			}
		}()
		return nil
	}

	for _, eventType := range []string{EventBookingDisapproved, EventBookingDeleted, EventHolidayCreated, EventHolidayDeleted} {
		bus.Subscribe(eventType, handler)
	}
}

func staffAlert(ev *Event) (string, error) {
	switch ev.Type {
	case EventBookingDisapproved, EventBookingDeleted:
		var p BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		title := "Booking declined"
		if ev.Type == EventBookingDeleted {
			title = "Booking deleted"
		}
		return fmt.Sprintf("%s\n%s, %s %s-%s\nID: %s", title, p.CustomerName, p.Date, p.StartTime, p.EndTime, p.BookingID), nil

	case EventHolidayCreated, EventHolidayDeleted:
		var p HolidayEventPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		span := "all day"
		if p.StartTime != "" {
			span = p.StartTime + "-" + p.EndTime
		}
		if ev.Type == EventHolidayCreated {
			return fmt.Sprintf("Studio closed on %s (%s)", p.Date, span), nil
		}
		return fmt.Sprintf("Closure removed: %s (%s)", p.Date, span), nil
	}
	return "", fmt.Errorf("no staff alert for %s", ev.Type)
}
