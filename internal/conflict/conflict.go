// Package conflict decides whether a proposed interval may be reserved
// given the holidays and bookings already stored for its date.
package conflict

import (
	"studiodesk/internal/models"
)

// Reason identifies why an interval was rejected.
type Reason string

const (
	ReasonHolidayFullDay       Reason = "HOLIDAY_FULL_DAY"
	ReasonHolidayTimeSlot      Reason = "HOLIDAY_TIME_SLOT"
	ReasonBookingSlotTaken     Reason = "BOOKING_SLOT_TAKEN"
	ReasonHolidayAlreadyExists Reason = "HOLIDAY_ALREADY_EXISTS"
)

var messages = map[Reason]string{
	ReasonHolidayFullDay:       "Selected date is a holiday",
	ReasonHolidayTimeSlot:      "Selected time slot falls on a holiday period",
	ReasonBookingSlotTaken:     "Time slot already booked",
	ReasonHolidayAlreadyExists: "Holiday already exists for this date/time period",
}

// Message returns the user-facing text for the reason.
func (r Reason) Message() string {
	if msg, ok := messages[r]; ok {
		return msg
	}
	return string(r)
}

// Error is returned when a proposed interval collides with a stored record.
type Error struct {
	Reason Reason
	// WithID is the id of the booking or holiday that caused the conflict.
	WithID string
}

func (e *Error) Error() string {
	return e.Reason.Message()
}

// Is lets errors.Is match on the reason alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.WithID == "" && t.Reason == e.Reason
}

func newError(reason Reason, withID string) *Error {
	return &Error{Reason: reason, WithID: withID}
}

// Sentinel values for errors.Is checks.
var (
	ErrHolidayFullDay       = &Error{Reason: ReasonHolidayFullDay}
	ErrHolidayTimeSlot      = &Error{Reason: ReasonHolidayTimeSlot}
	ErrBookingSlotTaken     = &Error{Reason: ReasonBookingSlotTaken}
	ErrHolidayAlreadyExists = &Error{Reason: ReasonHolidayAlreadyExists}
)

// Overlaps reports whether a and b share any time on the same date.
// Intervals are half-open: one ending exactly when the other starts is fine.
func Overlaps(a, b models.Interval) bool {
	if a.Date != b.Date {
		return false
	}
	return (a.Start >= b.Start && a.Start < b.End) || // a starts inside b
		(a.End > b.Start && a.End <= b.End) || // a ends inside b
		(a.Start <= b.Start && a.End >= b.End) // a contains b
}

// OverlapsClosed is the closed-interval variant used between holidays.
// Touching endpoints count as an overlap.
func OverlapsClosed(a, b models.Interval) bool {
	if a.Date != b.Date {
		return false
	}
	return b.Start <= a.End && b.End >= a.Start
}

// CheckBookingConflict returns the first booking that still holds its slot
// and overlaps the candidate.
func CheckBookingConflict(candidate models.Interval, bookings []*models.Booking) (*models.Booking, bool) {
	for _, b := range bookings {
		if b == nil || !b.Active() {
			continue
		}
		if Overlaps(candidate, b.Interval()) {
			return b, true
		}
	}
	return nil, false
}

// CheckHolidayConflict returns the first holiday blocking the candidate.
// A full-day holiday blocks the whole date without comparing times.
func CheckHolidayConflict(candidate models.Interval, holidays []*models.Holiday) (*models.Holiday, Reason, bool) {
	for _, h := range holidays {
		if h == nil || h.Date != candidate.Date {
			continue
		}
		if h.IsFullDay() {
			return h, ReasonHolidayFullDay, true
		}
	}
	for _, h := range holidays {
		if h == nil || h.Date != candidate.Date || h.IsFullDay() || !h.HasInterval() {
			continue
		}
		if Overlaps(candidate, h.Interval()) {
			return h, ReasonHolidayTimeSlot, true
		}
	}
	return nil, "", false
}

// CheckExistingHolidayConflict returns the first stored holiday that a new
// holiday of holidayType would collide with.
func CheckExistingHolidayConflict(candidate models.Interval, holidayType string, holidays []*models.Holiday) (*models.Holiday, bool) {
	for _, h := range holidays {
		if h == nil || h.Date != candidate.Date {
			continue
		}
		if holidayType == models.HolidayFullDay || h.IsFullDay() {
			return h, true
		}
		if !h.HasInterval() || candidate.Start == "" || candidate.End == "" {
			continue
		}
		if OverlapsClosed(candidate, h.Interval()) {
			return h, true
		}
	}
	return nil, false
}

// ResolveBooking applies the booking creation rule: holidays are checked
// before bookings. It returns nil when the candidate may be stored.
func ResolveBooking(candidate models.Interval, holidays []*models.Holiday, bookings []*models.Booking) *Error {
	if h, reason, ok := CheckHolidayConflict(candidate, holidays); ok {
		return newError(reason, h.ID)
	}
	if b, ok := CheckBookingConflict(candidate, bookings); ok {
		return newError(ReasonBookingSlotTaken, b.ID)
	}
	return nil
}

// ResolveHoliday applies the holiday creation rule.
func ResolveHoliday(candidate models.Interval, holidayType string, holidays []*models.Holiday) *Error {
	if h, ok := CheckExistingHolidayConflict(candidate, holidayType, holidays); ok {
		return newError(ReasonHolidayAlreadyExists, h.ID)
	}
	return nil
}
