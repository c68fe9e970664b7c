package models

import "time"

type Holiday struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"` // full-day, time-slot
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Holiday) IsFullDay() bool {
	return h.Type == HolidayFullDay
}

// Interval returns the blocked span. Full-day holidays have empty bounds.
func (h *Holiday) Interval() Interval {
	return Interval{Date: h.Date, Start: h.StartTime, End: h.EndTime}
}

// HasInterval reports whether both bounds are set.
func (h *Holiday) HasInterval() bool {
	return h.StartTime != "" && h.EndTime != ""
}
