package models

import "time"

type Booking struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	Date          string    `json:"date"`       // YYYY-MM-DD
	StartTime     string    `json:"start_time"` // HH:MM
	EndTime       string    `json:"end_time"`   // HH:MM
	PackageType   string    `json:"package_type"`
	Note          string    `json:"note,omitempty"`
	Status        string    `json:"status"` // pending, approved, disapproved
	GoogleEventID string    `json:"google_event_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// Interval returns the time span the booking occupies.
func (b *Booking) Interval() Interval {
	return Interval{Date: b.Date, Start: b.StartTime, End: b.EndTime}
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status != StatusDisapproved
}

// BookingFilter narrows booking listings. Empty fields match everything.
type BookingFilter struct {
	Date   string
	Status string
}
