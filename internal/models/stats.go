package models

type NextBooking struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Package string `json:"package"`
}

type CountChange struct {
	Count  int64  `json:"count"`
	Change string `json:"change,omitempty"`
}

type MonthlyCount struct {
	Month    string `json:"month"` // YYYY-MM
	Bookings int64  `json:"bookings"`
}

type PackageCount struct {
	Package  string `json:"package"`
	Bookings int64  `json:"bookings"`
}

type DashboardStats struct {
	NextBooking          *NextBooking   `json:"next_booking"`
	ActiveBookings       CountChange    `json:"active_bookings"`
	FutureActiveBookings int64          `json:"future_active_bookings"`
	TotalBookings        CountChange    `json:"total_bookings"`
	BookingsThisMonth    CountChange    `json:"bookings_this_month"`
	NewClients           CountChange    `json:"new_clients"`
	PendingBookings      int64          `json:"pending_bookings"`
	BookingsByMonth      []MonthlyCount `json:"bookings_by_month"`
	BookingsByPackage    []PackageCount `json:"bookings_by_package"`
}
