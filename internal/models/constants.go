package models

const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusDisapproved = "disapproved"
)

const (
	HolidayFullDay  = "full-day"
	HolidayTimeSlot = "time-slot"
	// HolidayHalfDay is accepted on input and stored as HolidayTimeSlot.
	HolidayHalfDay = "half-day"
)

const (
	TaskCalendarCreate       = "calendar_create"
	TaskCalendarDelete       = "calendar_delete"
	TaskEmailBookingCreated  = "email_booking_created"
	TaskEmailBookingApproved = "email_booking_approved"
	TaskStaffNotify          = "staff_notify"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusRetry      = "retry"
	TaskStatusFailed     = "failed"
	TaskStatusCompleted  = "completed"
)

// PackageTypes lists every bookable package, in dashboard order.
var PackageTypes = []string{
	"P-basic",
	"P-standard",
	"P-professional",
	"V-basic",
	"V-standard",
	"V-professional",
	"C-professional",
	"C-platinum",
	"Individual-QuickSession",
	"Individual-Branding&Creative",
	"Individual-Executive",
	"FamilySession",
	"Graduation-ALLINCLUSIVESession",
	"Family-Maternity",
	"Family-ALLINCLUSIVESession",
	"Graduation-QuickSession",
	"Graduation-StandardSession",
	"ModelPortfolio-Pro",
	"ModelPortfolio-Standard",
}

var GalleryCategories = []string{
	"FASHION",
	"COMMERCIAL",
	"EDITORIAL",
	"BEAUTY",
	"CORPORATE_PROFILES",
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// WorkerQueueSize is the in-memory outbox wakeup buffer.
	WorkerQueueSize = 1000

	// DefaultMaxAdvanceDays bounds how far ahead a booking may be placed.
	DefaultMaxAdvanceDays = 365

	// DashboardMonths is the bookings-per-month window on the dashboard.
	DashboardMonths = 6
)

func IsPackageType(v string) bool {
	return contains(PackageTypes, v)
}

func IsGalleryCategory(v string) bool {
	return contains(GalleryCategories, v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
