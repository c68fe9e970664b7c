package worker

import (
	"fmt"
	"strings"

	"studiodesk/internal/models"
)

func customerEmail(taskType string, b *models.Booking) (subject, body string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", b.CustomerName)

	switch taskType {
	case models.TaskEmailBookingApproved:
		subject = "Your booking is confirmed"
		sb.WriteString("Your session has been approved.\n\n")
	default:
		subject = "We received your booking request"
		sb.WriteString("Thanks for your request. We will confirm it shortly.\n\n")
	}

	fmt.Fprintf(&sb, "Date: %s\nTime: %s - %s\nPackage: %s\n", b.Date, b.StartTime, b.EndTime, b.PackageType)
	if b.Note != "" {
		fmt.Fprintf(&sb, "Note: %s\n", b.Note)
	}
	return subject, sb.String()
}

func staffMessage(b *models.Booking) string {
	return fmt.Sprintf("New booking request\n%s (%s, %s)\n%s %s-%s\n%s\n/approve %s",
		b.CustomerName, b.CustomerEmail, b.CustomerPhone,
		b.Date, b.StartTime, b.EndTime, b.PackageType, b.ID)
}
