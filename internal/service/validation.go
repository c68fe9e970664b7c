package service

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"studiodesk/internal/models"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

const minPhoneLength = 10

func validDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func validTime(s string) bool {
	return timeRe.MatchString(s)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	// reject display-name forms like "Bob <bob@x>"
	return err == nil && addr.Address == s
}

// checkTimeRange validates both bounds and their order.
func checkTimeRange(start, end string) *ValidationError {
	if !validTime(start) {
		return invalid("start_time", "Start time must be in HH:MM format")
	}
	if !validTime(end) {
		return invalid("end_time", "End time must be in HH:MM format")
	}
	if start >= end {
		return invalid("end_time", "End time must be after start time")
	}
	return nil
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
