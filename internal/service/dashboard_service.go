package service

import (
	"context"
	"fmt"
	"time"

	"studiodesk/internal/domain"
	"studiodesk/internal/models"
)

type DashboardService struct {
	store domain.StatsStore
	loc   *time.Location
}

func NewDashboardService(store domain.StatsStore, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{store: store, loc: loc}
}

// Stats computes the admin dashboard as seen at now.
func (s *DashboardService) Stats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	now = now.In(s.loc)
	today := now.Format(models.DateLayout)
	nowTime := now.Format(models.TimeLayout)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthEnd := monthStart.AddDate(0, 0, -1)

	ms := monthStart.Format(models.DateLayout)
	lms := lastMonthStart.Format(models.DateLayout)
	lme := lastMonthEnd.Format(models.DateLayout)

	stats := &models.DashboardStats{}

	next, err := s.store.NextApprovedBooking(ctx, today, nowTime)
	if err != nil {
		return nil, err
	}
	if next != nil {
		stats.NextBooking = &models.NextBooking{
			Date:    dayLabel(next.Date, now),
			Time:    fmt.Sprintf("%s to %s", next.StartTime, next.EndTime),
			Package: next.PackageType,
		}
	}

	var activeNow, activeLast, totalNow, totalLast int64
	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&activeNow, func() (int64, error) { return s.store.CountActiveBookings(ctx, ms, today, nowTime) }},
		{&activeLast, func() (int64, error) { return s.store.CountBookingsBetween(ctx, models.StatusApproved, lms, lme) }},
		{&totalNow, func() (int64, error) { return s.store.CountBookingsBetween(ctx, "", ms, today) }},
		{&totalLast, func() (int64, error) { return s.store.CountBookingsBetween(ctx, "", lms, lme) }},
		{&stats.FutureActiveBookings, func() (int64, error) { return s.store.CountBookingsAfter(ctx, models.StatusApproved, today) }},
		{&stats.TotalBookings.Count, func() (int64, error) { return s.store.CountBookings(ctx, "") }},
		{&stats.PendingBookings, func() (int64, error) { return s.store.CountBookings(ctx, models.StatusPending) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	stats.ActiveBookings = models.CountChange{Count: activeNow, Change: percentChange(activeNow, activeLast)}
	stats.BookingsThisMonth = models.CountChange{Count: totalNow, Change: percentChange(totalNow, totalLast)}

	// customers.created_at is stored in the process zone
	clientsNow, err := s.store.CountCustomersCreatedBetween(ctx, monthStart.In(time.Local), now.In(time.Local))
	if err != nil {
		return nil, err
	}
	clientsLast, err := s.store.CountCustomersCreatedBetween(ctx, lastMonthStart.In(time.Local), monthStart.Add(-time.Nanosecond).In(time.Local))
	if err != nil {
		return nil, err
	}
	stats.NewClients = models.CountChange{Count: clientsNow, Change: percentChange(clientsNow, clientsLast)}

	firstMonth := monthStart.AddDate(0, -(models.DashboardMonths - 1), 0)
	perMonth, err := s.store.BookingsPerMonth(ctx, firstMonth.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}
	for i := 0; i < models.DashboardMonths; i++ {
		month := firstMonth.AddDate(0, i, 0).Format("2006-01")
		stats.BookingsByMonth = append(stats.BookingsByMonth, models.MonthlyCount{Month: month, Bookings: perMonth[month]})
	}

	perPackage, err := s.store.BookingsPerPackage(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range models.PackageTypes {
		stats.BookingsByPackage = append(stats.BookingsByPackage, models.PackageCount{Package: p, Bookings: perPackage[p]})
	}

	return stats, nil
}

// percentChange formats the month-over-month change. A zero baseline
// reads as +100%.
func percentChange(current, previous int64) string {
	if previous == 0 {
		return "+100%"
	}
	change := float64(current-previous) / float64(previous) * 100
	if change > 0 {
		return fmt.Sprintf("+%.1f%%", change)
	}
	return fmt.Sprintf("%.1f%%", change)
}

func dayLabel(date string, now time.Time) string {
	d, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return d.Format("Mon, Jan 2")
	}
}
