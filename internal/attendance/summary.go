package attendance

import (
	"time"

	"bioclock/internal/attendance/models"
)

// SummaryWindow returns the inclusive day range a period covers, ending on
// the local day of now.
func SummaryWindow(period models.Period, now time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	to = time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch period {
	case models.PeriodMonthly:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		from = to.AddDate(0, 0, -6)
	}
	return from, to
}

// BuildSummary counts days in [from, to] by their check-in status. Days
// without a check-in are absent.
func BuildSummary(period models.Period, from, to time.Time, events []*models.Event) models.Summary {
	total := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		total++
	}

	checkIns := make(map[string]models.Status)
	for _, e := range events {
		if e.Type == models.TypeCheckIn {
			checkIns[e.Day] = e.Status
		}
	}

	s := models.Summary{
		Period:    period,
		From:      from.Format(models.DayLayout),
		To:        to.Format(models.DayLayout),
		TotalDays: total,
		Events:    events,
	}
	if s.Events == nil {
		s.Events = []*models.Event{}
	}
	for _, status := range checkIns {
		switch status {
		case models.StatusPresent:
			s.PresentDays++
		case models.StatusLate:
			s.LateDays++
		}
	}
	s.AbsentDays = max(total-len(checkIns), 0)
	return s
}
