package models

import "time"

// Period selects the window a Summary covers.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod accepts weekly and monthly.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly:
		return Period(s), true
	default:
		return "", false
	}
}

// Summary rolls a subject's events up over a period. From and To are
// inclusive calendar days.
type Summary struct {
	Period      Period    `json:"period"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	TotalDays   int       `json:"total_days"`
	PresentDays int       `json:"present_days"`
	LateDays    int       `json:"late_days"`
	AbsentDays  int       `json:"absent_days"`
	Events      []*Event  `json:"events"`
	GeneratedAt time.Time `json:"generated_at"`
}
