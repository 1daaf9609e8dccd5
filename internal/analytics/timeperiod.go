package analytics

import (
	"fmt"
	"time"
)

// TimePeriod is a relative window ending now.
type TimePeriod string

const (
	LastWeek     TimePeriod = "LAST_WEEK"
	Last2Weeks   TimePeriod = "LAST_2_WEEKS"
	Last4Weeks   TimePeriod = "LAST_4_WEEKS"
	Last30Days   TimePeriod = "LAST_30_DAYS"
	Last90Days   TimePeriod = "LAST_90_DAYS"
	Last6Months  TimePeriod = "LAST_6_MONTHS"
	LastYear     TimePeriod = "LAST_YEAR"
	DefaultRange            = Last6Months
)

func ParseTimePeriod(s string) (TimePeriod, error) {
	if s == "" {
		return DefaultRange, nil
	}
	tp := TimePeriod(s)
	if _, ok := tp.start(time.Time{}); !ok {
		return "", fmt.Errorf("unknown time period %q", s)
	}
	return tp, nil
}

func (tp TimePeriod) start(now time.Time) (time.Time, bool) {
	switch tp {
	case LastWeek:
		return now.AddDate(0, 0, -7), true
	case Last2Weeks:
		return now.AddDate(0, 0, -14), true
	case Last4Weeks:
		return now.AddDate(0, 0, -28), true
	case Last30Days:
		return now.AddDate(0, 0, -30), true
	case Last90Days:
		return now.AddDate(0, 0, -90), true
	case Last6Months:
		return now.AddDate(0, -6, 0), true
	case LastYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// Range resolves the period against now. Unknown values fall back to the default.
func (tp TimePeriod) Range(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start, ok := tp.start(now)
	if !ok {
		start, _ = DefaultRange.start(now)
	}
	return start, now
}

func isAtLeastOneYear(start, end time.Time) bool {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return e.Sub(s) > 365*24*time.Hour
}

// DetermineAggregation picks a bucket width suited to the span:
// up to 30 days daily, up to a year weekly, monthly beyond.
func DetermineAggregation(start, end time.Time) AggregationPeriod {
	if end.Sub(start) <= 30*24*time.Hour {
		return Daily
	}
	if isAtLeastOneYear(start, end) {
		return Monthly
	}
	return Weekly
}
