package models

import (
	"fmt"
	"time"
)

// Period is the time window a pipeline run covers
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a period name
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (want daily, weekly or monthly)", ErrInvalidPeriod, s)
}

// Days is the window length in days
func (p Period) Days() int {
	switch p {
	case PeriodDaily:
		return 1
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 30
	}
	return 0
}

// WindowStart returns the start of the window ending at end
func (p Period) WindowStart(end time.Time) time.Time {
	return end.AddDate(0, 0, -p.Days())
}

// KeepsHistory reports whether runs of this period are snapshotted
func (p Period) KeepsHistory() bool {
	return p == PeriodDaily
}
