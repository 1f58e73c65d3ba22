package service

import (
	"time"

	"timelapse/internal/config"
)

// DayWindow is the part of the day treated as daytime, both ends inclusive.
type DayWindow struct {
	Start config.ClockTime
	End   config.ClockTime
}

// IsDay reports whether t falls inside w. The hour must lie in
// [Start.Hour, End.Hour]; on the boundary hours the minute is checked too.
func IsDay(t time.Time, w DayWindow) bool {
	hour, minute := t.Hour(), t.Minute()

	if hour < w.Start.Hour || hour > w.End.Hour {
		return false
	}
	if hour == w.Start.Hour && minute < w.Start.Minute {
		return false
	}
	if hour == w.End.Hour && minute > w.End.Minute {
		return false
	}
	return true
}

// WithinDateRange reports whether t's calendar date is on or before end.
func WithinDateRange(t time.Time, end config.Date) bool {
	year, month, day := t.Date()

	if year > end.Year {
		return false
	}
	if year == end.Year {
		if month > end.Month {
			return false
		}
		if month == end.Month {
			return day <= end.Day
		}
	}
	return true
}

// OnOrAfterStart reports whether t's calendar date is on or after start.
// Only consulted when run.enforce_start_date is set.
func OnOrAfterStart(t time.Time, start config.Date) bool {
	year, month, day := t.Date()
	return !(config.Date{Year: year, Month: month, Day: day}).Before(start)
}

// MaxExposure is the longest shutter time allowed for a capture interval:
// the device may expose for at most fraction of its own interval.
func MaxExposure(interval time.Duration, fraction float64) time.Duration {
	return time.Duration(float64(interval) * fraction)
}
