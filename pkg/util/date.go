package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// TruncateToHour drops minutes and below, keeping the hour boundary.
func TruncateToHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// DayWindow returns the half-open [midnight, next midnight) UTC window containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	from := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(24 * time.Hour)
}

// HourStamp formats t as yyyymmddhh, the feature timestamp format.
func HourStamp(t time.Time) string {
	return t.UTC().Format("2006010215")
}
