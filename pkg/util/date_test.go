package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestTruncateToHour(t *testing.T) {
	in := time.Date(2025, 3, 2, 14, 37, 9, 12, time.UTC)
	got := TruncateToHour(in)
	want := time.Date(2025, 3, 2, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDayWindow(t *testing.T) {
	in := time.Date(2025, 3, 2, 14, 37, 9, 0, time.UTC)
	from, to := DayWindow(in)
	if !from.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", from)
	}
	if to.Sub(from) != 24*time.Hour {
		t.Fatalf("unexpected window %v", to.Sub(from))
	}
}

func TestHourStamp(t *testing.T) {
	in := time.Date(2025, 3, 2, 7, 59, 0, 0, time.UTC)
	if got := HourStamp(in); got != "2025030207" {
		t.Fatalf("unexpected stamp %q", got)
	}
}
