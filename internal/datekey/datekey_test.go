package datekey

import (
	"testing"
	"time"
)

func TestDayOf_UTC(t *testing.T) {
	instant := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	if got := DayOf(instant); got != "2025-03-14" {
		t.Errorf("DayOf = %s, want 2025-03-14", got)
	}
}

func TestDayOf_ConvertsLocalTimeToUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("UTC-5", -5*3600)
	instant := time.Date(2025, 3, 14, 23, 30, 0, 0, loc)

	if got := DayOf(instant); got != "2025-03-15" {
		t.Errorf("DayOf = %s, want 2025-03-15", got)
	}
}

func TestMonthOf(t *testing.T) {
	instant := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	if got := MonthOf(instant); got != "2025-12" {
		t.Errorf("MonthOf = %s, want 2025-12", got)
	}
}

func TestStartOfDay(t *testing.T) {
	instant := time.Date(2025, 3, 14, 15, 9, 26, 123, time.UTC)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	if got := StartOfDay(instant); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}

func TestStartOfMonth(t *testing.T) {
	instant := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := StartOfMonth(instant); !got.Equal(want) {
		t.Errorf("StartOfMonth = %v, want %v", got, want)
	}
}

func TestSameDay_AcrossMidnight(t *testing.T) {
	before := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)
	after := time.Date(2025, 3, 15, 0, 0, 1, 0, time.UTC)

	if SameDay(before, after) {
		t.Error("expected different days across midnight")
	}

	if !SameDay(before, before.Add(-23*time.Hour)) {
		t.Error("expected same day within one calendar day")
	}
}

func TestSameMonth_AcrossYearBoundary(t *testing.T) {
	dec := time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)
	jan := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if SameMonth(dec, jan) {
		t.Error("expected different months across year boundary")
	}
}
