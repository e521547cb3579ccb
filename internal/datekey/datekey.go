// Package datekey derives the canonical day and month bucket keys used by
// the generation quota windows. All boundary math is done in UTC so server
// and stored timestamps agree on where a day starts.
package datekey

import "time"

// DayKey identifies a UTC calendar day, formatted YYYY-MM-DD.
type DayKey string

// MonthKey identifies a UTC calendar month, formatted YYYY-MM.
type MonthKey string

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// returns the day key for the current UTC date
func Today() DayKey {
	return DayOf(time.Now())
}

// returns the month key for the current UTC month
func CurrentMonth() MonthKey {
	return MonthOf(time.Now())
}

// returns the day key for the given instant
func DayOf(t time.Time) DayKey {
	return DayKey(t.UTC().Format(dayLayout))
}

// returns the month key for the given instant
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.UTC().Format(monthLayout))
}

// returns midnight UTC of the day containing t
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// returns midnight UTC of the first day of the month containing t
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// reports whether a and b fall on the same UTC day
func SameDay(a, b time.Time) bool {
	return DayOf(a) == DayOf(b)
}

// reports whether a and b fall in the same UTC month
func SameMonth(a, b time.Time) bool {
	return MonthOf(a) == MonthOf(b)
}
