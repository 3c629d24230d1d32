package tax

import (
	"time"

	"github.com/google/uuid"
)

// Postgres keeps timestamps at microsecond precision, so period ends stop one microsecond
// before midnight to compare equal after a round trip.
const periodResolution = time.Microsecond

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-periodResolution)
}

// MonthWindow returns the calendar month containing t.
func MonthWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	start = start.AddDate(0, 0, 1-start.Day())
	return start, start.AddDate(0, 1, 0).Add(-periodResolution)
}

// QuarterWindow returns the calendar quarter containing t.
func QuarterWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start, _ := MonthWindow(t, loc)
	offset := (int(start.Month()) - 1) % 3
	start = start.AddDate(0, -offset, 0)
	return start, start.AddDate(0, 3, 0).Add(-periodResolution)
}

// YearWindow returns the calendar year containing t.
func YearWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	start = time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, start.Location())
	return start, start.AddDate(1, 0, 0).Add(-periodResolution)
}

// PeriodKey identifies a normalised period for locks, task ids and events.
func PeriodKey(start, end time.Time) string {
	return start.UTC().Format(time.RFC3339Nano) + "/" + end.UTC().Format(time.RFC3339Nano)
}

// periodID derives a stable aggregate id for events about one period.
func periodID(start, end time.Time) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("tax-period:"+PeriodKey(start, end)))
}
