package expiry

import (
	"math"
	"time"
)

// Clock supplies the current instant. Handlers and the notifier share one so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Loc (Local when nil).
type SystemClock struct {
	Loc *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// StartOfDay returns the civil date of t (read in t's own location) at 00:00 UTC.
// Normalizing to UTC keeps day differences free of DST gaps.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is StartOfDay of the clock's current instant.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now())
}

// DaysBetween returns the signed number of calendar days from a to b.
// Partial days round away from zero, so 23 hours ahead is one day away.
func DaysBetween(a, b time.Time) int {
	diff := StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24
	days := math.Ceil(math.Abs(diff))
	if diff < 0 {
		return -int(days)
	}
	return int(days)
}
