package schedule

import (
	"errors"
	"strings"
	"time"
)

// DayLayout is the accepted format for explicit dates.
const DayLayout = "2006-01-02"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time { return c.T }

// StartOfDay strips the time-of-day, keeping the location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns midnight of the clock's current day.
func Today(c Clock) (time.Time, error) {
	now := c.Now()
	if now.IsZero() {
		return time.Time{}, &ClockError{Input: "", Err: errors.New("clock returned zero time")}
	}
	return StartOfDay(now), nil
}

// ParseDay parses a YYYY-MM-DD date at midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, &ClockError{Input: s, Err: err}
	}
	return t, nil
}
