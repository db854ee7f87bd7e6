package schedule

import "time"

// date is a calendar day with no time-of-day or zone.
type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) date {
	return date{year: t.Year(), month: t.Month(), day: t.Day()}
}

func (d date) before(o date) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// in returns midnight of d in loc.
func (d date) in(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// daysUntil counts calendar days from d to o. UTC has no DST, so the
// difference is always a whole number of 24h days.
func (d date) daysUntil(o date) int {
	return int(o.in(time.UTC).Sub(d.in(time.UTC)).Hours() / 24)
}

// Normalize resolves year/month/day the way calendar overflow does: months
// outside 1..12 carry into the year and days past the end of the month carry
// into the following months. Day 31 in a 30-day month becomes day 1 of the
// next month.
func Normalize(year, month, day int) (int, time.Month, int) {
	y, m := AddMonths(year, time.January, month-1)
	for day > DaysIn(y, m) {
		day -= DaysIn(y, m)
		y, m = AddMonths(y, m, 1)
	}
	for day < 1 {
		y, m = AddMonths(y, m, -1)
		day += DaysIn(y, m)
	}
	return y, m, day
}

func normalizeDate(year int, month time.Month, day int) date {
	y, m, d := Normalize(year, int(month), day)
	return date{year: y, month: m, day: d}
}

// AddMonths shifts a year/month pair by n months.
func AddMonths(year int, month time.Month, n int) (int, time.Month) {
	idx := int(month) - 1 + n
	year += floorDiv(idx, 12)
	return year, time.Month(idx-floorDiv(idx, 12)*12) + 1
}

// DaysIn returns the length of a month.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if isLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
