package leave

import "time"

const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ParseDate parses a "YYYY-MM-DD" calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// NormalizeDate drops the clock part of t, keeping its calendar date in t's location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InclusiveDays is the canonical day count of a leave span:
// floor((end - start) / 1 day) + 1. It works on Unix seconds because
// time.Duration overflows for spans longer than about 292 years.
func InclusiveDays(start, end time.Time) int {
	start, end = NormalizeDate(start), NormalizeDate(end)
	// Both are UTC midnights, so the difference is a whole number of days.
	return int((end.Unix()-start.Unix())/secondsPerDay) + 1
}

// DaysLeft is the number of days of a span ending on end that are still ahead
// of asOf. The as-of day itself counts as consumed.
func DaysLeft(asOf, end time.Time) int {
	left := InclusiveDays(asOf, end) - 1
	if left < 0 {
		return 0
	}
	return left
}

// Overlaps reports whether the closed date ranges [aStart, aEnd] and [bStart, bEnd] intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = NormalizeDate(aStart), NormalizeDate(aEnd)
	bStart, bEnd = NormalizeDate(bStart), NormalizeDate(bEnd)
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
