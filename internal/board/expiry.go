package board

import "time"

// MinuteOfDay returns the wall-clock minutes since midnight of t in t's
// location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// IsExpired reports whether the range has fully elapsed: the current
// minute of day is at or past the range's end.  A malformed range never
// expires.
func IsExpired(effectiveTime string, now time.Time) bool {
	_, end, err := RangeMinutes(effectiveTime)
	if err != nil {
		return false
	}
	return MinuteOfDay(now) >= end
}

// DateKey is the calendar date of t used to key the daily reset.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
