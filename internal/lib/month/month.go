// Package month implements the calendar arithmetic behind entitlement windows.
package month

import (
	"math"
	"time"
)

// TrialDays is the length of the window granted by a zero-month package.
const TrialDays = 3

// AddMonths advances t by n calendar months. When the target month is shorter
// than t's day of month the result is clamped to the target month's last day,
// so Jan 31 + 1 month is Feb 29 in a leap year and Feb 28 otherwise.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// EndDate returns the end of an entitlement that starts at start and lasts
// durationMonths. A zero duration is the trial sentinel and yields TrialDays days.
func EndDate(start time.Time, durationMonths int) time.Time {
	if durationMonths <= 0 {
		return start.AddDate(0, 0, TrialDays)
	}
	return AddMonths(start, durationMonths)
}

// DaysRemaining reports how many started days are left until end. It never
// returns a negative number.
func DaysRemaining(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
