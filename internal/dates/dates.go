// Package dates holds the calendar arithmetic shared by the financial
// computations. All comparisons work on whole days in UTC.
package dates

import "time"

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b. Negative when
// b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MonthKey returns t's calendar month as "2006-01".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthStart returns the first day of t's month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKeys returns the keys of the n calendar months ending with the
// month of end, oldest first.
func MonthKeys(end time.Time, n int) []string {
	keys := make([]string, n)
	m := MonthStart(end)
	for i := n - 1; i >= 0; i-- {
		keys[i] = MonthKey(m)
		m = m.AddDate(0, -1, 0)
	}
	return keys
}
