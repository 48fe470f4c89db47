// Package period assigns calendar dates to month and week buckets.
//
// Weeks are fixed 7-day slices counted from the first of the month
// (days 1-7 are week1, 8-14 are week2, ...). The assignment depends on the
// date alone, so a partial re-import always lands in the same bucket as the
// full-month import that preceded it.
package period

import (
	"fmt"
	"time"
)

var weekdayLabels = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// MonthKey formats t as "YYYY-MM". Lexicographic order of month keys is
// chronological order.
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// WeekIndex returns the 1-based week number of t within its month.
func WeekIndex(t time.Time) int { return (t.Day()-1)/7 + 1 }

// WeekKey returns the week bucket name for t, e.g. "week2".
func WeekKey(t time.Time) string { return fmt.Sprintf("week%d", WeekIndex(t)) }

// Bucket resolves a date to its month key, week key and week index.
func Bucket(t time.Time) (monthKey, weekKey string, index int) {
	return MonthKey(t), WeekKey(t), WeekIndex(t)
}

// WeekDates returns the first and last calendar day covered by the given
// week index, clamped to the end of the month.
func WeekDates(year int, month time.Month, index int) (start, end time.Time) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	start = monthStart.AddDate(0, 0, (index-1)*7)
	end = start.AddDate(0, 0, 6)
	if end.After(monthEnd) {
		end = monthEnd
	}
	return start, end
}

// WeekRange renders the week's date span the way the dataset stores it,
// e.g. "2024-03-08 ~ 2024-03-14".
func WeekRange(year int, month time.Month, index int) string {
	start, end := WeekDates(year, month, index)
	return start.Format("2006-01-02") + " ~ " + end.Format("2006-01-02")
}

// DayOfWeek returns the Japanese weekday label for t.
func DayOfWeek(t time.Time) string { return weekdayLabels[int(t.Weekday())] }

// ParseMonthKey is the inverse of MonthKey.
func ParseMonthKey(key string) (year int, month time.Month, err error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, fmt.Errorf("bad month key %q: %w", key, err)
	}
	return t.Year(), t.Month(), nil
}
