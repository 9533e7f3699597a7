// Package timeutil provides day and month boundary helpers in server-local
// time. "Today" for dashboards and booking windows is the server's local
// midnight-to-midnight day, so every caller goes through these helpers instead
// of slicing time.Time by hand. No external dependencies - uses only standard
// library.
package timeutil

import (
	"fmt"
	"time"
)

// Now returns the current time in the server's local timezone.
func Now() time.Time {
	return time.Now().Local()
}

// Date creates a local time with the given date at midnight.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

// DateTime creates a local time with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local)
}

// StartOfDay returns the start of the day (00:00:00) in local time.
func StartOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in local time.
func EndOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, time.Local)
}

// StartOfMonth returns the start of the month in local time.
func StartOfMonth(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.Local)
}

// EndOfMonth returns the end of the month in local time.
func EndOfMonth(t time.Time) time.Time {
	start := StartOfMonth(t)
	return EndOfDay(start.AddDate(0, 1, -1))
}

// SameDay reports whether two times fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// MonthKey formats a year/month pair as "2024-01" for report labels.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// FormatDate formats a time as "2006-01-02" in local time.
func FormatDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// FormatDateTime formats a time as "2006-01-02 15:04" in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// DaysUntil returns the number of whole local days from now until t.
// Returns a negative count when t is in the past.
func DaysUntil(now, t time.Time) int {
	return int(StartOfDay(t).Sub(StartOfDay(now)).Hours() / 24)
}
