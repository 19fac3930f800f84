package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
)

// DateLocal formats a moment as the calendar day it belongs to (YYYY-MM-DD).
// Date and time strings are treated as already resolved to the user's wall
// clock, so no timezone conversion happens here.
func DateLocal(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", dateStr, err)
	}
	return t, nil
}

// ParseTimeOfDay parses an HH:MM:SS time-of-day string. HH:MM is accepted and
// normalized to a zero-second value.
func ParseTimeOfDay(timeStr string) (time.Time, error) {
	if t, err := time.Parse(constants.TimeFormat, timeStr); err == nil {
		return t, nil
	}
	t, err := time.Parse(constants.ClockFormat, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use HH:MM:SS: %w", timeStr, err)
	}
	return t, nil
}

// ISOWeekday returns the weekday of t using the 1=Monday..7=Sunday convention,
// normalizing Go's 0-indexed Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and a time-of-day
// string (HH:MM:SS) into a single wall-clock moment.
func CombineDateAndTime(dateStr, timeStr string) (time.Time, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}

	timeOfDay, err := ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), timeOfDay.Second(), 0,
		time.Local,
	), nil
}

// EndOfDay returns 23:59:59 of the given date (YYYY-MM-DD). Tasks with no
// scheduled time expire only once this moment has passed.
func EndOfDay(dateStr string) (time.Time, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, time.Local), nil
}

// WeekStart returns the Monday that starts the week containing t, truncated to
// midnight.
func WeekStart(t time.Time) time.Time {
	offset := ISOWeekday(t) - 1
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// ValidateDateFormat checks if the string is a valid YYYY-MM-DD date.
func ValidateDateFormat(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}

// ValidateTimeFormat checks if the string is a valid HH:MM:SS (or HH:MM) time.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTimeOfDay(timeStr)
	return err == nil
}
