// Package duration turns rental date ranges into billable units.
//
// DaysBetween is authoritative for pricing. MonthsBetween only feeds the
// months label shown next to a line, and the two are allowed to disagree at
// range boundaries: a rental from Jan 1 to Feb 1 bills 31 days but shows as
// 2 months.
package duration

import (
	"errors"
	"math"
	"time"
)

const (
	DateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

var (
	ErrRangeIncomplete = errors.New("start and end date must be set together")
	ErrRangeReversed   = errors.New("end date is before start date")
)

// DaysBetween returns ceil((end-start)/1 day), never less than 1.
// Unset dates bill as a single day.
func DaysBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	days := int(math.Ceil(float64(end.Sub(start)) / float64(day)))
	if days < 1 {
		return 1
	}
	return days
}

// MonthsBetween counts calendar months, adding one when the end day of month
// is on or after the start day of month. Never less than 1.
func MonthsBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() >= start.Day() {
		months++
	}
	if months < 1 {
		return 1
	}
	return months
}

// Validate accepts a fully unset range or one with end >= start.
func Validate(start, end time.Time) error {
	if start.IsZero() != end.IsZero() {
		return ErrRangeIncomplete
	}
	if end.Before(start) {
		return ErrRangeReversed
	}
	return nil
}

// ParseDate reads a YYYY-MM-DD calendar date in UTC. The empty string is the unset date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
