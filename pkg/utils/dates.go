// Package utils provides common utility functions for revgrowth.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical rendering of a calendar date.
const DateLayout = "2006-01-02"

// Layouts tried by ParseDate, in order. Layouts that carry a time of day or
// an offset are reduced to the calendar date as written.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// Month-only layouts (Screener.in column headers). These resolve to the
// last day of the month since the column is a quarter ending that month.
var monthLayouts = []string{
	"Jan 2006",
	"January 2006",
	"Jan-2006",
	"2006-01",
}

// ParseDate parses a date string in any of the formats providers are known
// to send and returns the canonical calendar date (see NormalizeDate).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse date: empty string")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDate(t), nil
		}
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return EndOfMonth(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognized format", s)
}

// NormalizeDate strips time of day and timezone from t, keeping the
// calendar date as seen in t's own location. The result is midnight UTC,
// so two normalized dates compare by calendar day alone.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the canonical date of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
