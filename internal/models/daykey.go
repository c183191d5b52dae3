package models

import (
	"strings"
	"time"

	"github.com/julianstephens/studyos/internal/constants"
)

// DayKey identifies one day column of a monthly table, e.g. "Date 2025-02-01"
type DayKey string

// NewDayKey builds the key for the calendar date of t in t's own location.
func NewDayKey(t time.Time) DayKey {
	return DayKeyFor(t.Year(), t.Month(), t.Day())
}

// DayKeyFor builds the key for a year, month and day of month.
func DayKeyFor(year int, month time.Month, day int) DayKey {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DayKey(constants.DayKeyPrefix + d.Format(constants.DateFormat))
}

// ParseDayKey accepts a column header and returns its key if it names a valid date.
func ParseDayKey(s string) (DayKey, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, constants.DayKeyPrefix) {
		return "", false
	}
	k := DayKey(s)
	if _, ok := k.Date(); !ok {
		return "", false
	}
	return k, true
}

// ISO returns the YYYY-MM-DD part of the key.
func (k DayKey) ISO() string {
	return strings.TrimPrefix(string(k), constants.DayKeyPrefix)
}

// Date parses the key into a UTC midnight time.
func (k DayKey) Date() (time.Time, bool) {
	t, err := time.Parse(constants.DateFormat, k.ISO())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Day returns the day of month, or 0 for a malformed key.
func (k DayKey) Day() int {
	t, ok := k.Date()
	if !ok {
		return 0
	}
	return t.Day()
}

func (k DayKey) String() string { return string(k) }
