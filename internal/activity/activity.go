package activity

import (
	"time"

	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/models"
)

// DailyActivity is the aggregate flag for one day: true if any subject was studied
type DailyActivity struct {
	Key    models.DayKey
	Active bool
}

// DayCount is the number of subjects studied on one date
type DayCount struct {
	Date  time.Time
	Count int
}

// DaysInMonth returns the calendar length of the month, accounting for leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExpectedDays generates the ordered day keys of a month. An invalid month yields nil.
func ExpectedDays(year int, month time.Month) []models.DayKey {
	if month < time.January || month > time.December {
		return nil
	}
	n := DaysInMonth(year, month)
	keys := make([]models.DayKey, n)
	for d := 1; d <= n; d++ {
		keys[d-1] = models.DayKeyFor(year, month, d)
	}
	return keys
}

// Aggregate ORs every subject's flag for each day key, preserving key order.
func Aggregate(table models.MonthlyTable, days []models.DayKey) []DailyActivity {
	out := make([]DailyActivity, len(days))
	for i, k := range days {
		out[i].Key = k
		for _, s := range table.Subjects {
			if s.Flags[k] {
				out[i].Active = true
				break
			}
		}
	}
	return out
}

// DailyCounts counts the subjects studied on each day key.
// Keys that do not parse as dates are skipped.
func DailyCounts(table models.MonthlyTable, days []models.DayKey) []DayCount {
	out := make([]DayCount, 0, len(days))
	for _, k := range days {
		d, ok := k.Date()
		if !ok {
			continue
		}
		n := 0
		for _, s := range table.Subjects {
			if s.Flags[k] {
				n++
			}
		}
		out = append(out, DayCount{Date: d, Count: n})
	}
	return out
}

// CountsByDate keys DailyCounts by ISO date for merging into a yearly series.
func CountsByDate(table models.MonthlyTable) map[string]int {
	counts := DailyCounts(table, ExpectedDays(table.Year, table.Month))
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Date.Format(constants.DateFormat)] = c.Count
	}
	return out
}

// Normalize returns a copy of table with every row defaulted and its flags
// aligned to exactly the month's calendar days.
func Normalize(table models.MonthlyTable) models.MonthlyTable {
	out := table.Clone()
	days := ExpectedDays(out.Year, out.Month)
	for i := range out.Subjects {
		s := &out.Subjects[i]
		s.Status = models.CoerceStatus(string(s.Status))
		if s.Rating < 0 {
			s.Rating = 0
		}
		flags := make(map[models.DayKey]bool, len(days))
		for _, k := range days {
			flags[k] = s.Flags[k]
		}
		s.Flags = flags
	}
	return out
}

// YearSeries densifies a date->count mapping to every day of the year, in order.
// Entries for other years or malformed dates are ignored.
func YearSeries(year int, counts map[string]int) []DayCount {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	series := make([]DayCount, 0, 366)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		n := counts[d.Format(constants.DateFormat)]
		if n < 0 {
			n = 0
		}
		series = append(series, DayCount{Date: d, Count: n})
	}
	return series
}
