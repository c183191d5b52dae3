// Package heatmap lays out day counts as calendar grids and quantizes them into color buckets.
package heatmap

import (
	"time"

	"github.com/julianstephens/studyos/internal/activity"
)

const (
	// Weeks is the number of week columns in a yearly grid
	Weeks = 54
	// Weekdays is the number of rows, Monday first
	Weekdays = 7
)

// Palette holds one color per bucket, from empty to most intense
var Palette = [5]string{"#161b22", "#0e4429", "#006d32", "#26a641", "#39d353"}

// Cell is one square of a heatmap grid
type Cell struct {
	Date    time.Time
	Day     int // day of month; 0 for a blank cell
	Count   int
	Bucket  int
	Visible bool
}

// Color returns the palette entry for the cell's bucket.
func (c Cell) Color() string {
	return Palette[c.Bucket]
}

// Bucket quantizes count against max into 0..4. Zero is always bucket 0.
func Bucket(count, max int) int {
	if count <= 0 {
		return 0
	}
	if max < 1 {
		max = 1
	}
	intensity := float64(count) / float64(max)
	switch {
	case intensity <= 0.25:
		return 1
	case intensity <= 0.50:
		return 2
	case intensity <= 0.75:
		return 3
	default:
		return 4
	}
}

// ColorFor is Bucket mapped through the palette.
func ColorFor(count, max int) string {
	return Palette[Bucket(count, max)]
}

// MonthAnchor places a month label above the week column holding its first day
type MonthAnchor struct {
	Month time.Month
	Week  int
}

// YearLayout is a 54x7 grid indexed [week][weekday]
type YearLayout struct {
	Year    int
	Cells   [Weeks][Weekdays]Cell
	Anchors []MonthAnchor
	Max     int
}

// LayoutYear positions a dense yearly series on the week grid. The first
// element of series defines the starting weekday offset. Cells no day maps
// to stay invisible.
func LayoutYear(series []activity.DayCount) YearLayout {
	var l YearLayout
	if len(series) == 0 {
		return l
	}
	l.Year = series[0].Date.Year()

	for _, d := range series {
		if d.Count > l.Max {
			l.Max = d.Count
		}
	}

	start := mondayIndex(series[0].Date.Weekday())
	seen := make(map[time.Month]bool, 12)
	for _, d := range series {
		week := (d.Date.YearDay() - 1 + start) / Weekdays
		if week >= Weeks {
			continue
		}
		wd := mondayIndex(d.Date.Weekday())
		l.Cells[week][wd] = Cell{
			Date:    d.Date,
			Day:     d.Date.Day(),
			Count:   d.Count,
			Bucket:  Bucket(d.Count, l.Max),
			Visible: true,
		}
		if d.Date.Day() == 1 && !seen[d.Date.Month()] {
			seen[d.Date.Month()] = true
			l.Anchors = append(l.Anchors, MonthAnchor{Month: d.Date.Month(), Week: week})
		}
	}
	return l
}

// Empty reports whether no day in the layout has any activity.
func (l YearLayout) Empty() bool {
	return l.Max == 0
}

// MonthLayout is a Monday-first calendar, one row per week
type MonthLayout struct {
	Year  int
	Month time.Month
	Weeks [][Weekdays]Cell
	Max   int
}

// LayoutMonth builds the calendar grid for one month. Counts for days
// outside the month are ignored. The bucketing max never drops below 1.
func LayoutMonth(year int, month time.Month, counts []activity.DayCount) MonthLayout {
	l := MonthLayout{Year: year, Month: month, Max: 1}

	byDay := make(map[int]int, len(counts))
	for _, c := range counts {
		if c.Date.Year() != year || c.Date.Month() != month {
			continue
		}
		byDay[c.Date.Day()] = c.Count
		if c.Count > l.Max {
			l.Max = c.Count
		}
	}

	n := activity.DaysInMonth(year, month)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var week [Weekdays]Cell
	col := mondayIndex(first.Weekday())
	for day := 1; day <= n; day++ {
		date := first.AddDate(0, 0, day-1)
		count := byDay[day]
		week[col] = Cell{
			Date:    date,
			Day:     day,
			Count:   count,
			Bucket:  Bucket(count, l.Max),
			Visible: true,
		}
		col++
		if col == Weekdays {
			l.Weeks = append(l.Weeks, week)
			week = [Weekdays]Cell{}
			col = 0
		}
	}
	if col > 0 {
		l.Weeks = append(l.Weeks, week)
	}
	return l
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
