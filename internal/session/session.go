// Package session holds the dashboard's explicit view state.
package session

import (
	"time"

	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/models"
)

// Cursor addresses a cell of the study grid. Col 0..2 are the
// name, rating and status columns; day columns follow.
type Cursor struct {
	Row int
	Col int
}

// State is everything the render cycle needs besides loaded data
type State struct {
	Year        int
	Month       time.Month
	ShowHistory bool
	View        constants.AnalyticsView
	Cursor      Cursor
}

// New selects today's year when it is in range, else the first selectable
// year. The month is today's month when the year is current, else January.
func New(today time.Time) State {
	s := State{Year: constants.MinYear, Month: time.January, View: constants.ViewYearly}
	if today.Year() >= constants.MinYear && today.Year() <= constants.MaxYear {
		s.Year = today.Year()
		s.Month = today.Month()
	}
	return s
}

// IsCurrent reports whether the selected month contains today.
func (s State) IsCurrent(today time.Time) bool {
	return s.Year == today.Year() && s.Month == today.Month()
}

// VisibleDays narrows expected to today and the days just before it when
// the current month is shown with history collapsed. Otherwise every day is visible.
func (s State) VisibleDays(expected []models.DayKey, today time.Time) []models.DayKey {
	if s.ShowHistory || !s.IsCurrent(today) {
		return expected
	}
	key := models.NewDayKey(today)
	for i, k := range expected {
		if k == key {
			start := i - constants.RecentWindowDays
			if start < 0 {
				start = 0
			}
			return expected[start : i+1]
		}
	}
	return expected
}

func (s *State) NextMonth() {
	if s.Month == time.December {
		if s.Year >= constants.MaxYear {
			return
		}
		s.Year++
		s.Month = time.January
	} else {
		s.Month++
	}
	s.resetCursor()
}

func (s *State) PrevMonth() {
	if s.Month == time.January {
		if s.Year <= constants.MinYear {
			return
		}
		s.Year--
		s.Month = time.December
	} else {
		s.Month--
	}
	s.resetCursor()
}

func (s *State) NextYear() {
	if s.Year < constants.MaxYear {
		s.Year++
		s.resetCursor()
	}
}

func (s *State) PrevYear() {
	if s.Year > constants.MinYear {
		s.Year--
		s.resetCursor()
	}
}

// SetMonth jumps to a specific month, clamping the year to the selectable range.
func (s *State) SetMonth(year int, month time.Month) {
	if year < constants.MinYear {
		year = constants.MinYear
	}
	if year > constants.MaxYear {
		year = constants.MaxYear
	}
	if month < time.January || month > time.December {
		month = time.January
	}
	s.Year, s.Month = year, month
	s.resetCursor()
}

func (s *State) ToggleHistory() {
	s.ShowHistory = !s.ShowHistory
	s.Cursor.Col = 0
}

// CycleView advances to the next analytics view, wrapping around.
func (s *State) CycleView() {
	s.View = (s.View + 1) % (constants.ViewVolume + 1)
}

// Clamp keeps the cursor inside a grid of rows x cols.
func (s *State) Clamp(rows, cols int) {
	if s.Cursor.Row >= rows {
		s.Cursor.Row = rows - 1
	}
	if s.Cursor.Row < 0 {
		s.Cursor.Row = 0
	}
	if s.Cursor.Col >= cols {
		s.Cursor.Col = cols - 1
	}
	if s.Cursor.Col < 0 {
		s.Cursor.Col = 0
	}
}

func (s *State) resetCursor() {
	s.Cursor = Cursor{}
}
