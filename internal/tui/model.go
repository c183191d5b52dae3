// Package tui is the interactive monthly dashboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/logger"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/session"
	"github.com/julianstephens/studyos/internal/storage"
	"github.com/julianstephens/studyos/internal/tui/components/grid"
)

type AddSubjectFormModel struct {
	Name string
}

type Model struct {
	store   storage.Provider
	now     func() time.Time
	session session.State
	state   constants.SessionState
	keys    KeyMap
	help    help.Model
	grid    grid.Model

	table  models.MonthlyTable
	yearly map[string]int

	loadErr error
	saveErr error

	form          *huh.Form
	addForm       *AddSubjectFormModel
	pendingDelete string

	width    int
	height   int
	quitting bool
}

// NewModel loads the month containing today. now may be nil.
func NewModel(store storage.Provider, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		store:   store,
		now:     now,
		session: session.New(now()),
		state:   constants.StateDashboard,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		grid:    grid.New(0, 0),
	}
	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == constants.StateLoadError {
		return []key.Binding{m.keys.Reload, m.keys.Quit}
	}
	return []key.Binding{m.keys.Toggle, m.keys.PrevMonth, m.keys.NextMonth, m.keys.View, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right},
		{m.keys.Toggle, m.keys.RatingUp, m.keys.RatingDown, m.keys.Status, m.keys.Add, m.keys.Delete},
		{m.keys.PrevMonth, m.keys.NextMonth, m.keys.PrevYear, m.keys.NextYear, m.keys.History, m.keys.View},
		{m.keys.Reload, m.keys.Quit, m.keys.Help},
	}
}

// reload reads the selected month and the year's activity from the store.
// A failure switches to the full-screen error view.
func (m *Model) reload() {
	table, err := m.store.LoadMonth(m.session.Year, m.session.Month)
	if err == nil {
		var yearly map[string]int
		yearly, err = m.store.ListYearly(m.session.Year)
		if err == nil {
			m.table, m.yearly = table, yearly
		}
	}
	if err != nil {
		logger.Error("Failed to load month", "year", m.session.Year, "month", m.session.Month.String(), "error", err)
		m.loadErr = err
		m.state = constants.StateLoadError
		return
	}

	m.loadErr = nil
	m.saveErr = nil
	if m.state == constants.StateLoadError {
		m.state = constants.StateDashboard
	}
	m.refreshGrid()
}

// visibleDays applies the recent-window rule to the selected month.
func (m Model) visibleDays() []models.DayKey {
	expected := activity.ExpectedDays(m.session.Year, m.session.Month)
	return m.session.VisibleDays(expected, m.now())
}

func (m *Model) refreshGrid() {
	days := m.visibleDays()
	m.session.Clamp(len(m.table.Subjects), grid.FixedCols+len(days))
	m.grid.SetData(m.table, days, models.NewDayKey(m.now()))
	m.grid.SetCursor(m.session.Cursor)
	m.resizeGrid()
}

// resizeGrid fits the grid beside the month panel, tall enough for every row
// unless the terminal is too short.
func (m *Model) resizeGrid() {
	height := len(m.table.Subjects) + 1
	if m.height > 0 {
		if avail := m.height - 22; avail < height {
			height = max(avail, 3)
		}
	}
	width := 0
	if m.width > 0 {
		width = max(m.width-monthPanelWidth-4, 20)
	}
	m.grid.SetSize(width, height)
}

// edit applies fn to a copy of the table and saves it. When the save fails
// the edit stays on screen with a banner until the next successful save or reload.
func (m *Model) edit(fn func(t *models.MonthlyTable) bool) {
	table := m.table.Clone()
	if !fn(&table) {
		return
	}
	if err := m.store.SaveMonth(table); err != nil {
		logger.Warn("Failed to save month", "year", table.Year, "month", table.Month.String(), "error", err)
		m.table = table
		m.saveErr = err
		m.refreshGrid()
		return
	}
	m.reload()
}

// selected returns the subject under the cursor.
func (m Model) selected() (models.SubjectRecord, bool) {
	row := m.session.Cursor.Row
	if row < 0 || row >= len(m.table.Subjects) {
		return models.SubjectRecord{}, false
	}
	return m.table.Subjects[row], true
}

// selectedDay returns the day column under the cursor.
func (m Model) selectedDay() (models.DayKey, bool) {
	i := m.session.Cursor.Col - grid.FixedCols
	days := m.grid.Days()
	if i < 0 || i >= len(days) {
		return "", false
	}
	return days[i], true
}

func (m Model) saveBanner() string {
	if m.saveErr == nil {
		return ""
	}
	if errors.Is(m.saveErr, errors.ErrLocked) {
		return "⚠ Close the workbook to save changes"
	}
	return fmt.Sprintf("⚠ Save failed: %v", strings.TrimSpace(m.saveErr.Error()))
}

// NewAddSubjectForm creates the form for adding a subject row
func NewAddSubjectForm(fm *AddSubjectFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("subject name cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
