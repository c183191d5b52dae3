// Package grid renders a monthly table as a subjects x days grid.
package grid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/session"
)

// FixedCols is the number of columns before the first day column.
const FixedCols = 3

const (
	nameWidth   = 22
	ratingWidth = 7
	statusWidth = 11
	dayWidth    = 3

	fixedWidth = nameWidth + ratingWidth + statusWidth
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true)

	todayHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")).
				Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	studiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	statusColors = map[models.Status]lipgloss.Color{
		models.StatusActive:    lipgloss.Color("42"),
		models.StatusCompleted: lipgloss.Color("39"),
		models.StatusOnHold:    lipgloss.Color("214"),
		models.StatusDropped:   lipgloss.Color("240"),
	}
)

// Render draws table restricted to days. today marks its column with ⭐
// when visible. A nil cursor draws no highlight.
func Render(table models.MonthlyTable, days []models.DayKey, today models.DayKey, cursor *session.Cursor) string {
	if len(table.Subjects) == 0 {
		return emptyStyle.Render("No subjects. Press 'a' to add one.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(pad("Subject/Skill", nameWidth)))
	b.WriteString(headerStyle.Render(pad("Rating", ratingWidth)))
	b.WriteString(headerStyle.Render(pad("Status", statusWidth)))
	for _, k := range days {
		if k == today {
			b.WriteString(todayHeaderStyle.Render(pad("⭐", dayWidth)))
			continue
		}
		b.WriteString(headerStyle.Render(pad(fmt.Sprintf("%02d", k.Day()), dayWidth)))
	}
	b.WriteString("\n")

	for row, s := range table.Subjects {
		at := func(col int) bool {
			return cursor != nil && cursor.Row == row && cursor.Col == col
		}
		b.WriteString(cell(nameStyle, pad(s.Name, nameWidth), at(0)))
		b.WriteString(cell(lipgloss.NewStyle(), pad(fmt.Sprint(s.Rating), ratingWidth), at(1)))
		b.WriteString(cell(lipgloss.NewStyle().Foreground(statusColors[s.Status]), pad(string(s.Status), statusWidth), at(2)))
		for i, k := range days {
			mark, style := "·", emptyStyle
			if s.Flags[k] {
				mark, style = "✓", studiedStyle
			}
			b.WriteString(cell(style, pad(mark, dayWidth), at(FixedCols+i)))
		}
		if row < len(table.Subjects)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func cell(style lipgloss.Style, text string, selected bool) string {
	if selected {
		style = style.Reverse(true)
	}
	return style.Render(text)
}

// pad fits s into width cells, leaving at least one space after it.
func pad(s string, width int) string {
	if lipgloss.Width(s) > width-1 {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r)+"…") > width-1 {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

// Model wraps the grid in a viewport for terminals narrower than the month.
type Model struct {
	viewport viewport.Model
	table    models.MonthlyTable
	days     []models.DayKey
	today    models.DayKey
	cursor   session.Cursor
	width    int
	height   int
	// firstDay is the index of the leftmost day column on screen.
	firstDay int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

// SetData replaces the table and the visible day columns.
func (m *Model) SetData(table models.MonthlyTable, days []models.DayKey, today models.DayKey) {
	m.table = table
	m.days = days
	m.today = today
	m.render()
}

func (m *Model) SetCursor(c session.Cursor) {
	m.cursor = c
	m.render()
}

// Days returns the visible day columns in order.
func (m Model) Days() []models.DayKey {
	return m.days
}

func (m *Model) render() {
	days, cursor := m.dayWindow()
	content := Render(m.table, days, m.today, &cursor)
	m.viewport.SetContent(content)
	// Keep the cursor row on screen.
	if m.viewport.Height > 1 {
		line := m.cursor.Row + 1
		if line < m.viewport.YOffset {
			m.viewport.SetYOffset(line)
		} else if line >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(line - m.viewport.Height + 1)
		}
	}
}

// dayWindow scrolls the day columns so the cursor's day fits beside the
// pinned subject, rating and status columns. The returned cursor is relative
// to the window.
func (m *Model) dayWindow() ([]models.DayKey, session.Cursor) {
	cursor := m.cursor
	fit := len(m.days)
	if m.width > 0 {
		fit = max((m.width-fixedWidth)/dayWidth, 1)
	}
	if fit >= len(m.days) {
		m.firstDay = 0
		return m.days, cursor
	}

	if col := cursor.Col - FixedCols; col >= 0 {
		if col < m.firstDay {
			m.firstDay = col
		} else if col >= m.firstDay+fit {
			m.firstDay = col - fit + 1
		}
	}
	m.firstDay = max(min(m.firstDay, len(m.days)-fit), 0)

	if cursor.Col >= FixedCols {
		cursor.Col -= m.firstDay
	}
	return m.days[m.firstDay : m.firstDay+fit], cursor
}
