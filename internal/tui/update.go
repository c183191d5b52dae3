package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeGrid()
		return m, nil
	}

	switch m.state {
	case constants.StateAddSubject:
		return m.updateAddSubject(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateLoadError:
		return m.updateLoadError(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(keyMsg, m.keys.Up):
		m.session.Cursor.Row--
		m.refreshGrid()
	case key.Matches(keyMsg, m.keys.Down):
		m.session.Cursor.Row++
		m.refreshGrid()
	case key.Matches(keyMsg, m.keys.Left):
		m.session.Cursor.Col--
		m.refreshGrid()
	case key.Matches(keyMsg, m.keys.Right):
		m.session.Cursor.Col++
		m.refreshGrid()

	case key.Matches(keyMsg, m.keys.Toggle):
		day, ok := m.selectedDay()
		if !ok {
			break
		}
		row := m.session.Cursor.Row
		m.edit(func(t *models.MonthlyTable) bool {
			if row >= len(t.Subjects) {
				return false
			}
			t.Subjects[row].Flags[day] = !t.Subjects[row].Flags[day]
			return true
		})
	case key.Matches(keyMsg, m.keys.RatingUp):
		m.editSelected(func(s *models.SubjectRecord) bool {
			s.Rating++
			return true
		})
	case key.Matches(keyMsg, m.keys.RatingDown):
		m.editSelected(func(s *models.SubjectRecord) bool {
			if s.Rating == 0 {
				return false
			}
			s.Rating--
			return true
		})
	case key.Matches(keyMsg, m.keys.Status):
		m.editSelected(func(s *models.SubjectRecord) bool {
			s.Status = s.Status.Next()
			return true
		})

	case key.Matches(keyMsg, m.keys.Add):
		m.addForm = &AddSubjectFormModel{}
		m.form = NewAddSubjectForm(m.addForm)
		m.state = constants.StateAddSubject
		return m, m.form.Init()
	case key.Matches(keyMsg, m.keys.Delete):
		if s, ok := m.selected(); ok {
			m.pendingDelete = s.Name
			m.state = constants.StateConfirmDelete
		}

	case key.Matches(keyMsg, m.keys.PrevMonth):
		m.session.PrevMonth()
		m.reload()
	case key.Matches(keyMsg, m.keys.NextMonth):
		m.session.NextMonth()
		m.reload()
	case key.Matches(keyMsg, m.keys.PrevYear):
		m.session.PrevYear()
		m.reload()
	case key.Matches(keyMsg, m.keys.NextYear):
		m.session.NextYear()
		m.reload()
	case key.Matches(keyMsg, m.keys.History):
		m.session.ToggleHistory()
		m.refreshGrid()
	case key.Matches(keyMsg, m.keys.View):
		m.session.CycleView()
	case key.Matches(keyMsg, m.keys.Reload):
		m.reload()
	}

	return m, nil
}

// editSelected edits the row under the cursor from any column.
func (m *Model) editSelected(fn func(s *models.SubjectRecord) bool) {
	row := m.session.Cursor.Row
	m.edit(func(t *models.MonthlyTable) bool {
		if row < 0 || row >= len(t.Subjects) {
			return false
		}
		return fn(&t.Subjects[row])
	})
}

func (m Model) updateAddSubject(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateDashboard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		name := m.addForm.Name
		m.state = constants.StateDashboard
		// AddSubject declines duplicates, which leaves the table unsaved.
		m.edit(func(t *models.MonthlyTable) bool {
			return t.AddSubject(name)
		})
		return m, nil
	case huh.StateAborted:
		m.state = constants.StateDashboard
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		name := m.pendingDelete
		m.pendingDelete = ""
		m.state = constants.StateDashboard
		m.edit(func(t *models.MonthlyTable) bool {
			return t.RemoveSubject(name)
		})
	case "n", "N", "esc", "q":
		m.pendingDelete = ""
		m.state = constants.StateDashboard
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateLoadError(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Reload):
		m.reload()
	case key.Matches(keyMsg, m.keys.PrevMonth):
		m.session.PrevMonth()
		m.reload()
	case key.Matches(keyMsg, m.keys.NextMonth):
		m.session.NextMonth()
		m.reload()
	}
	return m, nil
}
