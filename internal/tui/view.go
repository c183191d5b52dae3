package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/analytics"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/heatmap"
	"github.com/julianstephens/studyos/internal/streak"
)

// monthPanelWidth is the rendered width of the monthly heatmap panel.
const monthPanelWidth = 24

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateLoadError:
		content = m.viewLoadError()
	case constants.StateAddSubject:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewDashboard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.help.View(m),
	)
}

func (m Model) viewDashboard() string {
	today := m.now()
	expected := activity.ExpectedDays(m.session.Year, m.session.Month)
	days := streak.Compute(activity.Aggregate(m.table, expected), today)

	title := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(fmt.Sprintf("%s %d", m.session.Month, m.session.Year)),
		" ",
		badgeStyle.Render(fmt.Sprintf("🔥 %d Days", days)),
	)
	if m.session.IsCurrent(today) && !m.session.ShowHistory {
		title += dimStyle.Render("  recent days only, h for full month")
	}

	todayDay := 0
	if m.session.IsCurrent(today) {
		todayDay = today.Day()
	}
	monthPanel := panelStyle.Render(heatmap.RenderMonth(
		heatmap.LayoutMonth(m.session.Year, m.session.Month, activity.DailyCounts(m.table, expected)),
		todayDay,
	))

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.grid.View(), "  ", monthPanel)

	parts := []string{title, ""}
	if banner := m.saveBanner(); banner != "" {
		parts = append(parts, dangerStyle.Render(banner), "")
	}
	parts = append(parts, body, "", m.viewTabs(), m.viewAnalytics())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewTabs() string {
	var tabs []string
	for v := constants.ViewYearly; v <= constants.ViewVolume; v++ {
		if m.session.View == v {
			tabs = append(tabs, activeTabStyle.Render(v.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(v.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewAnalytics() string {
	switch m.session.View {
	case constants.ViewStreaks:
		return analytics.RenderStreaks(analytics.Totals(m.table))
	case constants.ViewVolume:
		return analytics.RenderVolume(analytics.Volume(m.table))
	default:
		layout := heatmap.LayoutYear(activity.YearSeries(m.session.Year, m.yearly))
		if layout.Empty() {
			return dimStyle.Render("No data recorded for this year yet.")
		}
		return lipgloss.JoinVertical(lipgloss.Left, heatmap.RenderYear(layout), "", heatmap.Legend())
	}
}

func (m Model) viewLoadError() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Could not load %s %d", m.session.Month, m.session.Year)),
			"",
			fmt.Sprint(m.loadErr),
			"",
			"[r] Retry  [q] Quit",
		),
	)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q from %s %d?", m.pendingDelete, m.session.Month, m.session.Year)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
