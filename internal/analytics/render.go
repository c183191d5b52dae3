package analytics

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyos/internal/heatmap"
)

const barWidth = 30

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Width(24)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// RenderStreaks draws the per-subject totals table.
func RenderStreaks(totals []SubjectTotal) string {
	if len(totals) == 0 {
		return dimStyle.Render("No subjects yet.")
	}
	rows := []string{
		headerStyle.Render(fmt.Sprintf("%-24s %6s  %s", "Subject", "Days", "Streak")),
	}
	for _, t := range totals {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(truncate(t.Name, 23)),
			fmt.Sprintf(" %6d  %s", t.Days, t.Tier),
		))
	}
	return strings.Join(rows, "\n")
}

// RenderVolume draws one horizontal bar per subject, colored along the
// heatmap palette by the subject's share of the maximum.
func RenderVolume(totals []SubjectTotal) string {
	if len(totals) == 0 {
		return dimStyle.Render("No subjects yet.")
	}
	max := Max(totals)
	rows := make([]string, 0, len(totals))
	for _, t := range totals {
		width := 0
		if max > 0 {
			width = t.Days * barWidth / max
		}
		if t.Days > 0 && width == 0 {
			width = 1
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(heatmap.ColorFor(t.Days, max))).
			Render(strings.Repeat("█", width))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(truncate(t.Name, 23)),
			" ", bar, dimStyle.Render(fmt.Sprintf(" %d", t.Days)),
		))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
