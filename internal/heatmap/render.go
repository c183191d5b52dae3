package heatmap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const square = "■"

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	monthTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e6edf3")).
			Bold(true)

	todayStyle = lipgloss.NewStyle().
			Underline(true)
)

var weekdayLabels = [Weekdays]string{"Mon", "", "Wed", "", "Fri", "", ""}

func colorStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// RenderYear draws the yearly layout as colored squares, two columns per week,
// with month labels above their anchor columns.
func RenderYear(l YearLayout) string {
	const gutter = 4
	header := []rune(strings.Repeat(" ", gutter+Weeks*2))
	for _, a := range l.Anchors {
		name := []rune(a.Month.String()[:3])
		pos := gutter + a.Week*2
		for i, r := range name {
			if pos+i < len(header) {
				header[pos+i] = r
			}
		}
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(strings.TrimRight(string(header), " ")))
	b.WriteString("\n")
	for wd := 0; wd < Weekdays; wd++ {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", gutter, weekdayLabels[wd])))
		for w := 0; w < Weeks; w++ {
			c := l.Cells[w][wd]
			if !c.Visible {
				b.WriteString("  ")
				continue
			}
			b.WriteString(colorStyle(c.Color()).Render(square))
			b.WriteString(" ")
		}
		if wd < Weekdays-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderMonth draws a calendar panel with day numbers colored by bucket.
// A positive today marks that day of the month.
func RenderMonth(l MonthLayout, today int) string {
	var b strings.Builder
	b.WriteString(monthTitleStyle.Render(l.Month.String()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(" M  T  W  T  F  S  S"))
	for _, week := range l.Weeks {
		b.WriteString("\n")
		for i, c := range week {
			if i > 0 {
				b.WriteString(" ")
			}
			if !c.Visible {
				b.WriteString("  ")
				continue
			}
			style := colorStyle(c.Color())
			if c.Bucket == 0 {
				style = labelStyle
			}
			if c.Day == today {
				style = style.Inherit(todayStyle)
			}
			b.WriteString(style.Render(fmt.Sprintf("%2d", c.Day)))
		}
	}
	return b.String()
}

// Legend renders the palette from least to most.
func Legend() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Less "))
	for _, hex := range Palette {
		b.WriteString(colorStyle(hex).Render(square))
		b.WriteString(" ")
	}
	b.WriteString(labelStyle.Render("More"))
	return b.String()
}
