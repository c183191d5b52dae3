package grid

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/session"
)

func testTable() models.MonthlyTable {
	table := models.MonthlyTable{Year: 2025, Month: time.February, Subjects: models.DefaultSubjects()}
	table.Subjects[0].Flags[models.DayKeyFor(2025, time.February, 3)] = true
	table.Subjects[0].Rating = 7
	return activity.Normalize(table)
}

func TestRender(t *testing.T) {
	table := testTable()
	days := activity.ExpectedDays(2025, time.February)[:5]
	today := models.DayKeyFor(2025, time.February, 5)

	out := Render(table, days, today, nil)
	lines := strings.Split(out, "\n")
	if len(lines) != 1+len(table.Subjects) {
		t.Fatalf("got %d lines, want header plus %d rows", len(lines), len(table.Subjects))
	}
	if !strings.Contains(lines[0], "⭐") || !strings.Contains(lines[0], "04") {
		t.Errorf("header = %q, want day numbers and a star for today", lines[0])
	}
	if strings.Contains(lines[0], "05") {
		t.Errorf("today's column should show the star, not its number: %q", lines[0])
	}
	if !strings.Contains(lines[1], "DSA (LeetCode)") || !strings.Contains(lines[1], "✓") || !strings.Contains(lines[1], "7") {
		t.Errorf("first row = %q", lines[1])
	}
	if strings.Contains(lines[2], "✓") {
		t.Errorf("second row should have no studied days: %q", lines[2])
	}
}

func TestRender_Empty(t *testing.T) {
	out := Render(models.MonthlyTable{Year: 2025, Month: time.March}, nil, "", nil)
	if !strings.Contains(out, "No subjects") {
		t.Errorf("empty table = %q", out)
	}
}

func TestRender_RowWidthsMatch(t *testing.T) {
	table := testTable()
	days := activity.ExpectedDays(2025, time.February)
	out := Render(table, days, "", &session.Cursor{Row: 1, Col: FixedCols + 2})
	lines := strings.Split(out, "\n")
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if got := lipgloss.Width(l); got != want {
			t.Errorf("line %d width = %d, want %d", i, got, want)
		}
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcdef", 4, "ab… "},
		{"⭐", 3, "⭐ "},
	}
	for _, tt := range tests {
		if got := pad(tt.in, tt.width); got != tt.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestModelKeepsCursorVisible(t *testing.T) {
	m := New(80, 3)
	table := testTable()
	m.SetData(table, activity.ExpectedDays(2025, time.February), "")
	m.SetCursor(session.Cursor{Row: 3})
	if !strings.Contains(m.View(), "CS Fundamentals") {
		t.Errorf("cursor row not scrolled into view:\n%s", m.View())
	}
	if len(m.Days()) != 28 {
		t.Errorf("Days() = %d, want 28", len(m.Days()))
	}
}

func TestModelScrollsDaysToCursor(t *testing.T) {
	m := New(0, 5)
	m.SetSize(fixedWidth+4*dayWidth, 5)
	m.SetData(testTable(), activity.ExpectedDays(2025, time.February), "")

	tests := []struct {
		name    string
		col     int
		want    string
		notWant string
	}{
		{"start of month", FixedCols, "01", "05"},
		{"scrolled right", FixedCols + 19, "20", "16"},
		{"last day", FixedCols + 27, "28", "24"},
		{"scrolled back left", FixedCols + 10, "11", "10"},
		{"fixed column keeps window", 1, "11", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetCursor(session.Cursor{Row: 0, Col: tt.col})
			header := strings.Split(m.View(), "\n")[0]
			if !strings.Contains(header, "Subject/Skill") {
				t.Errorf("fixed columns not pinned: %q", header)
			}
			if !strings.Contains(header, tt.want) || strings.Contains(header, tt.notWant) {
				t.Errorf("header = %q, want %s visible and %s hidden", header, tt.want, tt.notWant)
			}
		})
	}
}
