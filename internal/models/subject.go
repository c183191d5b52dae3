package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a subject
type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusOnHold    Status = "On Hold"
	StatusDropped   Status = "Dropped"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusActive, StatusCompleted, StatusOnHold, StatusDropped}

// ParseStatus matches a status case-insensitively, ignoring spaces, dashes and underscores.
func ParseStatus(s string) (Status, bool) {
	want := squash(s)
	for _, st := range Statuses {
		if squash(string(st)) == want {
			return st, true
		}
	}
	return "", false
}

func squash(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Next returns the status that follows s in display order, wrapping around.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusActive
}

// SubjectRecord is one row of a monthly table
type SubjectRecord struct {
	Name   string          `json:"name"`
	Rating int             `json:"rating"`
	Status Status          `json:"status"`
	Flags  map[DayKey]bool `json:"flags"`
}

// NewSubject returns an active, unrated subject with no studied days.
func NewSubject(name string) SubjectRecord {
	return SubjectRecord{
		Name:   name,
		Rating: 0,
		Status: StatusActive,
		Flags:  make(map[DayKey]bool),
	}
}

// StudiedDays counts the days flagged true.
func (s SubjectRecord) StudiedDays() int {
	n := 0
	for _, v := range s.Flags {
		if v {
			n++
		}
	}
	return n
}

// MonthlyTable holds every subject row for one (year, month)
type MonthlyTable struct {
	Year     int             `json:"year"`
	Month    time.Month      `json:"month"`
	Subjects []SubjectRecord `json:"subjects"`
}

// Index returns the row index of the named subject.
func (t MonthlyTable) Index(name string) (int, bool) {
	for i, s := range t.Subjects {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}

// AddSubject appends a new subject row. It reports false and leaves the
// table untouched if the name is blank or already present.
func (t *MonthlyTable) AddSubject(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, exists := t.Index(name); exists {
		return false
	}
	t.Subjects = append(t.Subjects, NewSubject(name))
	return true
}

// RemoveSubject deletes the named row, reporting whether it existed.
func (t *MonthlyTable) RemoveSubject(name string) bool {
	i, ok := t.Index(name)
	if !ok {
		return false
	}
	t.Subjects = append(t.Subjects[:i], t.Subjects[i+1:]...)
	return true
}

// Clone returns a deep copy so derived views never alias caller state.
func (t MonthlyTable) Clone() MonthlyTable {
	out := MonthlyTable{Year: t.Year, Month: t.Month}
	if t.Subjects == nil {
		return out
	}
	out.Subjects = make([]SubjectRecord, len(t.Subjects))
	for i, s := range t.Subjects {
		flags := make(map[DayKey]bool, len(s.Flags))
		for k, v := range s.Flags {
			flags[k] = v
		}
		s.Flags = flags
		out.Subjects[i] = s
	}
	return out
}

// DefaultSubjects are the rows seeded into a month that has never been stored.
func DefaultSubjects() []SubjectRecord {
	defaults := []struct {
		name   string
		status Status
	}{
		{"DSA (LeetCode)", StatusActive},
		{"React / Dev", StatusActive},
		{"Aptitude", StatusActive},
		{"CS Fundamentals", StatusOnHold},
	}
	rows := make([]SubjectRecord, 0, len(defaults))
	for _, d := range defaults {
		s := NewSubject(d.name)
		s.Status = d.status
		rows = append(rows, s)
	}
	return rows
}
