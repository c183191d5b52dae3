package analytics

import (
	"sort"

	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/models"
)

// SubjectTotal is one subject's count of studied days in a month
type SubjectTotal struct {
	Name   string
	Status models.Status
	Days   int
	Tier   string
}

// Tier maps a monthly total to its streak badge.
func Tier(days int) string {
	switch {
	case days > constants.StreakHotThreshold:
		return "🔥🔥🔥"
	case days > constants.StreakWarmThreshold:
		return "🔥"
	default:
		return "❄️"
	}
}

// Totals lists every subject's studied days in table order.
func Totals(table models.MonthlyTable) []SubjectTotal {
	out := make([]SubjectTotal, 0, len(table.Subjects))
	for _, s := range table.Subjects {
		n := s.StudiedDays()
		out = append(out, SubjectTotal{Name: s.Name, Status: s.Status, Days: n, Tier: Tier(n)})
	}
	return out
}

// Volume is Totals sorted ascending by days. Ties keep table order.
func Volume(table models.MonthlyTable) []SubjectTotal {
	out := Totals(table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Days < out[j].Days
	})
	return out
}

// Max returns the largest total, or 0 for an empty list.
func Max(totals []SubjectTotal) int {
	m := 0
	for _, t := range totals {
		if t.Days > m {
			m = t.Days
		}
	}
	return m
}
