// Package streak computes the current run of consecutive study days.
package streak

import (
	"time"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/models"
)

// Compute returns the current streak for an ordered run of daily activity.
//
// When today's key is in the run, later days are ignored. Otherwise the whole
// run counts, which is the case when viewing a past or future month. If the
// newest relevant day is inactive, the streak ending the day before is
// reported instead, so a day that has not been logged yet does not reset it.
func Compute(days []activity.DailyActivity, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	relevant := days
	todayKey := models.NewDayKey(today)
	for i, d := range days {
		if d.Key == todayKey {
			relevant = days[:i+1]
			break
		}
	}

	n := trailing(relevant)
	if n == 0 && len(relevant) > 1 {
		return trailing(relevant[:len(relevant)-1])
	}
	return n
}

func trailing(days []activity.DailyActivity) int {
	n := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Active {
			break
		}
		n++
	}
	return n
}
