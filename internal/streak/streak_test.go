package streak

import (
	"testing"
	"time"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/models"
)

// run builds consecutive days of February 2025 starting on the 1st.
func run(flags ...bool) []activity.DailyActivity {
	out := make([]activity.DailyActivity, len(flags))
	for i, f := range flags {
		out[i] = activity.DailyActivity{Key: models.DayKeyFor(2025, time.February, i+1), Active: f}
	}
	return out
}

func feb(day int) time.Time {
	return time.Date(2025, time.February, day, 12, 0, 0, 0, time.Local)
}

func TestCompute(t *testing.T) {
	outside := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		days  []activity.DailyActivity
		today time.Time
		want  int
	}{
		{"empty", nil, outside, 0},
		{"single false", run(false), outside, 0},
		{"single true", run(true), outside, 1},
		{"all true", run(true, true, true, true), outside, 4},
		{"grace one day", run(true, true, false), outside, 2},
		{"grace does not reach two days", run(true, false, false), outside, 0},
		{"broken run", run(true, false, true, true), outside, 2},
		{"today clips future", run(true, true, true, true, true, true), feb(3), 3},
		{"today not logged yet", run(true, true, false, true), feb(3), 2},
		{"future days ignored when today active", run(true, true, false, false), feb(2), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.days, tt.today); got != tt.want {
				t.Errorf("Compute() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompute_FebruaryScenario(t *testing.T) {
	flags := make([]bool, 28)
	for i := 0; i < 5; i++ {
		flags[i] = true
	}
	days := run(flags...)

	if got := Compute(days, feb(5)); got != 5 {
		t.Errorf("today Feb 5: got %d, want 5", got)
	}
	if got := Compute(days, feb(6)); got != 5 {
		t.Errorf("today Feb 6 (not yet logged): got %d, want 5", got)
	}
	if got := Compute(days, feb(7)); got != 0 {
		t.Errorf("today Feb 7: got %d, want 0", got)
	}
}

func TestCompute_MonotonicUnderAppend(t *testing.T) {
	outside := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	var flags []bool
	prev := 0
	for i := 0; i < 20; i++ {
		flags = append(flags, true)
		got := Compute(run(flags...), outside)
		if got < prev {
			t.Fatalf("streak dropped from %d to %d after appending a true day", prev, got)
		}
		prev = got
	}
	if prev != 20 {
		t.Errorf("all-true run of 20 = %d", prev)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	days := run(true, true, false)
	_ = Compute(days, feb(3))
	if !days[0].Active || !days[1].Active || days[2].Active {
		t.Error("input mutated")
	}
}
