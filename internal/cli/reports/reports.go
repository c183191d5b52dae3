// Package reports prints the dashboard's read-only views to stdout.
package reports

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/analytics"
	"github.com/julianstephens/studyos/internal/cli"
	"github.com/julianstephens/studyos/internal/heatmap"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/session"
	"github.com/julianstephens/studyos/internal/tui/components/grid"
)

var out io.Writer = os.Stdout

// MonthFlags selects a month; both default to the current one.
type MonthFlags struct {
	Year  int    `help:"Year (default: current year)."`
	Month string `help:"Month number or name (default: current month, or January of another year)."`
}

func (f MonthFlags) resolve(today time.Time) (int, time.Month, error) {
	year, month := today.Year(), today.Month()
	if f.Year != 0 && f.Year != year {
		year, month = f.Year, time.January
	}
	if f.Month != "" {
		m, err := cli.ParseMonth(f.Month)
		if err != nil {
			return 0, 0, err
		}
		month = m
	}
	if err := cli.CheckYear(year); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func (f MonthFlags) load(ctx *cli.Context) (models.MonthlyTable, error) {
	year, month, err := f.resolve(ctx.Today())
	if err != nil {
		return models.MonthlyTable{}, err
	}
	return ctx.Store.LoadMonth(year, month)
}

type ShowCmd struct {
	MonthFlags `embed:""`
	All        bool `help:"Show every day of the current month instead of the recent days."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	table, err := c.load(ctx)
	if err != nil {
		return err
	}
	today := ctx.Today()

	s := session.State{Year: table.Year, Month: table.Month, ShowHistory: c.All}
	expected := activity.ExpectedDays(table.Year, table.Month)
	days := s.VisibleDays(expected, today)

	fmt.Fprintf(out, "%s %d  🔥 %d Days\n\n", table.Month, table.Year, cli.Streak(table, today))
	fmt.Fprintln(out, grid.Render(table, days, models.NewDayKey(today), nil))
	return nil
}

type StreakCmd struct {
	Date string `help:"Any date in the month (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	day, err := cli.ParseDate(c.Date, ctx.Today())
	if err != nil {
		return err
	}
	table, err := ctx.LoadMonth(day)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "🔥 %d Days\n", cli.Streak(table, day))
	return nil
}

type HeatmapCmd struct {
	Year  int    `help:"Year (default: current year)."`
	Month string `help:"Show one month's calendar instead of the whole year."`
}

func (c *HeatmapCmd) Run(ctx *cli.Context) error {
	today := ctx.Today()
	flags := MonthFlags{Year: c.Year, Month: c.Month}
	year, month, err := flags.resolve(today)
	if err != nil {
		return err
	}

	if c.Month != "" {
		table, err := ctx.Store.LoadMonth(year, month)
		if err != nil {
			return err
		}
		todayDay := 0
		if year == today.Year() && month == today.Month() {
			todayDay = today.Day()
		}
		counts := activity.DailyCounts(table, activity.ExpectedDays(year, month))
		fmt.Fprintln(out, heatmap.RenderMonth(heatmap.LayoutMonth(year, month, counts), todayDay))
		return nil
	}

	yearly, err := ctx.Store.ListYearly(year)
	if err != nil {
		return err
	}
	layout := heatmap.LayoutYear(activity.YearSeries(year, yearly))
	if layout.Empty() {
		fmt.Fprintln(out, "No data recorded for this year yet.")
		return nil
	}
	fmt.Fprintf(out, "%d\n%s\n\n%s\n", year, heatmap.RenderYear(layout), heatmap.Legend())
	return nil
}

type StatsCmd struct {
	MonthFlags `embed:""`
	View       string `enum:"streaks,volume" default:"streaks" help:"streaks: days and tier per subject; volume: bars sorted by days."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	table, err := c.load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %d\n\n", table.Month, table.Year)
	if c.View == "volume" {
		fmt.Fprintln(out, analytics.RenderVolume(analytics.Volume(table)))
		return nil
	}
	fmt.Fprintln(out, analytics.RenderStreaks(analytics.Totals(table)))
	return nil
}
