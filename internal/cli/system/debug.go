package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/studyos/internal/cli"
)

type DebugCmd struct {
	DataPath   *DebugDataPathCmd   `cmd:"" help:"Show the data path."`
	DumpMonth  *DebugDumpMonthCmd  `cmd:"" help:"Dump one month as JSON."`
	DumpYearly *DebugDumpYearlyCmd `cmd:"" help:"Dump the yearly activity counts as JSON."`
}

type DebugDataPathCmd struct{}

func (cmd *DebugDataPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpMonthCmd struct {
	Date string `arg:"" optional:"" help:"Any date in the month (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpMonthCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(cmd.Date, ctx.Today())
	if err != nil {
		return err
	}
	table, err := ctx.LoadMonth(date)
	if err != nil {
		return fmt.Errorf("failed to load month: %w", err)
	}
	return printJSON(table)
}

type DebugDumpYearlyCmd struct {
	Year int `arg:"" optional:"" help:"Year to dump (default: current year)."`
}

func (cmd *DebugDumpYearlyCmd) Run(ctx *cli.Context) error {
	year := cmd.Year
	if year == 0 {
		year = ctx.Today().Year()
	}
	counts, err := ctx.Store.ListYearly(year)
	if err != nil {
		return fmt.Errorf("failed to list activity: %w", err)
	}
	return printJSON(counts)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
