package system

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/julianstephens/studyos/internal/cli"
)

type InitCmd struct {
	Source string `help:"Workbook directory, .db file or connection string to copy existing months from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Source != "" && samePath(c.Source, ctx.Store.GetConfigPath()) {
		return fmt.Errorf("source and destination are the same: %s", c.Source)
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized studyos storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		n, err := copyFrom(ctx, c.Source)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Printf("Copied %d month(s).\n", n)
	}
	return nil
}

// copyFrom loads the store at source and copies every month into ctx.Store.
func copyFrom(ctx *cli.Context, source string) (int, error) {
	src, err := cli.OpenStore(source)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source: %w", err)
	}
	defer src.Close()

	return cli.CopyMonths(src, ctx.Store, func(year int, month time.Month) {
		fmt.Printf("  %s %d\n", month, year)
	})
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
