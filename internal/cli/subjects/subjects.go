// Package subjects edits the rows of a monthly table from the command line.
package subjects

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyos/internal/cli"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/models"
)

// editMonth loads the month of date, applies fn and saves the whole table.
func editMonth(ctx *cli.Context, date string, fn func(t *models.MonthlyTable, day time.Time) error) error {
	day, err := cli.ParseDate(date, ctx.Today())
	if err != nil {
		return err
	}
	table, err := ctx.LoadMonth(day)
	if err != nil {
		return err
	}
	table = table.Clone()
	if err := fn(&table, day); err != nil {
		return err
	}
	return ctx.Store.SaveMonth(table)
}

func lookup(t *models.MonthlyTable, name string) (*models.SubjectRecord, error) {
	i, ok := t.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s %d", errors.ErrSubjectNotFound, name, t.Month, t.Year)
	}
	return &t.Subjects[i], nil
}

type AddCmd struct {
	Name string `arg:"" help:"Subject name."`
	Date string `help:"Any date in the month to edit (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	added := false
	err := editMonth(ctx, c.Date, func(t *models.MonthlyTable, _ time.Time) error {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("subject name cannot be empty")
		}
		added = t.AddSubject(c.Name)
		return nil
	})
	if err != nil {
		return err
	}
	if !added {
		fmt.Printf("ℹ %q already exists, nothing changed\n", strings.TrimSpace(c.Name))
		return nil
	}
	fmt.Printf("✓ Added %q\n", strings.TrimSpace(c.Name))
	return nil
}

type RemoveCmd struct {
	Name string `arg:"" help:"Subject name."`
	Date string `help:"Any date in the month to edit (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	err := editMonth(ctx, c.Date, func(t *models.MonthlyTable, _ time.Time) error {
		if !t.RemoveSubject(c.Name) {
			return fmt.Errorf("%w: %q in %s %d", errors.ErrSubjectNotFound, c.Name, t.Month, t.Year)
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Removed %q\n", c.Name)
	return nil
}

// MarkCmd toggles the studied flag of one subject on one day.
type MarkCmd struct {
	Name string `arg:"" help:"Subject name."`
	Date string `help:"Day to toggle (YYYY-MM-DD, 'today' or 'yesterday'). Defaults to today."`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	var studied bool
	var key models.DayKey
	err := editMonth(ctx, c.Date, func(t *models.MonthlyTable, day time.Time) error {
		s, err := lookup(t, c.Name)
		if err != nil {
			return err
		}
		key = models.NewDayKey(day)
		studied = !s.Flags[key]
		s.Flags[key] = studied
		return nil
	})
	if err != nil {
		return err
	}
	if studied {
		fmt.Printf("✓ %s studied on %s\n", c.Name, key.ISO())
	} else {
		fmt.Printf("· %s cleared on %s\n", c.Name, key.ISO())
	}
	return nil
}

type RateCmd struct {
	Name   string `arg:"" help:"Subject name."`
	Rating int    `arg:"" help:"Excellence rating (0 or more)."`
	Date   string `help:"Any date in the month to edit (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (c *RateCmd) Run(ctx *cli.Context) error {
	if c.Rating < 0 {
		return fmt.Errorf("rating cannot be negative: %d", c.Rating)
	}
	err := editMonth(ctx, c.Date, func(t *models.MonthlyTable, _ time.Time) error {
		s, err := lookup(t, c.Name)
		if err != nil {
			return err
		}
		s.Rating = c.Rating
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s rated %d\n", c.Name, c.Rating)
	return nil
}

type StatusCmd struct {
	Name   string `arg:"" help:"Subject name."`
	Status string `arg:"" help:"Active, Completed, On Hold or Dropped."`
	Date   string `help:"Any date in the month to edit (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	status, ok := models.ParseStatus(c.Status)
	if !ok {
		return fmt.Errorf("invalid status %q (expected one of %s)", c.Status, statusList())
	}
	err := editMonth(ctx, c.Date, func(t *models.MonthlyTable, _ time.Time) error {
		s, err := lookup(t, c.Name)
		if err != nil {
			return err
		}
		s.Status = status
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s is now %s\n", c.Name, status)
	return nil
}

func statusList() string {
	names := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
