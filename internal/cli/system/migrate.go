package system

import (
	"fmt"

	"github.com/julianstephens/studyos/internal/cli"
)

// schemaStore is implemented by the SQL backends.
type schemaStore interface {
	Open() error
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct {
	From string `help:"Copy every month of every year from this workbook directory, .db file or connection string."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if db, ok := ctx.Store.(schemaStore); ok {
		if err := db.Open(); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		count, err := db.Migrate(func(msg string) { fmt.Println(msg) })
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if count == 0 {
			fmt.Println("No migrations to apply. Database is up to date.")
		} else {
			fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
		}
	} else if c.From == "" {
		fmt.Println("Workbook storage has no schema to migrate.")
		return nil
	}

	if c.From == "" {
		return nil
	}
	if samePath(c.From, ctx.Store.GetConfigPath()) {
		return fmt.Errorf("source and destination are the same: %s", c.From)
	}
	if err := ctx.Store.Init(); err != nil {
		return err
	}

	fmt.Printf("Copying data from: %s\n", c.From)
	n, err := copyFrom(ctx, c.From)
	if err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	fmt.Printf("Copied %d month(s).\n", n)
	return nil
}
