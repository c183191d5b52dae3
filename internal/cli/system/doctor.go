package system

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/studyos/internal/cli"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/keyring"
	"github.com/julianstephens/studyos/internal/lockcheck"
	"github.com/julianstephens/studyos/internal/storage/xlsx"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks print a warning instead of failing the run.
	warnOnly bool
	// needsStore checks are skipped when the store cannot be loaded.
	needsStore bool
	run        func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Workbooks unlocked", needsStore: true, run: checkWorkbookLocks},
	{name: "Spreadsheet applications", warnOnly: true, run: checkSpreadsheetApps},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Data readable", needsStore: true, run: checkDataReadable},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := true
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError, reachable = true, false
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsStore && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	db, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, latest, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkWorkbookLocks(ctx *cli.Context) error {
	store, ok := ctx.Store.(*xlsx.Store)
	if !ok {
		return nil
	}
	years, err := store.ListYears()
	if err != nil {
		return fmt.Errorf("failed to list workbooks: %w", err)
	}
	var locked []string
	for _, y := range years {
		if lockcheck.Check(store.WorkbookPath(y)).Locked() {
			locked = append(locked, fmt.Sprint(y))
		}
	}
	if len(locked) > 0 {
		return fmt.Errorf("workbooks for %s are open in another application; saves will fail until they are closed", strings.Join(locked, ", "))
	}
	return nil
}

func checkSpreadsheetApps(_ *cli.Context) error {
	apps, err := lockcheck.SpreadsheetProcesses()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}
	if len(apps) > 0 {
		return fmt.Errorf("running: %s", strings.Join(apps, ", "))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'studyos backup create'")
	}
	return nil
}

// checkDataReadable loads every stored month and reports the first failure.
func checkDataReadable(ctx *cli.Context) error {
	years, err := ctx.Store.ListYears()
	if err != nil {
		return fmt.Errorf("failed to list years: %w", err)
	}
	for _, y := range years {
		months, err := ctx.Store.ListMonths(y)
		if err != nil {
			return fmt.Errorf("failed to list months of %d: %w", y, err)
		}
		for _, m := range months {
			table, err := ctx.Store.LoadMonth(y, m)
			if err != nil {
				return fmt.Errorf("failed to read %s %d: %w", m, y, err)
			}
			seen := make(map[string]bool, len(table.Subjects))
			for _, s := range table.Subjects {
				if seen[s.Name] {
					return fmt.Errorf("duplicate subject %q in %s %d", s.Name, m, y)
				}
				seen[s.Name] = true
			}
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Today()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if now.Year() < constants.MinYear || now.Year() > constants.MaxYear {
		fmt.Fprintf(os.Stderr, "   note: %d is outside the tracked range %d-%d\n", now.Year(), constants.MinYear, constants.MaxYear)
	}
	return nil
}

func checkKeyring(_ *cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; PostgreSQL connection strings must be passed with --data")
	}
	return nil
}
