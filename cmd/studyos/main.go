package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studyos/internal/cli"
	"github.com/julianstephens/studyos/internal/cli/backups"
	"github.com/julianstephens/studyos/internal/cli/reports"
	"github.com/julianstephens/studyos/internal/cli/subjects"
	"github.com/julianstephens/studyos/internal/cli/system"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Data    string `help:"Workbook directory, SQLite .db file or PostgreSQL connection string." env:"STUDYOS_DATA"`
	Debug   bool   `help:"Write debug logs to stderr." env:"STUDYOS_DEBUG"`

	Tui      system.TuiCmd     `cmd:"" help:"Launch the interactive tracker." default:"1"`
	Init     system.InitCmd    `cmd:"" help:"Initialize storage."`
	Migrate  system.MigrateCmd `cmd:"" help:"Apply schema migrations or import another store."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks."`
	DebugCmd system.DebugCmd   `cmd:"" name:"debug" help:"Inspect stored data."`

	Show    reports.ShowCmd    `cmd:"" help:"Print a month's tracker table."`
	Streak  reports.StreakCmd  `cmd:"" help:"Print the current streak."`
	Heatmap reports.HeatmapCmd `cmd:"" help:"Print a month calendar or the year heatmap."`
	Stats   reports.StatsCmd   `cmd:"" help:"Print per-subject streaks or study volume."`

	Mark    subjects.MarkCmd   `cmd:"" help:"Toggle a subject's flag for a day."`
	Rate    subjects.RateCmd   `cmd:"" help:"Set a subject's rating."`
	Status  subjects.StatusCmd `cmd:"" help:"Set a subject's status."`
	Subject struct {
		Add    subjects.AddCmd    `cmd:"" help:"Add a subject to a month."`
		Remove subjects.RemoveCmd `cmd:"" help:"Remove a subject from a month."`
	} `cmd:"" help:"Manage subjects."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a backup now."`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore a backup."`
	} `cmd:"" help:"Manage backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report keyring availability."`
	} `cmd:"" help:"Manage the connection string in the OS keyring."`
}

// Commands that open the store themselves, or never need it.
var selfLoading = map[string]bool{
	"tui":     true,
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("studyos"),
		kong.Description("Study habit tracker with monthly workbooks, streaks and heatmaps"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, constants.DefaultConfigFile),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, DataDir: cli.LogDir(CLI.Data)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	defer func() { _ = logger.Close() }()

	store, err := cli.OpenStore(CLI.Data)
	if err != nil {
		errors.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	appCtx := &cli.Context{
		Store: store,
		Now:   time.Now,
	}

	command := strings.Fields(ctx.Command())
	if len(command) > 0 && !selfLoading[command[0]] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	logger.Debug("Running command", "command", ctx.Command(), "store", store.GetConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}
