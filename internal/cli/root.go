package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/backup"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/keyring"
	"github.com/julianstephens/studyos/internal/logger"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/storage"
	"github.com/julianstephens/studyos/internal/storage/postgres"
	"github.com/julianstephens/studyos/internal/storage/sqlite"
	"github.com/julianstephens/studyos/internal/storage/xlsx"
	"github.com/julianstephens/studyos/internal/streak"
)

type Context struct {
	Store storage.Provider
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (c *Context) Today() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// BackupManager returns the manager for file-backed stores. Postgres has no
// local file to snapshot.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*postgres.Store); ok {
		return nil, fmt.Errorf("backups are not supported for PostgreSQL, use pg_dump instead")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Skipping automatic backup", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LoadMonth loads the month containing date and fails outside the selectable years.
func (c *Context) LoadMonth(date time.Time) (models.MonthlyTable, error) {
	if err := CheckYear(date.Year()); err != nil {
		return models.MonthlyTable{}, err
	}
	return c.Store.LoadMonth(date.Year(), date.Month())
}

// CheckYear rejects years outside the tracker's range.
func CheckYear(year int) error {
	if year < constants.MinYear || year > constants.MaxYear {
		return fmt.Errorf("year %d is outside %d-%d", year, constants.MinYear, constants.MaxYear)
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD, "today" or "" (today).
func ParseDate(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "today" {
		return today, nil
	}
	if s == "yesterday" {
		return today.AddDate(0, 0, -1), nil
	}
	d, err := time.ParseInLocation(constants.DateFormat, s, today.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or 'today')", s)
	}
	return d, nil
}

// ParseMonth accepts a month number or an English month name or prefix.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) || s == fmt.Sprint(int(m)) || s == fmt.Sprintf("%02d", int(m)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

// Streak computes the month's streak as of today.
func Streak(table models.MonthlyTable, today time.Time) int {
	days := activity.ExpectedDays(table.Year, table.Month)
	return streak.Compute(activity.Aggregate(table, days), today)
}

// OpenStore picks a backend for target:
//   - postgres:// URLs and key=value DSNs open the PostgreSQL store
//   - paths ending in .db open a SQLite file
//   - anything else is a directory of yearly workbooks
//
// An empty target uses the keyring connection string when one is stored,
// otherwise the default data directory.
func OpenStore(target string) (storage.Provider, error) {
	fromKeyring := false
	if strings.TrimSpace(target) == "" {
		if connStr, err := keyring.GetConnectionString(); err == nil {
			target, fromKeyring = connStr, true
			logger.Debug("Using connection string from keyring")
		} else {
			target = constants.DefaultDataDir
		}
	}

	if IsPostgres(target) {
		if _, err := postgres.ValidateConnString(target); err != nil {
			if !(fromKeyring && errors.Is(err, postgres.ErrEmbeddedCredentials)) {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return nil, fmt.Errorf("%w: store it with 'studyos keyring set' or use ~/.pgpass", err)
				}
				return nil, err
			}
		}
		return postgres.New(target), nil
	}

	path, err := ExpandPath(target)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".db") {
		return sqlite.NewStore(path), nil
	}
	return xlsx.NewStore(path), nil
}

func IsPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") ||
		strings.HasPrefix(target, "postgresql://") ||
		strings.Contains(target, "host=")
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// LogDir is where logs go for target: next to the data for local stores,
// the default data directory for PostgreSQL.
func LogDir(target string) string {
	if strings.TrimSpace(target) == "" || IsPostgres(target) {
		target = constants.DefaultDataDir
	}
	path, err := ExpandPath(target)
	if err != nil {
		return os.TempDir()
	}
	if strings.EqualFold(filepath.Ext(path), ".db") {
		return filepath.Dir(path)
	}
	return path
}

// CopyMonths copies every stored month of src into dst and returns the count.
func CopyMonths(src, dst storage.Provider, progress func(year int, month time.Month)) (int, error) {
	years, err := src.ListYears()
	if err != nil {
		return 0, fmt.Errorf("failed to list source years: %w", err)
	}
	copied := 0
	for _, y := range years {
		months, err := src.ListMonths(y)
		if err != nil {
			return copied, fmt.Errorf("failed to list months of %d: %w", y, err)
		}
		for _, m := range months {
			table, err := src.LoadMonth(y, m)
			if err != nil {
				return copied, fmt.Errorf("failed to load %s %d: %w", m, y, err)
			}
			if err := dst.SaveMonth(table); err != nil {
				return copied, fmt.Errorf("failed to save %s %d: %w", m, y, err)
			}
			if progress != nil {
				progress(y, m)
			}
			copied++
		}
	}
	return copied, nil
}
