// Package backup snapshots the data files of a local store: every yearly
// workbook of a workbook directory, or a single SQLite database.
package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/logger"
)

const secondsTimeFormat = "20060102-150405"

// <source>-YYYYMMDD-HHMM[SS][-N].<ext>
var backupName = regexp.MustCompile(`^(.+)-(\d{8}-\d{4}(?:\d{2})?)(?:-(\d+))?$`)

// BackupInfo describes one backup file
type BackupInfo struct {
	Path      string
	Source    string // file name the backup restores to
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations for one data location.
type Manager struct {
	source    string
	dataDir   string
	backupDir string
	sqlite    bool
	now       func() time.Time
}

// NewManager accepts a workbook directory or a .db file.
func NewManager(source string) *Manager {
	m := &Manager{source: source, now: time.Now}
	if strings.EqualFold(filepath.Ext(source), ".db") {
		m.sqlite = true
		m.dataDir = filepath.Dir(source)
	} else {
		m.dataDir = source
	}
	m.backupDir = filepath.Join(m.dataDir, constants.BackupDirName)
	return m
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// sources lists the files a backup covers.
func (m *Manager) sources() ([]string, error) {
	if m.sqlite {
		if _, err := os.Stat(m.source); os.IsNotExist(err) {
			return nil, fmt.Errorf("database does not exist: %s", m.source)
		}
		return []string{m.source}, nil
	}
	matches, err := filepath.Glob(filepath.Join(m.dataDir, constants.WorkbookPrefix+"*"+constants.WorkbookSuffix))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no workbooks found in %s", m.dataDir)
	}
	sort.Strings(matches)
	return matches, nil
}

// CreateBackup snapshots every data file and returns the new backup paths.
func (m *Manager) CreateBackup() ([]string, error) {
	return m.createBackup(false)
}

// createBackup skips rotation while restoring so the pre-restore copy cannot
// push out the backup being restored.
func (m *Manager) createBackup(skipRotation bool) ([]string, error) {
	srcs, err := m.sources()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	var created []string
	for _, src := range srcs {
		dest, err := m.uniquePath(filepath.Base(src))
		if err != nil {
			return created, err
		}
		if m.sqlite {
			err = vacuumInto(src, dest)
		} else {
			err = copyFile(src, dest)
		}
		if err != nil {
			return created, fmt.Errorf("failed to back up %s: %w", filepath.Base(src), err)
		}
		logger.Info("Created backup", "source", src, "backup", dest)
		created = append(created, dest)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return created, nil
}

// uniquePath uses minute precision, then seconds, then a counter.
func (m *Manager) uniquePath(name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	now := m.now()

	path := filepath.Join(m.backupDir, fmt.Sprintf("%s-%s%s", base, now.Format(constants.BackupTimeFormat), ext))
	if !exists(path) {
		return path, nil
	}
	stamp := now.Format(secondsTimeFormat)
	path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%s%s", base, stamp, ext))
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%s-%d%s", base, stamp, counter, ext))
	}
	return path, nil
}

// ListBackups returns every backup, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		if m.sqlite != (filepath.Ext(info.Source) != constants.WorkbookSuffix) {
			continue
		}
		info.Path = filepath.Join(m.backupDir, entry.Name())
		st, err := os.Stat(info.Path)
		if err != nil {
			continue
		}
		info.Size = st.Size()
		backups = append(backups, info)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func parseName(name string) (BackupInfo, bool) {
	ext := filepath.Ext(name)
	if ext != ".db" && ext != constants.WorkbookSuffix {
		return BackupInfo{}, false
	}
	match := backupName.FindStringSubmatch(strings.TrimSuffix(name, ext))
	if match == nil {
		return BackupInfo{}, false
	}
	ts, err := time.Parse(constants.BackupTimeFormat, match[2])
	if err != nil {
		ts, err = time.Parse(secondsTimeFormat, match[2])
		if err != nil {
			return BackupInfo{}, false
		}
	}
	return BackupInfo{Source: match[1] + ext, Timestamp: ts}, true
}

// rotateBackups keeps the newest MaxBackups per source file.
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	kept := make(map[string]int)
	for _, b := range backups {
		kept[b.Source]++
		if kept[b.Source] <= constants.MaxBackups {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Path, err)
		}
	}
	return nil
}

// RestoreBackup copies backupPath over the file it was taken from. The current
// file is backed up first.
func (m *Manager) RestoreBackup(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	info, ok := parseName(filepath.Base(backupPath))
	if !ok {
		return fmt.Errorf("not a backup file: %s", filepath.Base(backupPath))
	}

	if err := verifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	target := filepath.Join(m.dataDir, info.Source)
	if m.sqlite {
		target = m.source
	}

	if exists(target) {
		current, err := m.currentBackup(target)
		if err != nil {
			return fmt.Errorf("failed to back up current data before restore: %w", err)
		}
		logger.Info("Created backup of current data", "backup", current)
	}

	tempPath := target + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return fmt.Errorf("failed to restore %s: %w", filepath.Base(target), err)
	}
	return nil
}

func (m *Manager) currentBackup(target string) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", err
	}
	dest, err := m.uniquePath(filepath.Base(target))
	if err != nil {
		return "", err
	}
	if m.sqlite {
		return dest, vacuumInto(target, dest)
	}
	return dest, copyFile(target, dest)
}

// verifyBackup opens the backup with the library that will read it.
func verifyBackup(path string) error {
	if filepath.Ext(path) == constants.WorkbookSuffix {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return err
		}
		return f.Close()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

// vacuumInto writes a consistent copy of a live SQLite database.
func vacuumInto(src, dest string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		db.Close()
		return copyFile(src, dest)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
