// Package lockcheck detects when a data file is held open by a spreadsheet application.
package lockcheck

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-ps"
)

var (
	processesFunc = ps.Processes
	statFunc      = os.Stat
)

// spreadsheetApps are matched case-insensitively against process executables.
var spreadsheetApps = []string{
	"excel",
	"soffice",
	"libreoffice",
	"localc",
	"numbers",
	"gnumeric",
	"onlyoffice",
	"wps",
	"et.exe",
}

// Report describes what may be holding a file
type Report struct {
	Path      string
	LockFiles []string
	Holders   []string
}

// Locked reports whether an owner lock file sits next to the data file.
func (r Report) Locked() bool {
	return len(r.LockFiles) > 0
}

// OwnerLockFiles returns the Excel (~$name) and LibreOffice (.~lock.name#)
// lock files present next to path.
func OwnerLockFiles(path string) []string {
	dir, base := filepath.Split(path)
	candidates := []string{
		filepath.Join(dir, "~$"+base),
		filepath.Join(dir, ".~lock."+base+"#"),
	}
	var found []string
	for _, c := range candidates {
		if _, err := statFunc(c); err == nil {
			found = append(found, c)
		}
	}
	return found
}

// SpreadsheetProcesses lists the distinct executables of running spreadsheet applications.
func SpreadsheetProcesses() ([]string, error) {
	procs, err := processesFunc()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, p := range procs {
		if p == nil {
			continue
		}
		exe := p.Executable()
		if !isSpreadsheetApp(exe) || seen[exe] {
			continue
		}
		seen[exe] = true
		names = append(names, exe)
	}
	sort.Strings(names)
	return names, nil
}

func isSpreadsheetApp(exe string) bool {
	lower := strings.ToLower(exe)
	for _, app := range spreadsheetApps {
		if strings.Contains(lower, app) {
			return true
		}
	}
	return false
}

// Check inspects path for owner lock files and running spreadsheet apps.
// A failure to list processes leaves Holders empty.
func Check(path string) Report {
	r := Report{Path: path, LockFiles: OwnerLockFiles(path)}
	if holders, err := SpreadsheetProcesses(); err == nil {
		r.Holders = holders
	}
	return r
}

// IsLockError reports whether err looks like another process holding the file.
// On Windows an open workbook surfaces as a sharing violation, elsewhere as EACCES.
func IsLockError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "being used by another process") ||
		strings.Contains(msg, "sharing violation") ||
		strings.Contains(msg, "database is locked")
}
