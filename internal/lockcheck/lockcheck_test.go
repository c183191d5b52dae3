package lockcheck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func setupProcesses(t *testing.T, names ...string) {
	t.Helper()
	old := processesFunc
	t.Cleanup(func() { processesFunc = old })
	processesFunc = func() ([]ps.Process, error) {
		var out []ps.Process
		for i, n := range names {
			out = append(out, &mockProcess{pid: 100 + i, executable: n})
		}
		return out, nil
	}
}

func TestOwnerLockFiles(t *testing.T) {
	dir := t.TempDir()
	wb := filepath.Join(dir, "studyProgress2025.xlsx")

	if got := OwnerLockFiles(wb); len(got) != 0 {
		t.Fatalf("expected no lock files, got %v", got)
	}

	excelLock := filepath.Join(dir, "~$studyProgress2025.xlsx")
	officeLock := filepath.Join(dir, ".~lock.studyProgress2025.xlsx#")
	for _, p := range []string{excelLock, officeLock} {
		if err := os.WriteFile(p, []byte("owner"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got := OwnerLockFiles(wb)
	if len(got) != 2 || got[0] != excelLock || got[1] != officeLock {
		t.Errorf("OwnerLockFiles() = %v", got)
	}
}

func TestSpreadsheetProcesses(t *testing.T) {
	setupProcesses(t, "bash", "EXCEL.EXE", "soffice.bin", "EXCEL.EXE", "go", "Numbers")

	got, err := SpreadsheetProcesses()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"EXCEL.EXE", "Numbers", "soffice.bin"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("SpreadsheetProcesses() = %v, want %v", got, want)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	wb := filepath.Join(dir, "studyProgress2025.xlsx")
	setupProcesses(t, "EXCEL.EXE")

	r := Check(wb)
	if r.Locked() {
		t.Error("no lock file yet, Locked() should be false")
	}
	if len(r.Holders) != 1 {
		t.Errorf("Holders = %v", r.Holders)
	}

	if err := os.WriteFile(filepath.Join(dir, "~$studyProgress2025.xlsx"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !Check(wb).Locked() {
		t.Error("lock file present, Locked() should be true")
	}
}

func TestCheck_ProcessListFailure(t *testing.T) {
	old := processesFunc
	t.Cleanup(func() { processesFunc = old })
	processesFunc = func() ([]ps.Process, error) { return nil, errors.New("no /proc") }

	r := Check(filepath.Join(t.TempDir(), "x.xlsx"))
	if r.Holders != nil {
		t.Errorf("Holders = %v, want nil", r.Holders)
	}
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, true},
		{"windows sharing", errors.New("The process cannot access the file because it is being used by another process."), true},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"not found", fs.ErrNotExist, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLockError(tt.err); got != tt.want {
				t.Errorf("IsLockError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
