package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyos/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "studyos.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE months (year INTEGER, month INTEGER)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO months (year, month) VALUES (2025, 1), (2025, 2)"); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countMonths(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM months").Scan(&n); err != nil {
		t.Fatalf("failed to query database: %v", err)
	}
	return n
}

func writeWorkbook(t *testing.T, path, cellValue string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", cellValue); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
}

func readCell(t *testing.T, path string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", "A1")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// tick makes each call to now one minute later than the last.
func tick(m *Manager) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	m.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
}

func TestCreateBackup_SQLite(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	paths, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 backup, got %v", paths)
	}
	if filepath.Dir(paths[0]) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to %s", paths[0])
	}
	if got := countMonths(t, paths[0]); got != 2 {
		t.Errorf("expected 2 rows in backup, got %d", got)
	}
}

func TestCreateBackup_Workbooks(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "studyProgress2024.xlsx"), "a")
	writeWorkbook(t, filepath.Join(dir, "studyProgress2025.xlsx"), "b")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(dir)
	paths, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected one backup per workbook, got %v", paths)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	sources := map[string]bool{}
	for _, b := range backups {
		sources[b.Source] = true
		if b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info %+v", b)
		}
	}
	if !sources["studyProgress2024.xlsx"] || !sources["studyProgress2025.xlsx"] {
		t.Errorf("sources = %v", sources)
	}
}

func TestCreateBackup_NothingToBackUp(t *testing.T) {
	if _, err := NewManager(t.TempDir()).CreateBackup(); err == nil {
		t.Error("expected error for a directory with no workbooks")
	}
	if _, err := NewManager(filepath.Join(t.TempDir(), "missing.db")).CreateBackup(); err == nil {
		t.Error("expected error for a missing database")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	tick(mgr)

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
}

func TestRotationIsPerWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "studyProgress2025.xlsx"), "x")
	mgr := NewManager(dir)
	tick(mgr)
	for i := 0; i < constants.MaxBackups; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatal(err)
		}
	}

	writeWorkbook(t, filepath.Join(dir, "studyProgress2026.xlsx"), "y")
	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatal(err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	per := map[string]int{}
	for _, b := range backups {
		per[b.Source]++
	}
	if per["studyProgress2025.xlsx"] != constants.MaxBackups || per["studyProgress2026.xlsx"] != 1 {
		t.Errorf("per-workbook counts = %v", per)
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		paths, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		name := filepath.Base(paths[0])
		if seen[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		seen[name] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 5 {
		t.Errorf("expected 5 listed backups, got %d", len(backups))
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name   string
		ok     bool
		source string
	}{
		{"studyos-20250301-0901.db", true, "studyos.db"},
		{"studyProgress2025-20250301-090100.xlsx", true, "studyProgress2025.xlsx"},
		{"studyProgress2025-20250301-090100-3.xlsx", true, "studyProgress2025.xlsx"},
		{"studyos.db", false, ""},
		{"studyos-2025-03-01.db", false, ""},
		{"notes-20250301-0901.txt", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := parseName(tt.name)
			if ok != tt.ok || info.Source != tt.source {
				t.Errorf("parseName() = %+v, %v; want source %q, %v", info, ok, tt.source, tt.ok)
			}
		})
	}
}

func TestVerifyBackup(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "studyProgress2025.xlsx")
	writeWorkbook(t, good, "ok")
	if err := verifyBackup(good); err != nil {
		t.Errorf("verifyBackup failed for valid workbook: %v", err)
	}

	for _, name := range []string{"bad.xlsx", "bad.db"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("not a data file"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := verifyBackup(path); err == nil {
			t.Errorf("verifyBackup should fail for %s", name)
		}
	}
}
