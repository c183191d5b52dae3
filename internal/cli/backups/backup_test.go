package backups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/studyos/internal/backup"
	"github.com/julianstephens/studyos/internal/cli"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/storage/postgres"
	"github.com/julianstephens/studyos/internal/storage/xlsx"
)

func setupTestWorkbooks(t *testing.T) (*cli.Context, *xlsx.Store) {
	t.Helper()
	store := xlsx.NewStore(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadMonth(2025, time.May); err != nil {
		t.Fatal(err)
	}
	return &cli.Context{Store: store}, store
}

func setFlag(t *testing.T, store *xlsx.Store, day int, v bool) {
	t.Helper()
	table, err := store.LoadMonth(2025, time.May)
	if err != nil {
		t.Fatal(err)
	}
	table.Subjects[0].Flags[models.DayKeyFor(2025, time.May, day)] = v
	if err := store.SaveMonth(table); err != nil {
		t.Fatal(err)
	}
}

func flag(t *testing.T, store *xlsx.Store, day int) bool {
	t.Helper()
	table, err := store.LoadMonth(2025, time.May)
	if err != nil {
		t.Fatal(err)
	}
	return table.Subjects[0].Flags[models.DayKeyFor(2025, time.May, day)]
}

func TestCreateAndList(t *testing.T) {
	ctx, store := setupTestWorkbooks(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("list on empty backup dir failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}

	backups, err := backup.NewManager(store.GetConfigPath()).ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 || backups[0].Source != "studyProgress2025.xlsx" {
		t.Errorf("backups = %+v", backups)
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name       string
		yes        bool
		answer     string
		wantFlag   bool
		byBaseName bool
	}{
		{name: "confirmed by prompt", answer: "y\n", wantFlag: false},
		{name: "declined", answer: "n\n", wantFlag: true},
		{name: "no answer", answer: "", wantFlag: true},
		{name: "yes flag", yes: true, wantFlag: false, byBaseName: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := setupTestWorkbooks(t)
			if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
				t.Fatal(err)
			}
			backups, err := backup.NewManager(store.GetConfigPath()).ListBackups()
			if err != nil || len(backups) == 0 {
				t.Fatalf("no backup created: %v", err)
			}

			setFlag(t, store, 7, true)

			stdin = strings.NewReader(tt.answer)
			defer func() { stdin = os.Stdin }()

			name := backups[0].Path
			if tt.byBaseName {
				name = filepath.Base(name)
			}
			if err := (&BackupRestoreCmd{BackupFile: name, Yes: tt.yes}).Run(ctx); err != nil {
				t.Fatalf("restore failed: %v", err)
			}
			if got := flag(t, store, 7); got != tt.wantFlag {
				t.Errorf("flag after restore = %v, want %v", got, tt.wantFlag)
			}
		})
	}
}

func TestRestore_NotFound(t *testing.T) {
	ctx, _ := setupTestWorkbooks(t)
	err := (&BackupRestoreCmd{BackupFile: "studyProgress2025-20250101-0000.xlsx", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestPostgresHasNoBackups(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://me@localhost/studyos")}
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("create should fail for PostgreSQL")
	}
	if err := (&BackupListCmd{}).Run(ctx); err == nil {
		t.Error("list should fail for PostgreSQL")
	}
}
