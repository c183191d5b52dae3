package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Cleanup(func() { _ = Close() })

	if err := Init(Config{DataDir: dataDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(dataDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if got := Path(); got != filepath.Join(logDir, "studyos.log") {
		t.Errorf("Path() = %q", got)
	}

	Warn("save retry", "attempt", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(logDir, "studyos.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "save retry") {
		t.Errorf("log file missing warning, got %q", data)
	}
}

func TestInitDebugMode(t *testing.T) {
	var stderr bytes.Buffer
	t.Cleanup(func() { _ = Close() })

	if err := Init(Config{Debug: true, DataDir: t.TempDir(), Stderr: &stderr}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}

	Debug("layout recomputed", "year", 2025)
	if !strings.Contains(stderr.String(), "layout recomputed") {
		t.Errorf("debug output not teed to stderr: %q", stderr.String())
	}
}

func TestDefaultLevelSuppressesInfo(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { _ = Close() })

	if err := Init(Config{DataDir: dir}); err != nil {
		t.Fatal(err)
	}
	Info("should not appear")
	_ = Close()

	data, _ := os.ReadFile(filepath.Join(dir, "logs", "studyos.log"))
	if strings.Contains(string(data), "should not appear") {
		t.Error("info message written at warn level")
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	_ = Close()

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")

	if Path() != "" {
		t.Error("Path() should be empty before Init")
	}
}
