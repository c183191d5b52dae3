package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "sentinel",
			err:      fmt.Errorf("add Go: %w", ErrDuplicateSubject),
			expected: "Error: add Go: subject already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("invalid year %d", 1999)
	if got != "Error: invalid year 1999" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestLockedError(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("save February: %w", &LockedError{
		Path:     "/data/studyProgress2025.xlsx",
		Holders:  []string{"EXCEL.EXE"},
		Attempts: 5,
		Err:      cause,
	})

	if !Is(err, ErrLocked) {
		t.Error("LockedError should match ErrLocked")
	}
	if !Is(err, cause) {
		t.Error("LockedError should match its cause")
	}
	var le *LockedError
	if !As(err, &le) || le.Attempts != 5 {
		t.Fatalf("As(LockedError) failed: %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"studyProgress2025.xlsx", "5 attempts", "EXCEL.EXE", "close the other application"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}

	bare := &LockedError{Path: "x.db"}
	if strings.Contains(bare.Error(), "attempts") || strings.Contains(bare.Error(), "open in") {
		t.Errorf("bare message = %q", bare.Error())
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit with error, got %v", err)
	}
}

func TestFatalf(t *testing.T) {
	if os.Getenv("GO_TEST_FATALF") == "1" {
		Fatalf("workbook %s is locked", "studyProgress2025.xlsx")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatalf")
	cmd.Env = append(os.Environ(), "GO_TEST_FATALF=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); !ok || e.ExitCode() != 1 {
		t.Fatalf("Fatalf() did not exit 1: %v", err)
	}
	if !strings.Contains(stderr.String(), "Error: workbook studyProgress2025.xlsx is locked") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
