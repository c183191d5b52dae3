package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/studyos/internal/logger"
)

var (
	// ErrLocked means another application holds the data file
	ErrLocked = errors.New("data file is locked by another application")
	// ErrNotInitialized means the store has not been created yet
	ErrNotInitialized = errors.New("storage not initialized, run 'studyos init' first")
	// ErrDuplicateSubject means the month already has a subject with that name
	ErrDuplicateSubject = errors.New("subject already exists")
	// ErrSubjectNotFound means the month has no subject with that name
	ErrSubjectNotFound = errors.New("subject not found")
)

// LockedError reports which file could not be written and which running
// applications may be holding it.
type LockedError struct {
	Path     string
	Holders  []string
	Attempts int
	Err      error
}

func (e *LockedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is locked", e.Path)
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	if len(e.Holders) > 0 {
		fmt.Fprintf(&b, " (open in %s)", strings.Join(e.Holders, ", "))
	}
	b.WriteString(": close the other application and try again")
	return b.String()
}

func (e *LockedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLocked, e.Err}
	}
	return []error{ErrLocked}
}

// Is and As re-export the standard functions so callers need one errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
