package storage

import (
	"time"

	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/lockcheck"
	"github.com/julianstephens/studyos/internal/logger"
)

var sleepFunc = time.Sleep

// RetryPolicy bounds how long a write waits for a locked file
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry is five attempts half a second apart
var DefaultRetry = RetryPolicy{
	Attempts: constants.SaveMaxAttempts,
	Delay:    constants.SaveRetryDelay,
}

// IsLocked reports whether err should be retried as lock contention.
func IsLocked(err error) bool {
	return errors.Is(err, errors.ErrLocked) || lockcheck.IsLockError(err)
}

// WithRetry runs op until it succeeds, fails with a non-lock error, or the
// policy runs out. Exhaustion returns a *errors.LockedError naming path and
// any spreadsheet applications that may be holding it.
func WithRetry(path string, policy RetryPolicy, op func() error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err = op()
		if err == nil {
			if attempt > 1 {
				logger.Info("Write succeeded after retry", "path", path, "attempt", attempt)
			}
			return nil
		}
		if !IsLocked(err) {
			return err
		}
		logger.Warn("Data file locked, retrying", "path", path, "attempt", attempt, "max", policy.Attempts, "error", err)
		if attempt < policy.Attempts {
			sleepFunc(policy.Delay)
		}
	}

	report := lockcheck.Check(path)
	return &errors.LockedError{
		Path:     path,
		Holders:  report.Holders,
		Attempts: policy.Attempts,
		Err:      err,
	}
}

// LockedNow converts an immediate read failure into a LockedError without
// retrying. Other errors pass through unchanged.
func LockedNow(path string, err error) error {
	if err == nil || !IsLocked(err) {
		return err
	}
	return &errors.LockedError{Path: path, Holders: lockcheck.Check(path).Holders, Err: err}
}
