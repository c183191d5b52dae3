// Package sqlstore implements month storage on any database/sql backend
// migrated with the embedded schema.
package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/logger"
	"github.com/julianstephens/studyos/internal/migration"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/storage"
)

// Store holds the queries shared by the sqlite and postgres backends.
// A nil *Store reports ErrNotInitialized from every method.
type Store struct {
	db      *sql.DB
	dialect migration.Dialect
	label   string
	retry   storage.RetryPolicy
}

// New wraps an open, migrated database. label names the store in lock errors.
func New(db *sql.DB, dialect migration.Dialect, label string) *Store {
	return &Store{db: db, dialect: dialect, label: label, retry: storage.DefaultRetry}
}

// WithRetryPolicy overrides the lock retry policy, mainly for tests.
func (s *Store) WithRetryPolicy(p storage.RetryPolicy) *Store {
	s.retry = p
	return s
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return errors.ErrNotInitialized
	}
	return nil
}

func (s *Store) LoadMonth(year int, month time.Month) (models.MonthlyTable, error) {
	if err := s.ready(); err != nil {
		return models.MonthlyTable{}, err
	}

	var exists int
	err := s.db.QueryRow(s.q("SELECT COUNT(*) FROM months WHERE year = ? AND month = ?"), year, int(month)).Scan(&exists)
	if err != nil {
		return models.MonthlyTable{}, storage.LockedNow(s.label, fmt.Errorf("failed to look up month: %w", err))
	}
	if exists == 0 {
		table := activity.Normalize(models.MonthlyTable{Year: year, Month: month, Subjects: models.DefaultSubjects()})
		logger.Info("Creating month with default subjects", "store", s.label, "year", year, "month", month.String())
		if err := s.SaveMonth(table); err != nil {
			return models.MonthlyTable{}, err
		}
		return table, nil
	}

	table := models.MonthlyTable{Year: year, Month: month}
	byID := make(map[string]int)

	rows, err := s.db.Query(s.q(`
		SELECT id, name, rating, status FROM subjects
		WHERE year = ? AND month = ?
		ORDER BY position`), year, int(month))
	if err != nil {
		return models.MonthlyTable{}, storage.LockedNow(s.label, fmt.Errorf("failed to load subjects: %w", err))
	}
	for rows.Next() {
		var id, name, status string
		var rating int
		if err := rows.Scan(&id, &name, &rating, &status); err != nil {
			rows.Close()
			return models.MonthlyTable{}, fmt.Errorf("failed to scan subject: %w", err)
		}
		subj := models.NewSubject(name)
		subj.Rating = models.CoerceRating(rating)
		subj.Status = models.CoerceStatus(status)
		byID[id] = len(table.Subjects)
		table.Subjects = append(table.Subjects, subj)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.MonthlyTable{}, err
	}
	rows.Close()

	flags, err := s.db.Query(s.q(`
		SELECT f.subject_id, f.day, f.studied FROM day_flags f
		JOIN subjects s ON s.id = f.subject_id
		WHERE s.year = ? AND s.month = ?`), year, int(month))
	if err != nil {
		return models.MonthlyTable{}, storage.LockedNow(s.label, fmt.Errorf("failed to load day flags: %w", err))
	}
	defer flags.Close()
	for flags.Next() {
		var id string
		var day any
		var studied bool
		if err := flags.Scan(&id, &day, &studied); err != nil {
			return models.MonthlyTable{}, fmt.Errorf("failed to scan day flag: %w", err)
		}
		i, ok := byID[id]
		if !ok {
			continue
		}
		iso, ok := isoDay(day)
		if !ok {
			continue
		}
		table.Subjects[i].Flags[models.DayKey(constants.DayKeyPrefix+iso)] = studied
	}
	if err := flags.Err(); err != nil {
		return models.MonthlyTable{}, err
	}

	return activity.Normalize(table), nil
}

func (s *Store) SaveMonth(table models.MonthlyTable) error {
	if err := s.ready(); err != nil {
		return err
	}
	table = activity.Normalize(table)

	err := storage.WithRetry(s.label, s.retry, func() error {
		return s.replaceMonth(table)
	})
	if err != nil {
		return err
	}
	logger.Info("Saved month", "store", s.label, "year", table.Year, "month", table.Month.String(), "subjects", len(table.Subjects))
	return nil
}

// replaceMonth deletes and re-inserts every row of the month in one transaction.
func (s *Store) replaceMonth(table models.MonthlyTable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	y, m := table.Year, int(table.Month)
	if _, err := tx.Exec(s.q("INSERT INTO months (year, month) VALUES (?, ?) ON CONFLICT (year, month) DO NOTHING"), y, m); err != nil {
		return fmt.Errorf("failed to record month: %w", err)
	}
	if _, err := tx.Exec(s.q("DELETE FROM day_flags WHERE subject_id IN (SELECT id FROM subjects WHERE year = ? AND month = ?)"), y, m); err != nil {
		return fmt.Errorf("failed to clear day flags: %w", err)
	}
	if _, err := tx.Exec(s.q("DELETE FROM subjects WHERE year = ? AND month = ?"), y, m); err != nil {
		return fmt.Errorf("failed to clear subjects: %w", err)
	}

	insertSubject, err := tx.Prepare(s.q("INSERT INTO subjects (id, year, month, position, name, rating, status) VALUES (?, ?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer insertSubject.Close()
	insertFlag, err := tx.Prepare(s.q("INSERT INTO day_flags (subject_id, day, studied) VALUES (?, ?, ?)"))
	if err != nil {
		return err
	}
	defer insertFlag.Close()

	days := activity.ExpectedDays(table.Year, table.Month)
	for pos, subj := range table.Subjects {
		id := uuid.NewString()
		if _, err := insertSubject.Exec(id, y, m, pos, subj.Name, subj.Rating, string(subj.Status)); err != nil {
			return fmt.Errorf("failed to insert %s: %w", subj.Name, err)
		}
		for _, k := range days {
			if _, err := insertFlag.Exec(id, k.ISO(), subj.Flags[k]); err != nil {
				return fmt.Errorf("failed to insert flag %s for %s: %w", k.ISO(), subj.Name, err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) ListYearly(year int) (map[string]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	months, err := s.ListMonths(year)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, m := range months {
		for _, k := range activity.ExpectedDays(year, m) {
			counts[k.ISO()] = 0
		}
	}

	rows, err := s.db.Query(s.q(`
		SELECT f.day, COUNT(*) FROM day_flags f
		JOIN subjects s ON s.id = f.subject_id
		WHERE s.year = ? AND f.studied = ?
		GROUP BY f.day`), year, true)
	if err != nil {
		return nil, storage.LockedNow(s.label, fmt.Errorf("failed to count activity: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var day any
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		iso, ok := isoDay(day)
		if !ok {
			continue
		}
		if _, known := counts[iso]; known {
			counts[iso] = n
		}
	}
	return counts, rows.Err()
}

func (s *Store) ListMonths(year int) ([]time.Month, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(s.q("SELECT month FROM months WHERE year = ? ORDER BY month"), year)
	if err != nil {
		return nil, storage.LockedNow(s.label, fmt.Errorf("failed to list months: %w", err))
	}
	defer rows.Close()

	var months []time.Month
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		months = append(months, time.Month(m))
	}
	return months, rows.Err()
}

func (s *Store) ListYears() ([]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query("SELECT DISTINCT year FROM months ORDER BY year")
	if err != nil {
		return nil, storage.LockedNow(s.label, fmt.Errorf("failed to list years: %w", err))
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// isoDay accepts the day column as sqlite returns it (text) or as postgres does (time.Time).
func isoDay(v any) (string, bool) {
	var s string
	switch d := v.(type) {
	case time.Time:
		return d.Format(constants.DateFormat), true
	case string:
		s = d
	case []byte:
		s = string(d)
	default:
		return "", false
	}
	if len(s) > len(constants.DateFormat) {
		s = s[:len(constants.DateFormat)]
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", false
	}
	return s, true
}
