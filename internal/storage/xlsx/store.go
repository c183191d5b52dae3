// Package xlsx stores monthly tables in yearly workbooks, one sheet per month.
package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/studyos/internal/activity"
	"github.com/julianstephens/studyos/internal/constants"
	"github.com/julianstephens/studyos/internal/errors"
	"github.com/julianstephens/studyos/internal/lockcheck"
	"github.com/julianstephens/studyos/internal/logger"
	"github.com/julianstephens/studyos/internal/models"
	"github.com/julianstephens/studyos/internal/storage"
)

const tempSheetPrefix = "_new_"

type Store struct {
	dir   string
	retry storage.RetryPolicy
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, retry: storage.DefaultRetry}
}

// WithRetryPolicy overrides the lock retry policy, mainly for tests.
func (s *Store) WithRetryPolicy(p storage.RetryPolicy) *Store {
	s.retry = p
	return s
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ErrNotInitialized
		}
		return fmt.Errorf("failed to access data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.dir
}

// WorkbookPath returns the workbook holding every month of year.
func (s *Store) WorkbookPath(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", constants.WorkbookPrefix, year, constants.WorkbookSuffix))
}

func (s *Store) LoadMonth(year int, month time.Month) (models.MonthlyTable, error) {
	path := s.WorkbookPath(year)
	sheet := month.String()

	f, err := s.open(path)
	if err != nil {
		return models.MonthlyTable{}, err
	}

	if f == nil || !hasSheet(f, sheet) {
		if f != nil {
			_ = f.Close()
		}
		table := models.MonthlyTable{Year: year, Month: month, Subjects: models.DefaultSubjects()}
		table = activity.Normalize(table)
		logger.Info("Creating month with default subjects", "path", path, "sheet", sheet)
		if err := s.SaveMonth(table); err != nil {
			return models.MonthlyTable{}, err
		}
		return table, nil
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.MonthlyTable{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	table, repaired := parseSheet(year, month, rows)
	table = activity.Normalize(table)
	if repaired {
		logger.Info("Inserted missing Status column", "path", path, "sheet", sheet)
		if err := s.SaveMonth(table); err != nil {
			return models.MonthlyTable{}, err
		}
	}
	return table, nil
}

func (s *Store) SaveMonth(table models.MonthlyTable) error {
	table = activity.Normalize(table)
	path := s.WorkbookPath(table.Year)

	err := storage.WithRetry(path, s.retry, func() error {
		if locks := lockcheck.OwnerLockFiles(path); len(locks) > 0 {
			return fmt.Errorf("%w: %s", errors.ErrLocked, filepath.Base(locks[0]))
		}
		return s.writeMonth(path, table)
	})
	if err != nil {
		return err
	}
	logger.Info("Saved month", "path", path, "month", table.Month.String(), "subjects", len(table.Subjects))
	return nil
}

func (s *Store) ListYearly(year int) (map[string]int, error) {
	counts := make(map[string]int)
	f, err := s.open(s.WorkbookPath(year))
	if err != nil {
		return nil, err
	}
	if f == nil {
		return counts, nil
	}
	defer f.Close()

	for _, month := range monthSheets(f) {
		rows, err := f.GetRows(month.String())
		if err != nil {
			logger.Warn("Skipping unreadable sheet", "year", year, "sheet", month.String(), "error", err)
			continue
		}
		table, _ := parseSheet(year, month, rows)
		for _, subj := range table.Subjects {
			for k, v := range subj.Flags {
				d, ok := k.Date()
				if !ok || d.Year() != year || d.Month() != month {
					continue
				}
				iso := k.ISO()
				if _, seen := counts[iso]; !seen {
					counts[iso] = 0
				}
				if v {
					counts[iso]++
				}
			}
		}
	}
	return counts, nil
}

func (s *Store) ListMonths(year int) ([]time.Month, error) {
	f, err := s.open(s.WorkbookPath(year))
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()
	return monthSheets(f), nil
}

func (s *Store) ListYears() ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, constants.WorkbookPrefix+"*"+constants.WorkbookSuffix))
	if err != nil {
		return nil, err
	}
	var years []int
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), constants.WorkbookPrefix), constants.WorkbookSuffix)
		y, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// open returns nil without error when the workbook does not exist yet.
func (s *Store) open(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		if lerr := storage.LockedNow(path, err); lerr != err {
			return nil, lerr
		}
		return nil, fmt.Errorf("failed to open workbook %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// writeMonth builds the month under a temporary sheet name, swaps it in for
// the old sheet, then writes the workbook to a temp file renamed over path.
func (s *Store) writeMonth(path string, table models.MonthlyTable) error {
	f, err := s.open(path)
	if err != nil {
		return err
	}
	fresh := f == nil
	if fresh {
		f = excelize.NewFile()
	}
	defer f.Close()

	sheet := table.Month.String()
	tmp := tempSheetPrefix + sheet
	if hasSheet(f, tmp) {
		if err := f.DeleteSheet(tmp); err != nil {
			return fmt.Errorf("failed to remove stale sheet %s: %w", tmp, err)
		}
	}
	if _, err := f.NewSheet(tmp); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeRows(f, tmp, table); err != nil {
		return err
	}

	if hasSheet(f, sheet) {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to replace sheet %s: %w", sheet, err)
		}
	}
	if err := f.SetSheetName(tmp, sheet); err != nil {
		return fmt.Errorf("failed to rename sheet %s: %w", tmp, err)
	}
	if fresh {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}
	for i, name := range f.GetSheetList() {
		if name == sheet {
			f.SetActiveSheet(i)
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	tmpPath := tmpFile.Name()
	if err := f.Write(tmpFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, table models.MonthlyTable) error {
	days := activity.ExpectedDays(table.Year, table.Month)

	header := fixedCells(constants.SubjectColumn, constants.RatingColumn, constants.StatusColumn)
	for _, k := range days {
		header = append(header, string(k))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, subj := range table.Subjects {
		row := fixedCells(subj.Name, subj.Rating, string(subj.Status))
		for _, k := range days {
			row = append(row, subj.Flags[k])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s: %w", subj.Name, err)
		}
	}
	return nil
}

// fixedCells orders the leading columns with status at StatusColumnIndex.
func fixedCells(name, rating, status interface{}) []interface{} {
	return slices.Insert([]interface{}{name, rating}, constants.StatusColumnIndex, status)
}

// parseSheet reads rows into a table. It reports true when the sheet had no
// Status column. Rows without a subject name and later duplicates are skipped.
func parseSheet(year int, month time.Month, rows [][]string) (models.MonthlyTable, bool) {
	table := models.MonthlyTable{Year: year, Month: month}
	if len(rows) == 0 {
		return table, false
	}

	nameCol, ratingCol, statusCol := -1, -1, -1
	dayCols := make(map[int]models.DayKey)
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case constants.SubjectColumn:
			nameCol = i
		case constants.RatingColumn:
			ratingCol = i
		case constants.StatusColumn:
			statusCol = i
		default:
			if k, ok := models.ParseDayKey(h); ok {
				dayCols[i] = k
			}
		}
	}
	if nameCol == -1 {
		nameCol = 0
	}

	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, nameCol))
		if name == "" {
			continue
		}
		if _, dup := table.Index(name); dup {
			continue
		}
		subj := models.NewSubject(name)
		subj.Rating = models.CoerceRating(cell(row, ratingCol))
		subj.Status = models.CoerceStatus(cell(row, statusCol))
		for col, k := range dayCols {
			subj.Flags[k] = models.CoerceFlag(cell(row, col))
		}
		table.Subjects = append(table.Subjects, subj)
	}
	return table, statusCol == -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

func monthSheets(f *excelize.File) []time.Month {
	var months []time.Month
	for _, name := range f.GetSheetList() {
		for m := time.January; m <= time.December; m++ {
			if name == m.String() {
				months = append(months, m)
			}
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}
