package storage

import (
	"time"

	"github.com/julianstephens/studyos/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Months
	//
	// LoadMonth creates the month with the default subjects if it has never been stored.
	LoadMonth(year int, month time.Month) (models.MonthlyTable, error)
	// SaveMonth replaces the stored month with table as a whole.
	SaveMonth(table models.MonthlyTable) error

	// Enumeration
	//
	// ListYearly returns ISO date -> number of subjects studied for every stored
	// day of the year. A year with nothing stored yields an empty map.
	ListYearly(year int) (map[string]int, error)
	ListMonths(year int) ([]time.Month, error)
	ListYears() ([]int, error)

	// Utils
	GetConfigPath() string
}
