package constants

import (
	"time"
)

// SessionState represents the current state of the TUI application
type SessionState int

// AnalyticsView selects the panel rendered below the study grid
type AnalyticsView int

const (
	AppName            = "studyos"
	DefaultKeyringUser = "database-connection"
	DefaultDataDir     = "~/.config/studyos"
	DefaultConfigFile  = "~/.config/studyos/config.json"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DayKeyPrefix prefixes every day column in a monthly sheet ("Date 2025-02-01")
	DayKeyPrefix = "Date "

	// Sheet column headers
	SubjectColumn = "Subject/Skill"
	RatingColumn  = "Excellence Rating"
	StatusColumn  = "Status"

	// StatusColumnIndex is where a missing Status column is inserted in legacy sheets
	StatusColumnIndex = 2

	// Workbook naming: one workbook per year
	WorkbookPrefix = "studyProgress"
	WorkbookSuffix = ".xlsx"

	// Selectable year range
	MinYear = 2024
	MaxYear = 2030

	// RecentWindowDays is how many days before today stay visible when history is collapsed
	RecentWindowDays = 3

	// Save retry policy for locked stores
	SaveMaxAttempts = 5
	SaveRetryDelay  = 500 * time.Millisecond

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupTimeFormat = "20060102-1504"

	// Logging
	LogDirName  = "logs"
	LogFileName = "studyos.log"

	// Streak summary tiers (total active days in the month)
	StreakHotThreshold  = 10
	StreakWarmThreshold = 3
)

// Session States
const (
	StateDashboard SessionState = iota
	StateAddSubject
	StateConfirmDelete
	StateLoadError
)

// Analytics Views
const (
	ViewYearly AnalyticsView = iota
	ViewStreaks
	ViewVolume
)

func (v AnalyticsView) String() string {
	switch v {
	case ViewYearly:
		return "🌍 Yearly Consistency"
	case ViewStreaks:
		return "🔥 Streaks"
	case ViewVolume:
		return "📈 Total Study Volume"
	default:
		return "unknown"
	}
}
