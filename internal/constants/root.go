package constants

import "time"

const (
	AppName            = "routinely"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/routinely/routinely.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format used throughout the application (HH:MM:SS)
	TimeFormat = "15:04:05"

	// ClockFormat is the short display format for times (HH:MM)
	ClockFormat = "15:04"
)

const (
	// DailySweepTime is the wall-clock time at which the daily materialization
	// tick fires.
	DailySweepTime = "00:00:00"

	// ExpirySweepInterval is how often the expiry tick re-evaluates pending and
	// in-progress tasks against their time windows.
	ExpirySweepInterval = time.Hour

	// NoDurationEditWindow is how long after its scheduled start a task with no
	// duration may still be reopened once completed. The original behaviour is a
	// heuristic, so this is a tunable rather than an invariant.
	NoDurationEditWindow = 2 * time.Hour
)

// Field limits shared by entity validation and the CLI.
const (
	MinTitleLen         = 2
	MaxTitleLen         = 120
	MaxDescriptionLen   = 500
	MaxNotesLen         = 1000
	MinDurationMin      = 1
	MaxDurationMin      = 1440
	MinWeekday          = 1 // Monday
	MaxWeekday          = 7 // Sunday
	DefaultSweepWorkers = 4
)
