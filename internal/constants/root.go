package constants

import "time"

const (
	AppName            = "habitick"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitick/habitick.db"
	Version            = "v0.5.0"

	// ConnectionEnvVar holds a PostgreSQL connection string when the config flag names no store.
	ConnectionEnvVar = "HABITICK_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitick-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "habitick-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitick"
	TrayExecutablePrefix   = "habitick-tray"
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifyTimeout          = 2 * time.Second

	// Placeholder is shown for any aggregate that has no data behind it.
	Placeholder = "-"

	// DefaultHabitColor is used for habits created without an explicit color (imports included).
	DefaultHabitColor = "#9C27B0"

	// CSV layout
	CSVHabitMarker  = "[HABIT]"
	CSVDateHeader   = "Date"
	CSVTagSeparator = "|"
)

// CSVRecordHeader is the sub-header written below every habit marker.
var CSVRecordHeader = []string{"Date", "IsCompleted", "Note", "CurrentTags"}
