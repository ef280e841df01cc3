package constants

const (
	SettingTimezone      = "timezone"
	SettingDefaultColor  = "default_color"
	SettingStatsKeepZero = "stats_keep_zero"

	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultStatsKeepZero = false
)
