package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// HeatmapWeeks is the number of week columns in the year heatmap.
	HeatmapWeeks = 52

	// MonthGridCells is the number of cells in a 6x7 month calendar.
	MonthGridCells = 42

	// TimestampFormat is a fixed-width UTC timestamp that sorts lexically.
	TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"
)
