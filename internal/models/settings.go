package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitick/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	Timezone      string `json:"timezone"`        // IANA timezone name or "Local"
	DefaultColor  string `json:"default_color"`   // color for habits created without one
	StatsKeepZero bool   `json:"stats_keep_zero"` // keep zero values in numeric aggregates
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDefaultColor:
			settings.DefaultColor = value
		case constants.SettingStatsKeepZero:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingStatsKeepZero, err)
			}
			settings.StatsKeepZero = b
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:      settings.Timezone,
		constants.SettingDefaultColor:  settings.DefaultColor,
		constants.SettingStatsKeepZero: strconv.FormatBool(settings.StatsKeepZero),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.DefaultColor == "" {
		settings.DefaultColor = constants.DefaultHabitColor
	}
}
