package models

import (
	"testing"

	"github.com/julianstephens/habitick/internal/constants"
)

func TestSettingsRoundTrip(t *testing.T) {
	in := Settings{Timezone: "Europe/Berlin", DefaultColor: "#009688", StatsKeepZero: true}
	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() error: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestMapToSettingsRejectsBadBool(t *testing.T) {
	_, err := MapToSettings(map[string]string{constants.SettingStatsKeepZero: "maybe"})
	if err == nil {
		t.Error("expected error for non-boolean stats_keep_zero")
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	var s Settings
	ApplyDefaultSettings(&s)
	if s.Timezone != constants.DefaultTimezone || s.DefaultColor != constants.DefaultHabitColor {
		t.Errorf("defaults not applied: %+v", s)
	}
}
