package settings

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone      *string `help:"IANA timezone used for day boundaries, or Local."`
	DefaultColor  *string `help:"Color for new habits (#RRGGBB)."`
	StatsKeepZero *bool   `help:"Include zero values in numeric stats."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.DefaultColor != nil {
		if !models.ValidColor(*c.DefaultColor) {
			return models.ErrInvalidColor
		}
		settings.DefaultColor = *c.DefaultColor
		updated = true
	}
	if c.StatsKeepZero != nil {
		settings.StatsKeepZero = *c.StatsKeepZero
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	}
	if c.List || !updated {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:        %s\n", settings.Timezone)
		ctx.Printf("  Default Color:   %s\n", settings.DefaultColor)
		ctx.Printf("  Stats Keep Zero: %v\n", settings.StatsKeepZero)
	}
	return nil
}
