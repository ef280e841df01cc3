package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitick/internal/backup"
	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/storage/sqlite"
	"github.com/julianstephens/habitick/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly checks report but never fail the run.
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Habit definitions", run: checkHabits, needsDB: true},
	{name: "Record dates", run: checkRecordDates, needsDB: true},
	{name: "Timezone setting", run: checkTimezone, needsDB: true},
	{name: "Clock", run: func(*cli.Context) error { return checkClock(time.Now()) }},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.MaxSortIndex(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaStatus()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaStatus()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("database is at version %d, latest is %d; run 'habitick migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s; run 'habitick backup create'", mgr.GetBackupDir())
	}
	return nil
}

func checkHabits(ctx *cli.Context) error {
	habits, err := ctx.Store.ListHabits()
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(habits))
	for _, h := range habits {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("habit %q (%s): %w", h.Name, h.ID, err)
		}
		if names[h.Name] {
			return fmt.Errorf("duplicate habit name %q; CSV import matches habits by name", h.Name)
		}
		names[h.Name] = true
	}
	return nil
}

func checkRecordDates(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	tomorrow := utils.StartOfDay(time.Now().In(utils.LocationFromSettings(settings))).AddDate(0, 0, 1)
	records, err := ctx.Store.ListAllRecords()
	if err != nil {
		return err
	}
	future := 0
	for _, r := range records {
		if !r.Date.Before(tomorrow) {
			future++
		}
	}
	if future > 0 {
		return fmt.Errorf("found %d records dated after today", future)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q; day boundaries fall back to local time", settings.Timezone)
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
