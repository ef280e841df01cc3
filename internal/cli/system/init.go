package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/storage/postgres"
	"github.com/julianstephens/habitick/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing database before initializing."`
	Source string `help:"Database path or PostgreSQL connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized habitick storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force is only supported for SQLite storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	_, err := os.Stat(dbPath)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if postgres.IsConnString(source) {
		if _, err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials; use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

// copyFrom copies settings, habits, records and tags from the source store.
func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	src, err := openSource(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	ctx.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err == nil {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings to destination: %w", err)
		}
	}

	ctx.Println("  Copying habits...")
	habits, err := src.ListHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, h := range habits {
		if err := ctx.Store.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
	}
	ctx.Printf("    Copied %d habits\n", len(habits))

	ctx.Println("  Copying records...")
	records, err := src.ListAllRecords()
	if err != nil {
		return fmt.Errorf("failed to get records from source: %w", err)
	}
	for _, r := range records {
		if err := ctx.Store.UpsertRecord(r); err != nil {
			return fmt.Errorf("failed to add record %s/%s: %w", r.HabitID, r.Date.Format("2006-01-02"), err)
		}
	}
	ctx.Printf("    Copied %d records\n", len(records))

	ctx.Println("  Copying tags...")
	tags, err := src.ListTags("")
	if err != nil {
		return fmt.Errorf("failed to get tags from source: %w", err)
	}
	for _, t := range tags {
		if err := ctx.Store.AddTag(t); err != nil {
			return fmt.Errorf("failed to add tag %s: %w", t.Name, err)
		}
	}
	ctx.Printf("    Copied %d tags\n", len(tags))
	return nil
}
