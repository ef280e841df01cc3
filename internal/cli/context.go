package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitick/internal/backup"
	"github.com/julianstephens/habitick/internal/logger"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/notifier"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/storage/sqlite"
	"github.com/julianstephens/habitick/internal/tracker"
	"github.com/julianstephens/habitick/internal/utils"
	"github.com/julianstephens/habitick/internal/watch"
)

// Migrator is implemented by stores that carry an embedded schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (current, latest int, err error)
}

type Context struct {
	// Store is the backing store; commands that need change events go
	// through Tracker or Observed.
	Store    storage.Provider
	Notifier notifier.Notifier
	Out      io.Writer
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title, description string) (bool, error)
	// Now overrides the clock in tests.
	Now func() time.Time

	hub      *watch.Hub
	observed *storage.Observed
	tracker  *tracker.Tracker
	settings models.Settings
	loc      *time.Location
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Open loads settings and wires the tracker. It is idempotent.
func (c *Context) Open() (*tracker.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	settings, err := c.Store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	c.settings = settings
	c.loc = utils.LocationFromSettings(settings)
	c.Store.SetLocation(c.loc)

	c.hub = watch.NewHub()
	c.observed = storage.NewObserved(c.Store, c.hub)

	var bk tracker.Backuper
	if _, ok := c.Store.(*sqlite.Store); ok {
		bk = backup.NewManager(c.Store.GetConfigPath())
	}
	n := c.Notifier
	if n == nil {
		n = notifier.NewConsole(os.Stderr)
	}
	c.tracker = tracker.New(tracker.Config{
		Store:    c.observed,
		Hub:      c.hub,
		Notifier: n,
		Backup:   bk,
		Location: c.loc,
		Settings: settings,
		Now:      c.Now,
		Stdout:   c.out(),
	})
	return c.tracker, nil
}

func (c *Context) Settings() models.Settings { return c.settings }

func (c *Context) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// PerformAutomaticBackup snapshots a file-backed store. Failures are logged only.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirmed returns true when yes is set, otherwise asks.
func (c *Context) Confirmed(yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	ask := c.Confirm
	if ask == nil {
		ask = promptConfirm
	}
	return ask(title, description)
}

func promptConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// ParseDay accepts YYYY-MM-DD, "today", "yesterday", or "" (today).
func (c *Context) ParseDay(s string) (time.Time, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	today := utils.StartOfDay(now().In(c.Location()))
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	d, err := utils.ParseDateInLocation(strings.TrimSpace(s), c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return d, nil
}
