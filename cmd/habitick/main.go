package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/cli/backups"
	"github.com/julianstephens/habitick/internal/cli/habits"
	"github.com/julianstephens/habitick/internal/cli/settings"
	"github.com/julianstephens/habitick/internal/cli/system"
	"github.com/julianstephens/habitick/internal/cli/transfer"
	"github.com/julianstephens/habitick/internal/constants"
	apperrors "github.com/julianstephens/habitick/internal/errors"
	"github.com/julianstephens/habitick/internal/keyring"
	"github.com/julianstephens/habitick/internal/logger"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/storage/postgres"
	"github.com/julianstephens/habitick/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database file path or PostgreSQL connection string. Credentials must NOT be embedded; use ${env}, the OS keyring or .pgpass." default:"${default_config}"`
	Debug    bool   `help:"Mirror logs to stderr at debug level."`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:""`

	Init      system.InitCmd       `cmd:"" help:"Initialize habitick storage."`
	Migrate   system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Habit     habits.HabitCmd      `cmd:"" help:"Manage habits and daily records." default:"1"`
	Sort      habits.SortCmd       `cmd:"" help:"Reorder habits."`
	History   habits.HistoryCmd    `cmd:"" help:"Show calendars and the year heatmap."`
	Chart     habits.ChartCmd      `cmd:"" help:"Chart a habit's check-ins."`
	Tag       habits.TagCmd        `cmd:"" help:"Manage habit tags."`
	Export    transfer.ExportCmd   `cmd:"" help:"Export every habit to CSV."`
	Import    transfer.ImportCmd   `cmd:"" help:"Import habits from CSV."`
	Backup    backups.BackupCmd    `cmd:"" help:"Manage database backups."`
	Settings  settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	ConfigCmd system.ConfigCmd     `cmd:"" name:"config" help:"Manage the PostgreSQL connection string."`
	Notify    system.NotifyCmd     `cmd:"" hidden:"" help:"Send a reminder for habits left today (used by schedulers)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, stats and calendar heatmaps"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"env":            constants.ConnectionEnvVar,
		},
	)

	store, err := openStore(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir(store), Level: CLI.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "store", store.GetConfigPath())

	appCtx := &cli.Context{Store: store}

	if needsStore(ctx.Command()) {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	if err != nil {
		apperrors.Fatal(err)
	}
	_ = logger.Close()
}

// needsStore reports whether the command runs against a loaded database.
// init creates it, doctor reports on loading itself and config never touches it.
func needsStore(command string) bool {
	for _, prefix := range []string{"init", "doctor", "config"} {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}

// openStore picks the backend. An explicit --config wins; with the default
// path a connection string from the environment or keyring selects PostgreSQL.
func openStore(config string) (storage.Provider, error) {
	if postgres.IsConnString(config) {
		if _, err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed on the command line; use %s, 'habitick config set-connection' or .pgpass", constants.ConnectionEnvVar)
			}
			return nil, err
		}
		return postgres.New(config), nil
	}

	if config == constants.DefaultConfigPath {
		connStr, source, err := keyring.ResolveConnectionString()
		switch {
		case err == nil:
			if _, verr := postgres.ValidateConnString(connStr); verr != nil && !errors.Is(verr, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("connection string from %s: %w", source, verr)
			}
			return postgres.New(connStr), nil
		case !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable):
			return nil, err
		}
	}

	path, err := expandHome(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func logDir(store storage.Provider) string {
	if _, ok := store.(*sqlite.Store); ok {
		return filepath.Dir(store.GetConfigPath())
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, constants.AppName)
}
