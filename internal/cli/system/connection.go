package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/keyring"
	"github.com/julianstephens/habitick/internal/storage/postgres"
)

type ConfigCmd struct {
	SetConnection   SetConnectionCmd   `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	ClearConnection ClearConnectionCmd `cmd:"" help:"Remove the stored connection string."`
	Status          KeyringStatusCmd   `cmd:"" help:"Show where the connection string comes from." default:"1"`
}

type SetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string."`
}

func (cmd *SetConnectionCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.Println("✓ Connection string stored in OS keyring")
	ctx.Println("  habitick will use it when --config is not given")
	return nil
}

type ClearConnectionCmd struct{}

func (cmd *ClearConnectionCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	connStr, source, err := keyring.ResolveConnectionString()
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Printf("ℹ No connection string configured; using %s\n", ctx.Store.GetConfigPath())
	case err != nil:
		return err
	default:
		ctx.Printf("✓ Connection string from %s: %s\n", source, maskPassword(connStr))
	}
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
	}
	return nil
}

// maskPassword hides any password in a URL or key=value connection string.
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) && strings.Contains(connStr, "://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
