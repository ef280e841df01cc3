// Package transfer holds the CSV export and import commands.
package transfer

import (
	"context"
	"os"
	"os/signal"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/tracker"
)

type ExportCmd struct {
	Path string `arg:"" help:"Destination CSV file; '-' writes to stdout." default:"-"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t.ExportCSV(sig, c.Path)
	return t.Wait()
}

type ImportCmd struct {
	Path string `arg:"" help:"CSV file to import; '-' reads stdin."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if c.Path != tracker.StdStream {
		if _, err := os.Stat(c.Path); err != nil {
			return err
		}
	}
	ok, err := ctx.Confirmed(c.Yes || c.Path == tracker.StdStream, "Import "+c.Path+"?",
		"Habits are matched by name; existing days are overwritten by the file.")
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Import cancelled.")
		return nil
	}

	t, err := ctx.Open()
	if err != nil {
		return err
	}
	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t.ImportCSV(sig, c.Path)
	return t.Wait()
}
