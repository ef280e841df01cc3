package system

import (
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/notifier"
	"github.com/julianstephens/habitick/internal/tracker"
)

// NotifyCmd sends a reminder listing habits due today that are not done yet.
// It is meant to be run from a scheduler such as cron.
type NotifyCmd struct {
	DryRun bool `help:"Print the reminder instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	home := t.Home()
	defer home.Close()

	items, err := home.Get()
	if err != nil {
		return err
	}
	text := Reminder(items)
	if text == "" {
		if c.DryRun {
			ctx.Println("Nothing left to do today.")
		}
		return nil
	}
	if c.DryRun {
		ctx.Println(text)
		return nil
	}

	n := ctx.Notifier
	if n == nil {
		n = notifier.Fallback{notifier.NewTray(), notifier.NewConsole(os.Stderr)}
	}
	if err := n.Notify(text); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Reminder builds the reminder text, or "" when every due habit is done.
func Reminder(items []tracker.HomeItem) string {
	var open []string
	for _, it := range items {
		if it.Due && !it.DoneToday {
			open = append(open, it.Habit.Name)
		}
	}
	switch len(open) {
	case 0:
		return ""
	case 1:
		return "1 habit left today: " + open[0]
	default:
		return fmt.Sprintf("%d habits left today: %s", len(open), strings.Join(open, ", "))
	}
}
