package habits

import (
	"fmt"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
)

// SortCmd reorders habits. Each move is "FROM:TO" with 1-based positions,
// applied in order; nothing is saved unless every move is valid.
type SortCmd struct {
	Moves  []string `arg:"" optional:"" help:"Moves as FROM:TO (1-based), applied in order."`
	DryRun bool     `help:"Show the resulting order without saving it."`
}

func (c *SortCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	if _, err := t.StartSorting(); err != nil {
		return err
	}
	defer t.CancelSort()

	for _, mv := range c.Moves {
		var from, to int
		if _, err := fmt.Sscanf(mv, "%d:%d", &from, &to); err != nil {
			return fmt.Errorf("invalid move %q (expected FROM:TO)", mv)
		}
		if err := t.Move(from-1, to-1); err != nil {
			return err
		}
	}

	printOrder(ctx, t.Sorting())
	if len(c.Moves) == 0 || c.DryRun {
		return nil
	}
	if err := t.ConfirmSort(); err != nil {
		return err
	}
	ctx.Println("Sort order saved.")
	return nil
}

func printOrder(ctx *cli.Context, habits []models.Habit) {
	for i, h := range habits {
		ctx.Printf("%2d. %s\n", i+1, h.Name)
	}
}
