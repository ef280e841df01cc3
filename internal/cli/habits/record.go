package habits

import (
	"fmt"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/utils"
)

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Day to mark (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	rec, err := t.ToggleHabit(h.ID, nil, nil, &day)
	if err != nil {
		return err
	}
	verb := "Unmarked"
	if rec.IsCompleted {
		verb = "Marked"
	}
	ctx.Printf("%s %s for %s\n", verb, h.Name, utils.FormatDate(day))
	return nil
}

type HabitNoteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Value string `arg:"" help:"Value or note; empty clears it."`
	Date  string `help:"Day (YYYY-MM-DD, today, yesterday)." default:"today"`
	Done  *bool  `help:"Also set completion (--done or --done=false)."`
}

func (c *HabitNoteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	rec, err := t.UpdateRecord(h.ID, day, c.Done, &c.Value, nil)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s: %s\n", h.Name, utils.FormatDate(day), describeRecord(rec))
	return nil
}

type HabitTagCmd struct {
	Habit string   `arg:"" help:"Habit name or id."`
	Tags  []string `arg:"" optional:"" help:"Tags for the day; none clears them."`
	Date  string   `help:"Day (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *HabitTagCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	joined := ""
	for i, tag := range c.Tags {
		if i > 0 {
			joined += ","
		}
		joined += tag
	}
	rec, err := t.UpdateRecord(h.ID, day, nil, nil, &joined)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s: %s\n", h.Name, utils.FormatDate(day), describeRecord(rec))
	return nil
}

func describeRecord(r models.HabitRecord) string {
	if r.IsEmpty() {
		return "cleared"
	}
	s := "not done"
	if r.IsCompleted {
		s = "done"
	}
	if r.Note() != "" {
		s += fmt.Sprintf(", %q", r.Note())
	}
	if r.Tags != "" {
		s += ", tags " + r.Tags
	}
	return s
}
