package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with today's progress." default:"1"`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and all of its records."`
	Show    HabitShowCmd    `cmd:"" help:"Show a habit's stats, streaks and tags."`
	Streaks HabitStreaksCmd `cmd:"" help:"List every streak of a habit."`
	Mark    HabitMarkCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Note    HabitNoteCmd    `cmd:"" help:"Set the value or note of a day."`
	Tag     HabitTagCmd     `cmd:"" help:"Set the tags of a day."`
}

type HabitFields struct {
	Color     string `help:"Color in #RRGGBB format."`
	Type      string `help:"Habit type: normal, numeric, timer or timepoint."`
	Days      string `help:"Comma-separated ISO weekdays (1=Mon ... 7=Sun)."`
	Target    string `help:"Target value, e.g. 30 or 07:00."`
	StartDate string `name:"start" help:"Start date (YYYY-MM-DD)."`
	EndDate   string `name:"end" help:"End date (YYYY-MM-DD); 'none' clears it."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	HabitFields `embed:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	if _, err := t.FindHabit(c.Name); err == nil {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	h := models.Habit{Name: c.Name, Frequency: models.ParseFrequency(c.Days)}
	if err := c.apply(ctx, &h); err != nil {
		return err
	}
	h, err = t.AddHabit(h)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (%s)\n", h.Name, models.DescribeFrequency(h.Frequency))
	return nil
}

// apply copies the set flags onto h.
func (f HabitFields) apply(ctx *cli.Context, h *models.Habit) error {
	if f.Color != "" {
		h.Color = f.Color
	}
	if f.Type != "" {
		typ, err := models.ParseHabitType(f.Type)
		if err != nil {
			return err
		}
		h.Type = typ
	}
	if f.Target != "" {
		h.TargetValue = models.StrPtr(f.Target)
	}
	if f.StartDate != "" {
		d, err := ctx.ParseDay(f.StartDate)
		if err != nil {
			return err
		}
		h.StartDate = d
	}
	switch strings.ToLower(f.EndDate) {
	case "":
	case "none":
		h.EndDate = nil
	default:
		d, err := ctx.ParseDay(f.EndDate)
		if err != nil {
			return err
		}
		h.EndDate = &d
	}
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
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
	ctx.Printf("%s", cli.RenderHome(items))
	return nil
}

type HabitEditCmd struct {
	Habit       string `arg:"" help:"Habit name or id."`
	Name        string `help:"New name."`
	HabitFields `embed:""`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if c.Name != "" {
		h.Name = c.Name
	}
	if c.Days != "" {
		h.Frequency = models.ParseFrequency(c.Days)
	}
	if err := c.apply(ctx, &h); err != nil {
		return err
	}
	if err := t.UpdateHabit(h); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", h.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	ok, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Delete %q?", h.Name), "All of its records and tags will be removed.")
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}
	ctx.PerformAutomaticBackup()
	if err := t.DeleteHabit(h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	d, err := t.Detail(h.ID)
	if err != nil {
		return err
	}
	ctx.Printf("%s", cli.RenderDetail(d))
	return nil
}

type HabitStreaksCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Limit int    `help:"Show at most this many streaks (0 = all)." default:"0"`
}

func (c *HabitStreaksCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	d, err := t.Detail(h.ID)
	if err != nil {
		return err
	}
	if len(d.Streaks) == 0 {
		ctx.Println("No streaks yet.")
		return nil
	}
	for i, s := range d.Streaks {
		if c.Limit > 0 && i >= c.Limit {
			break
		}
		line := cli.FormatStreak(s)
		if d.Best != nil && s.StartDate.Equal(d.Best.StartDate) {
			line = cli.DoneStyle.Render(line + "  best")
		}
		ctx.Println(line)
	}
	return nil
}
