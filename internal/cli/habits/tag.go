package habits

import (
	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/utils"
)

type TagCmd struct {
	List   TagListCmd   `cmd:"" help:"List tags, most recently used first." default:"1"`
	Add    TagAddCmd    `cmd:"" help:"Add a tag to a habit."`
	Delete TagDeleteCmd `cmd:"" help:"Delete a tag from a habit."`
}

type TagListCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or id; all habits when omitted."`
}

func (c *TagListCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	habitID := ""
	names := map[string]string{}
	if c.Habit != "" {
		h, err := t.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		habitID = h.ID
		names[h.ID] = h.Name
	} else {
		habits, err := t.Habits()
		if err != nil {
			return err
		}
		for _, h := range habits {
			names[h.ID] = h.Name
		}
	}

	tags, err := t.Tags(habitID)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		ctx.Println("No tags found.")
		return nil
	}
	for _, tag := range tags {
		ctx.Printf("%-20s %-20s %s\n", tag.Name, names[tag.HabitID], cli.DimStyle.Render(lastUsed(tag)))
	}
	return nil
}

func lastUsed(tag models.Tag) string {
	if tag.LastUsed.IsZero() {
		return "never used"
	}
	return "last used " + utils.FormatDate(tag.LastUsed)
}

type TagAddCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Name  string `arg:"" help:"Tag name."`
}

func (c *TagAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := t.AddTag(h.ID, c.Name); err != nil {
		return err
	}
	ctx.Printf("Added tag %q to %s\n", c.Name, h.Name)
	return nil
}

type TagDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Name  string `arg:"" help:"Tag name."`
}

func (c *TagDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := t.DeleteTag(h.ID, c.Name); err != nil {
		return err
	}
	ctx.Printf("Deleted tag %q from %s\n", c.Name, h.Name)
	return nil
}
