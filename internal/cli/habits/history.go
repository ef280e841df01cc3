package habits

import (
	"time"

	"github.com/julianstephens/habitick/internal/calendar"
	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/stats"
)

type HistoryCmd struct {
	Month HistoryMonthCmd `cmd:"" help:"Show one habit's month calendar."`
	Year  HistoryYearCmd  `cmd:"" help:"Show the year heatmap of completions across habits."`
}

type HistoryMonthCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Month string `help:"Month to show (YYYY-MM); defaults to the current month."`
}

func (c *HistoryMonthCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	today := t.Today()
	anchor := today
	if c.Month != "" {
		anchor, err = time.ParseInLocation("2006-01", c.Month, ctx.Location())
		if err != nil {
			return err
		}
	}
	v, err := t.Month(h.ID, anchor)
	if err != nil {
		return err
	}
	ctx.Printf("%s", cli.RenderMonth(h, v, today))
	return nil
}

type HistoryYearCmd struct{}

func (c *HistoryYearCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	v, err := t.Year()
	if err != nil {
		return err
	}
	ctx.Printf("%s", cli.RenderHeatmap(v))
	return nil
}

type ChartCmd struct {
	Habit  string `arg:"" help:"Habit name or id."`
	Period string `help:"Chart period: week, month, quarter or year." default:"week"`
	Values int    `help:"Also list the last N recorded values of numeric habits." default:"0"`
}

func (c *ChartCmd) Run(ctx *cli.Context) error {
	period, err := calendar.ParsePeriod(c.Period)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	buckets, err := t.Chart(h.ID, period)
	if err != nil {
		return err
	}
	ctx.Println(cli.TitleStyle.Render(h.Name + " check-ins"))
	ctx.Printf("%s", cli.RenderChart(buckets, cli.DoneStyle))

	if c.Values > 0 {
		d, err := t.Detail(h.ID)
		if err != nil {
			return err
		}
		points := stats.ValueSeries(h.Type, d.Records, c.Values, stats.Options{KeepZero: ctx.Settings().StatsKeepZero})
		if len(points) == 0 {
			return nil
		}
		ctx.Println()
		ctx.Println(cli.TitleStyle.Render("Values"))
		for _, p := range points {
			ctx.Printf("%s  %s\n", p.Date.Format("2006-01-02"), stats.FormatAxisValue(p.Value, h.Type))
		}
	}
	return nil
}
