package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitick/internal/calendar"
	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/stats"
	"github.com/julianstephens/habitick/internal/tracker"
	"github.com/julianstephens/habitick/internal/utils"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	DoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// heatLevels are the cell colors for calendar.Level 0..4.
	heatLevels = []lipgloss.Color{"236", "22", "28", "34", "46"}
)

const (
	heatCell  = "■"
	barGlyph  = "█"
	barWidth  = 30
	doneMark  = "✓"
	emptyMark = "·"
)

func habitStyle(h models.Habit) lipgloss.Style {
	color := h.Color
	if color == "" {
		color = constants.DefaultHabitColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// RenderHome lists habits with today's state.
func RenderHome(items []tracker.HomeItem) string {
	if len(items) == 0 {
		return "No habits yet. Add one with 'habitick habit add'.\n"
	}
	var b strings.Builder
	for i, it := range items {
		mark := DimStyle.Render(emptyMark)
		if it.DoneToday {
			mark = DoneStyle.Render(doneMark)
		}
		name := habitStyle(it.Habit).Render(it.Habit.Name)
		if !it.Due {
			name += DimStyle.Render(" (not due)")
		}
		fmt.Fprintf(&b, "%2d. %s %s", i+1, mark, name)
		if it.CurrentStreak > 0 {
			fmt.Fprintf(&b, "  %s", LabelStyle.Render(fmt.Sprintf("🔥 %d", it.CurrentStreak)))
		}
		if it.TodayNote != "" {
			fmt.Fprintf(&b, "  %s", it.TodayNote)
		}
		if len(it.TodayTags) > 0 {
			fmt.Fprintf(&b, "  %s", LabelStyle.Render("#"+strings.Join(it.TodayTags, " #")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDetail prints a habit's definition, stats, streaks and tags.
func RenderDetail(d tracker.Detail) string {
	var b strings.Builder
	h := d.Habit
	title := habitStyle(h).Bold(true).Render(h.Name)
	if d.Stale {
		title += DimStyle.Render(" (deleted)")
	}
	b.WriteString(title + "\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-16s", label+":")), value)
	}
	row("Type", h.Type.Label())
	row("Days", models.DescribeFrequency(h.Frequency))
	row("Started", utils.FormatDate(h.StartDate))
	if h.EndDate != nil {
		row("Ends", utils.FormatDate(*h.EndDate))
	}
	if h.Target() != "" {
		row("Target", h.Target())
	}

	b.WriteString("\n" + TitleStyle.Render("Stats") + "\n")
	s := d.Stats
	row("Days since start", fmt.Sprint(s.DaysSinceStart))
	row("Check-ins", fmt.Sprint(s.TotalCheckIns))
	row("Check-in rate", fmt.Sprintf("%d%%", s.CheckInRate))
	if h.Type != models.HabitNormal {
		row("Total", s.TotalValue)
		row("Average", s.AvgValue)
		row("Median", s.MedianValue)
		row("Min", s.MinValue)
		row("Max", s.MaxValue)
	}

	b.WriteString("\n" + TitleStyle.Render("Streaks") + "\n")
	if d.Best == nil {
		b.WriteString("  " + DimStyle.Render("none yet") + "\n")
	} else {
		row("Best", FormatStreak(*d.Best))
		row("Streaks", fmt.Sprint(len(d.Streaks)))
	}

	if len(d.Tags) > 0 {
		b.WriteString("\n" + TitleStyle.Render("Tags") + "\n")
		b.WriteString(RenderTagDistribution(d.Tags))
	}
	return b.String()
}

func FormatStreak(s stats.StreakInfo) string {
	unit := "days"
	if s.Days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s (%s → %s)", s.Days, unit, utils.FormatDate(s.StartDate), utils.FormatDate(s.EndDate))
}

func RenderTagDistribution(tags []stats.TagCount) string {
	maxCount := 0
	width := 0
	for _, t := range tags {
		maxCount = max(maxCount, t.Count)
		width = max(width, len(t.Name))
	}
	var b strings.Builder
	for _, t := range tags {
		fmt.Fprintf(&b, "  %-*s %s %d\n", width, t.Name, bar(t.Count, maxCount), t.Count)
	}
	return b.String()
}

// RenderChart draws one horizontal bar per bucket.
func RenderChart(buckets []calendar.Bucket, style lipgloss.Style) string {
	maxCount := 0
	width := 0
	for _, bk := range buckets {
		maxCount = max(maxCount, bk.Count)
		width = max(width, len(bk.Label))
	}
	var b strings.Builder
	for _, bk := range buckets {
		fmt.Fprintf(&b, "%*s %s %d\n", width, bk.Label, style.Render(bar(bk.Count, maxCount)), bk.Count)
	}
	return b.String()
}

func bar(n, maxN int) string {
	if n <= 0 || maxN <= 0 {
		return ""
	}
	w := n * barWidth / maxN
	if w == 0 {
		w = 1
	}
	return strings.Repeat(barGlyph, w)
}

// RenderMonth draws a Sunday-first month grid; completed days use the habit color.
func RenderMonth(h models.Habit, v tracker.MonthView, today time.Time) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(v.Month.Format("January 2006")) + "\n")
	b.WriteString(LabelStyle.Render("Su Mo Tu We Th Fr Sa") + "\n")
	done := habitStyle(h).Bold(true)
	for i, d := range v.Cells {
		cell := fmt.Sprintf("%2d", d.Day())
		rec, ok := v.Records[utils.FormatDate(d)]
		switch {
		case d.Month() != v.Month.Month():
			cell = DimStyle.Render(cell)
		case ok && rec.IsCompleted:
			cell = done.Render(cell)
		case utils.SameDay(d, today):
			cell = lipgloss.NewStyle().Underline(true).Render(cell)
		}
		b.WriteString(cell)
		if i%7 == 6 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// RenderHeatmap draws the year as 7 weekday rows by 52 week columns.
func RenderHeatmap(v tracker.YearView) string {
	var b strings.Builder
	b.WriteString("    ")
	lastMonth := time.Month(0)
	for w := 0; w < constants.HeatmapWeeks; w++ {
		m := v.Heatmap.Cells[w][0].Month()
		if m != lastMonth && w+3 <= constants.HeatmapWeeks {
			label := m.String()[:3]
			b.WriteString(LabelStyle.Render(label))
			w += len(label) - 1
			lastMonth = m
			continue
		}
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for d := 0; d < 7; d++ {
		label := "   "
		if d%2 == 1 {
			label = time.Weekday(d).String()[:3]
		}
		b.WriteString(LabelStyle.Render(label) + " ")
		for w := 0; w < constants.HeatmapWeeks; w++ {
			day := v.Heatmap.Cells[w][d]
			level := calendar.Level(v.Counts[utils.FormatDate(day)])
			b.WriteString(lipgloss.NewStyle().Foreground(heatLevels[level]).Render(heatCell))
		}
		b.WriteString("\n")
	}

	b.WriteString("    " + LabelStyle.Render("less "))
	for _, c := range heatLevels {
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render(heatCell))
	}
	b.WriteString(LabelStyle.Render(" more") + "\n")
	return b.String()
}
