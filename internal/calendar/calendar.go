// Package calendar builds the date grids behind the month calendar, the year
// heatmap, and the check-in chart.
package calendar

import (
	"math"
	"time"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/utils"
)

// MonthDays returns every day of the anchor's month at midnight.
func MonthDays(anchor time.Time) []time.Time {
	first := utils.StartOfMonth(anchor)
	var days []time.Time
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthGrid returns a 6x7 calendar page for the anchor's month, starting on the
// Sunday on or before the first of the month.
func MonthGrid(anchor time.Time) []time.Time {
	first := utils.StartOfMonth(anchor)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	cells := make([]time.Time, constants.MonthGridCells)
	for i := range cells {
		cells[i] = start.AddDate(0, 0, i)
	}
	return cells
}

// Heatmap is a week-major grid of days: Cells[week][weekday], Sunday first.
type Heatmap struct {
	Start time.Time
	Cells [constants.HeatmapWeeks][7]time.Time
}

// YearHeatmap lays out the 52 weeks leading up to now, starting on the Sunday
// on or before the same day 52 weeks ago.
func YearHeatmap(now time.Time) Heatmap {
	ago := utils.StartOfDay(now).AddDate(0, 0, -7*constants.HeatmapWeeks)
	start := ago.AddDate(0, 0, -int(ago.Weekday()))

	h := Heatmap{Start: start}
	for w := 0; w < constants.HeatmapWeeks; w++ {
		for d := 0; d < 7; d++ {
			h.Cells[w][d] = start.AddDate(0, 0, w*7+d)
		}
	}
	return h
}

// Contains reports whether day falls within the heatmap.
func (h Heatmap) Contains(day time.Time) bool {
	last := h.Cells[constants.HeatmapWeeks-1][6]
	d := utils.StartOfDay(day.In(h.Start.Location()))
	return !d.Before(h.Start) && !d.After(last)
}

// Intensity maps a completion count to a shade in [0, 1]; zero stays empty and
// every further completion deepens the shade until it saturates.
func Intensity(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(1, 0.2+0.15*float64(count))
}

// Level buckets a completion count into 0..4 for terminal palettes, following
// the same ordering as Intensity.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count == 2:
		return 2
	case count <= 4:
		return 3
	default:
		return 4
	}
}
