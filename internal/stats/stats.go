// Package stats derives progress metrics from a habit's records.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
)

// HabitStats holds the derived metrics shown on a habit's detail view.
type HabitStats struct {
	DaysSinceStart int    `json:"days_since_start"`
	TotalCheckIns  int    `json:"total_check_ins"`
	CheckInRate    int    `json:"check_in_rate"` // percent
	TotalValue     string `json:"total_value"`
	AvgValue       string `json:"avg_value"`
	MedianValue    string `json:"median_value"`
	MinValue       string `json:"min_value"`
	MaxValue       string `json:"max_value"`
}

// Options tunes the aggregation.
type Options struct {
	// KeepZero keeps zero values in the numeric aggregates. By default only
	// strictly positive values are aggregated.
	KeepZero bool
}

// Compute derives HabitStats for a habit from its records as of now.
func Compute(habit models.Habit, records []models.HabitRecord, now time.Time, opts Options) HabitStats {
	days := DaysSinceStart(habit.StartDate, now)

	checkIns := 0
	for _, r := range records {
		if r.IsCompleted {
			checkIns++
		}
	}

	rate := 0
	if days > 0 {
		rate = int(math.Round(float64(checkIns) / float64(days) * 100))
	}

	result := HabitStats{
		DaysSinceStart: days,
		TotalCheckIns:  checkIns,
		CheckInRate:    rate,
		TotalValue:     constants.Placeholder,
		AvgValue:       constants.Placeholder,
		MedianValue:    constants.Placeholder,
		MinValue:       constants.Placeholder,
		MaxValue:       constants.Placeholder,
	}

	values := collectValues(habit.Type, records, opts)
	if len(values) == 0 {
		return result
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	sort.Float64s(values)
	minV, maxV := values[0], values[len(values)-1]
	avg := sum / float64(len(values))
	med := Median(values)

	if habit.Type == models.HabitTimePoint {
		// A sum of clock times has no meaning.
		result.AvgValue = FormatMinutes(avg)
		result.MedianValue = FormatMinutes(med)
		result.MinValue = FormatMinutes(minV)
		result.MaxValue = FormatMinutes(maxV)
		return result
	}

	result.TotalValue = fmt.Sprintf("%.0f", sum)
	result.AvgValue = fmt.Sprintf("%.2f", avg)
	result.MedianValue = fmt.Sprintf("%.2f", med)
	result.MinValue = fmt.Sprintf("%.1f", minV)
	result.MaxValue = fmt.Sprintf("%.1f", maxV)
	return result
}

// DaysSinceStart counts the days from start through now inclusive, never negative.
func DaysSinceStart(start, now time.Time) int {
	elapsed := now.Sub(start)
	days := int(math.Floor(elapsed.Hours()/24)) + 1
	if days < 0 {
		return 0
	}
	return days
}

// Median returns the middle value of vs, or the mean of the two middle values
// for an even count. vs need not be sorted; it is not modified. Empty input yields 0.
func Median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func collectValues(habitType models.HabitType, records []models.HabitRecord, opts Options) []float64 {
	var values []float64
	for _, r := range records {
		if v, ok := opts.value(r, habitType); ok {
			values = append(values, v)
		}
	}
	return values
}

// value extracts r's numeric value, dropping negatives and, unless KeepZero
// is set, zeros.
func (o Options) value(r models.HabitRecord, habitType models.HabitType) (float64, bool) {
	v, ok := ExtractValue(r.Value, habitType)
	if !ok || v < 0 || (v == 0 && !o.KeepZero) {
		return 0, false
	}
	return v, true
}

// Point is one value on a habit's value chart.
type Point struct {
	Date  time.Time
	Value float64
}

// ValueSeries returns the last limit numeric values in date order, filtered
// the same way as the aggregates in Compute. A limit of zero or less returns
// every value.
func ValueSeries(habitType models.HabitType, records []models.HabitRecord, limit int, opts Options) []Point {
	var points []Point
	for _, r := range records {
		v, ok := opts.value(r, habitType)
		if !ok {
			continue
		}
		points = append(points, Point{Date: r.Date, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points
}

// TagCount is the number of records carrying a tag.
type TagCount struct {
	Name  string
	Count int
}

// TagDistribution counts tag usage across records, most used first and ties by name.
func TagDistribution(records []models.HabitRecord) []TagCount {
	counts := make(map[string]int)
	for _, r := range records {
		for _, tag := range r.TagList() {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
