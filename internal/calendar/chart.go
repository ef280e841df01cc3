package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/utils"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod parses a chart period name (case-insensitive).
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q (expected week, month, quarter or year)", s)
	}
}

// Bucket is one bar of the check-in chart.
type Bucket struct {
	Label string
	Start time.Time
	Count int
}

// CheckInBuckets groups completed records into chart bars for the period ending
// at now. Week and Month are one bar per day (0 or 1); Quarter reuses the last 12
// daily bars of Month; Year is one bar per calendar month.
func CheckInBuckets(records []models.HabitRecord, period Period, now time.Time) []Bucket {
	today := utils.StartOfDay(now)

	switch period {
	case PeriodWeek:
		return dailyBuckets(records, today, 7, func(d time.Time) string { return d.Weekday().String()[:3] })
	case PeriodMonth:
		return dailyBuckets(records, today, 30, func(d time.Time) string { return strconv.Itoa(d.Day()) })
	case PeriodQuarter:
		month := CheckInBuckets(records, PeriodMonth, now)
		return month[len(month)-12:]
	case PeriodYear:
		return monthlyBuckets(records, today)
	default:
		return nil
	}
}

func dailyBuckets(records []models.HabitRecord, today time.Time, n int, label func(time.Time) string) []Bucket {
	done := make(map[string]bool)
	for _, r := range records {
		if r.IsCompleted {
			done[utils.FormatDate(r.Date.In(today.Location()))] = true
		}
	}

	buckets := make([]Bucket, 0, n)
	for d := today.AddDate(0, 0, -(n - 1)); !d.After(today); d = d.AddDate(0, 0, 1) {
		b := Bucket{Label: label(d), Start: d}
		if done[utils.FormatDate(d)] {
			b.Count = 1
		}
		buckets = append(buckets, b)
	}
	return buckets
}

func monthlyBuckets(records []models.HabitRecord, today time.Time) []Bucket {
	first := utils.StartOfMonth(today).AddDate(0, -11, 0)
	buckets := make([]Bucket, 0, 12)
	for i := 0; i < 12; i++ {
		start := first.AddDate(0, i, 0)
		end := start.AddDate(0, 1, 0)
		b := Bucket{Label: start.Month().String()[:3], Start: start}
		for _, r := range records {
			if r.IsCompleted && !r.Date.Before(start) && r.Date.Before(end) {
				b.Count++
			}
		}
		buckets = append(buckets, b)
	}
	return buckets
}
