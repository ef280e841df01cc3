package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// EveryDay is the frequency used when none can be parsed.
var EveryDay = []int{1, 2, 3, 4, 5, 6, 7}

// IsoWeekday converts a time.Weekday to 1=Monday ... 7=Sunday.
func IsoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// ParseFrequency parses a comma-separated list of ISO weekday numbers.
// Blank or unusable input falls back to every day; out-of-range and
// duplicate members are dropped.
func ParseFrequency(s string) []int {
	if strings.TrimSpace(s) == "" {
		return append([]int(nil), EveryDay...)
	}

	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 7 || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	if len(days) == 0 {
		return append([]int(nil), EveryDay...)
	}
	sort.Ints(days)
	return days
}

// FormatFrequency joins weekday numbers with commas in ascending order.
func FormatFrequency(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// DescribeFrequency renders a frequency for display ("daily" or "Mon,Wed,Fri").
func DescribeFrequency(days []int) string {
	if len(days) == 0 {
		return "never"
	}
	if len(days) >= 7 {
		return "daily"
	}
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	var names []string
	for _, d := range sorted {
		wd := time.Weekday(d % 7)
		names = append(names, wd.String()[:3])
	}
	return strings.Join(names, ",")
}
