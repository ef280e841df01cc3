package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/utils"
)

// StreakInfo is a maximal run of consecutive completed days.
type StreakInfo struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`
}

// Streaks returns every streak in the records, newest first.
func Streaks(records []models.HabitRecord) []StreakInfo {
	days := completedDays(records)
	if len(days) == 0 {
		return []StreakInfo{}
	}

	var streaks []StreakInfo
	current := StreakInfo{StartDate: days[0], EndDate: days[0], Days: 1}
	for _, d := range days[1:] {
		if utils.IsNextDay(current.EndDate, d) {
			current.EndDate = d
			current.Days++
			continue
		}
		streaks = append(streaks, current)
		current = StreakInfo{StartDate: d, EndDate: d, Days: 1}
	}
	streaks = append(streaks, current)

	sort.SliceStable(streaks, func(i, j int) bool {
		return streaks[i].StartDate.After(streaks[j].StartDate)
	})
	return streaks
}

// BestStreak picks the longest streak, the earliest one on ties.
func BestStreak(streaks []StreakInfo) (StreakInfo, bool) {
	if len(streaks) == 0 {
		return StreakInfo{}, false
	}
	best := streaks[0]
	for _, s := range streaks[1:] {
		if s.Days > best.Days || (s.Days == best.Days && s.StartDate.Before(best.StartDate)) {
			best = s
		}
	}
	return best, true
}

// CurrentStreak is the length of the run ending today, or ending yesterday
// while today is still open. Any other gap yields 0.
func CurrentStreak(records []models.HabitRecord, today time.Time) int {
	done := make(map[string]bool)
	for _, d := range completedDays(records) {
		done[utils.FormatDate(d)] = true
	}

	check := utils.StartOfDay(today)
	if !done[utils.FormatDate(check)] {
		check = check.AddDate(0, 0, -1)
	}
	streak := 0
	for done[utils.FormatDate(check)] {
		streak++
		check = check.AddDate(0, 0, -1)
	}
	return streak
}

// completedDays returns the distinct days with a completed record, ascending.
func completedDays(records []models.HabitRecord) []time.Time {
	var days []time.Time
	for _, r := range records {
		if r.IsCompleted {
			days = append(days, utils.StartOfDay(r.Date))
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := days[:0]
	for i, d := range days {
		if i > 0 && utils.SameDay(out[len(out)-1], d) {
			continue
		}
		out = append(out, d)
	}
	return out
}
