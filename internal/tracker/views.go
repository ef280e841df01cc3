package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitick/internal/calendar"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/stats"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/utils"
	"github.com/julianstephens/habitick/internal/watch"
)

// HomeItem is one row of the habit list.
type HomeItem struct {
	Habit         models.Habit
	DoneToday     bool
	TodayNote     string
	TodayTags     []string
	CurrentStreak int
	// Due reports whether the habit is scheduled today.
	Due bool
}

// Home returns the habit list as a live value that reloads on habit, record
// and tag changes. Close it when done.
func (t *Tracker) Home() *watch.Live[[]HomeItem] {
	return watch.NewLive(t.hub, t.loadHome, watch.TopicHabits, watch.TopicRecords, watch.TopicTags)
}

func (t *Tracker) loadHome() ([]HomeItem, error) {
	habits, err := t.store.ListHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	today := t.Today()
	todays, err := t.store.ListRecordsForDate(today)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's records: %w", err)
	}
	byHabit := make(map[string]models.HabitRecord, len(todays))
	for _, r := range todays {
		byHabit[r.HabitID] = r
	}

	items := make([]HomeItem, 0, len(habits))
	for _, h := range habits {
		records, err := t.store.ListRecords(h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list records for %s: %w", h.Name, err)
		}
		rec := byHabit[h.ID]
		items = append(items, HomeItem{
			Habit:         h,
			DoneToday:     rec.IsCompleted,
			TodayNote:     rec.Note(),
			TodayTags:     rec.TagList(),
			CurrentStreak: stats.CurrentStreak(records, today),
			Due:           h.ScheduledOn(today),
		})
	}
	return items, nil
}

// Detail is everything shown for a single habit.
type Detail struct {
	Habit   models.Habit
	Records []models.HabitRecord
	Stats   stats.HabitStats
	Streaks []stats.StreakInfo
	Best    *stats.StreakInfo
	Tags    []stats.TagCount
	// Stale is set when the habit no longer exists and this is the last
	// snapshot taken before it went away.
	Stale bool
}

// Detail derives the detail view for a habit. If the habit has been deleted
// the last snapshot is returned with Stale set; with no snapshot the
// storage.ErrNotFound is returned.
func (t *Tracker) Detail(habitID string) (Detail, error) {
	h, err := t.store.GetHabit(habitID)
	if errors.Is(err, storage.ErrNotFound) {
		t.mu.Lock()
		snap, ok := t.snapshots[habitID]
		t.mu.Unlock()
		if ok {
			snap.Stale = true
			return snap, nil
		}
		return Detail{}, err
	}
	if err != nil {
		return Detail{}, fmt.Errorf("failed to load habit: %w", err)
	}

	records, err := t.store.ListRecords(habitID)
	if err != nil {
		return Detail{}, fmt.Errorf("failed to list records: %w", err)
	}
	streaks := stats.Streaks(records)
	d := Detail{
		Habit:   h,
		Records: records,
		Stats:   stats.Compute(h, records, t.now().In(t.loc), stats.Options{KeepZero: t.settings.StatsKeepZero}),
		Streaks: streaks,
		Tags:    stats.TagDistribution(records),
	}
	if best, ok := stats.BestStreak(streaks); ok {
		d.Best = &best
	}

	t.mu.Lock()
	t.snapshots[habitID] = d
	t.mu.Unlock()
	return d, nil
}

// LiveDetail follows Detail for one habit.
func (t *Tracker) LiveDetail(habitID string) *watch.Live[Detail] {
	return watch.NewLive(t.hub, func() (Detail, error) { return t.Detail(habitID) },
		watch.TopicHabits, watch.TopicRecords)
}

// Chart buckets a habit's completions for the period ending today.
func (t *Tracker) Chart(habitID string, period calendar.Period) ([]calendar.Bucket, error) {
	records, err := t.store.ListRecords(habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return calendar.CheckInBuckets(records, period, t.now().In(t.loc)), nil
}

// MonthView is a month grid with the records of the days inside it.
type MonthView struct {
	Month   time.Time
	Cells   []time.Time
	Records map[string]models.HabitRecord // keyed by yyyy-MM-dd
}

func (t *Tracker) Month(habitID string, anchor time.Time) (MonthView, error) {
	records, err := t.store.ListRecords(habitID)
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to list records: %w", err)
	}
	anchor = anchor.In(t.loc)
	v := MonthView{
		Month:   utils.StartOfMonth(anchor),
		Cells:   calendar.MonthGrid(anchor),
		Records: make(map[string]models.HabitRecord),
	}
	for _, r := range records {
		if r.Date.Year() == v.Month.Year() && r.Date.Month() == v.Month.Month() {
			v.Records[utils.FormatDate(r.Date)] = r
		}
	}
	return v, nil
}

// YearView is the all-habit heatmap with completion counts per day.
type YearView struct {
	Heatmap calendar.Heatmap
	Counts  map[string]int // keyed by yyyy-MM-dd
}

func (t *Tracker) Year() (YearView, error) {
	hm := calendar.YearHeatmap(t.now().In(t.loc))
	last := hm.Cells[len(hm.Cells)-1][6]
	entries, err := t.store.HeatmapCounts(hm.Start, last)
	if err != nil {
		return YearView{}, fmt.Errorf("failed to count completions: %w", err)
	}
	v := YearView{Heatmap: hm, Counts: make(map[string]int, len(entries))}
	for _, e := range entries {
		v.Counts[utils.FormatDate(e.Date)] = e.Count
	}
	return v, nil
}
