package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "habitick.db"))
	store.SetLocation(time.UTC)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testHabit(id, name string, sortIndex int) models.Habit {
	target := "30"
	return models.Habit{
		ID:          id,
		Name:        name,
		Color:       "#4CAF50",
		Type:        models.HabitNumeric,
		StartDate:   day(2024, 1, 1),
		Frequency:   []int{1, 3, 5},
		TargetValue: &target,
		SortIndex:   sortIndex,
	}
}

func TestInitSeedsDefaultSettings(t *testing.T) {
	store := setupTestStore(t)
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error: %v", err)
	}
	want := models.Settings{Timezone: constants.DefaultTimezone, DefaultColor: constants.DefaultHabitColor}
	if diff := cmp.Diff(want, settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}

	settings.StatsKeepZero = true
	settings.Timezone = "Europe/Berlin"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetSettings()
	if err != nil || !got.StatsKeepZero || got.Timezone != "Europe/Berlin" {
		t.Errorf("GetSettings() after save = %+v, %v", got, err)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("Load() on a missing database should fail")
	}
}

func TestReopenKeepsDataAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitick.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(testHabit("h1", "Read", 0)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	again := NewStore(path)
	if err := again.Init(); err != nil {
		t.Fatalf("second Init() error: %v", err)
	}
	defer again.Close()
	current, latest, err := again.SchemaStatus()
	if err != nil || current != latest {
		t.Errorf("SchemaStatus() = %d, %d, %v", current, latest, err)
	}
	habits, err := again.ListHabits()
	if err != nil || len(habits) != 1 {
		t.Errorf("ListHabits() = %v, %v", habits, err)
	}
}

func TestHabitCRUD(t *testing.T) {
	store := setupTestStore(t)

	if max, err := store.MaxSortIndex(); err != nil || max != -1 {
		t.Fatalf("MaxSortIndex() on empty store = %d, %v; want -1", max, err)
	}

	read := testHabit("h1", "Read", 1)
	end := day(2024, 12, 31)
	read.EndDate = &end
	run := testHabit("h2", "Run", 0)
	run.Type = models.HabitNormal
	run.TargetValue = nil
	run.Frequency = models.EveryDay

	for _, h := range []models.Habit{read, run} {
		if err := store.AddHabit(h); err != nil {
			t.Fatalf("AddHabit(%s) error: %v", h.Name, err)
		}
	}

	habits, err := store.ListHabits()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]models.Habit{run, read}, habits); diff != "" {
		t.Errorf("ListHabits() mismatch (-want +got):\n%s", diff)
	}

	got, err := store.GetHabitByName("Read")
	if err != nil || got.ID != "h1" {
		t.Errorf("GetHabitByName() = %+v, %v", got, err)
	}
	if _, err := store.GetHabit("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabit(missing) error = %v, want ErrNotFound", err)
	}

	read.Name = "Read books"
	read.IsCompleted = true
	if err := store.UpdateHabit(read); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetHabit("h1")
	if got.Name != "Read books" || !got.IsCompleted {
		t.Errorf("UpdateHabit() not persisted: %+v", got)
	}
	if err := store.UpdateHabit(testHabit("ghost", "Ghost", 9)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateHabit(missing) error = %v", err)
	}

	read.SortIndex, run.SortIndex = 0, 1
	if err := store.UpdateHabits([]models.Habit{read, run}); err != nil {
		t.Fatal(err)
	}
	habits, _ = store.ListHabits()
	if habits[0].ID != "h1" || habits[1].ID != "h2" {
		t.Errorf("order after UpdateHabits = %s, %s", habits[0].ID, habits[1].ID)
	}
	if max, _ := store.MaxSortIndex(); max != 1 {
		t.Errorf("MaxSortIndex() = %d, want 1", max)
	}
}

func TestRecordsAndCascadeDelete(t *testing.T) {
	store := setupTestStore(t)
	for _, h := range []models.Habit{testHabit("h1", "Read", 0), testHabit("h2", "Run", 1)} {
		if err := store.AddHabit(h); err != nil {
			t.Fatal(err)
		}
	}

	records := []models.HabitRecord{
		{HabitID: "h1", Date: day(2024, 3, 10), Value: models.StrPtr("25"), IsCompleted: true, Tags: "morning"},
		{HabitID: "h1", Date: day(2024, 3, 9), IsCompleted: true},
		{HabitID: "h2", Date: day(2024, 3, 9), IsCompleted: false, Value: models.StrPtr("tired")},
		{HabitID: "h2", Date: day(2024, 3, 10), IsCompleted: true},
	}
	for _, r := range records {
		if err := store.UpsertRecord(r); err != nil {
			t.Fatalf("UpsertRecord() error: %v", err)
		}
	}

	got, err := store.ListRecords("h1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]models.HabitRecord{records[1], records[0]}, got); diff != "" {
		t.Errorf("ListRecords() mismatch (-want +got):\n%s", diff)
	}

	replaced := records[0]
	replaced.Value = models.StrPtr("40")
	replaced.Tags = ""
	if err := store.UpsertRecord(replaced); err != nil {
		t.Fatal(err)
	}
	rec, err := store.GetRecord("h1", day(2024, 3, 10).Add(15*time.Hour))
	if err != nil || rec.Note() != "40" || rec.Tags != "" {
		t.Errorf("GetRecord() after replace = %+v, %v", rec, err)
	}

	onDay, _ := store.ListRecordsForDate(day(2024, 3, 9))
	if len(onDay) != 2 {
		t.Errorf("ListRecordsForDate() = %d records, want 2", len(onDay))
	}

	counts, err := store.HeatmapCounts(day(2024, 3, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatal(err)
	}
	wantCounts := []models.HeatmapEntry{{Date: day(2024, 3, 9), Count: 1}, {Date: day(2024, 3, 10), Count: 2}}
	if diff := cmp.Diff(wantCounts, counts); diff != "" {
		t.Errorf("HeatmapCounts() mismatch (-want +got):\n%s", diff)
	}

	if err := store.AddTag(models.Tag{Name: "morning", HabitID: "h1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit() error: %v", err)
	}
	if left, _ := store.ListRecords("h1"); len(left) != 0 {
		t.Errorf("records survived habit deletion: %v", left)
	}
	if tags, _ := store.ListTags("h1"); len(tags) != 0 {
		t.Errorf("tags survived habit deletion: %v", tags)
	}
	if all, _ := store.ListAllRecords(); len(all) != 2 {
		t.Errorf("ListAllRecords() = %d, want 2 for the other habit", len(all))
	}
	if err := store.DeleteHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteHabit() error = %v", err)
	}

	if err := store.DeleteRecord("h2", day(2024, 3, 9)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetRecord("h2", day(2024, 3, 9)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRecord() after delete error = %v", err)
	}
}

func TestTagsOrderedByLastUsed(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Read", 0)); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := store.AddTag(models.Tag{Name: name, HabitID: "h1"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.AddTag(models.Tag{Name: "alpha", HabitID: "h1", LastUsed: base}); err != nil {
		t.Fatalf("duplicate AddTag() should be ignored, got %v", err)
	}
	if err := store.TouchTag("h1", "gamma", base); err != nil {
		t.Fatal(err)
	}
	if err := store.TouchTag("h1", "beta", base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	tags, err := store.ListTags("h1")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	if diff := cmp.Diff([]string{"beta", "gamma", "alpha"}, names); diff != "" {
		t.Errorf("tag order mismatch (-want +got):\n%s", diff)
	}
	if !tags[0].LastUsed.Equal(base.Add(time.Hour)) {
		t.Errorf("LastUsed = %v", tags[0].LastUsed)
	}

	if err := store.DeleteTag("h1", "beta"); err != nil {
		t.Fatal(err)
	}
	all, _ := store.ListTags("")
	if len(all) != 2 {
		t.Errorf("ListTags(\"\") = %d tags, want 2", len(all))
	}
}
