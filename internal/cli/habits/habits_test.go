package habits

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/notifier"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/storage/sqlite"
)

var testNow = time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitick.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.SaveSettings(models.Settings{Timezone: "UTC", DefaultColor: "#9C27B0"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:    store,
		Out:      out,
		Notifier: &notifier.Recorder{},
		Now:      func() time.Time { return testNow },
		Confirm:  func(string, string) (bool, error) { return true, nil },
	}, out
}

func addHabit(t *testing.T, ctx *cli.Context, name string) {
	t.Helper()
	cmd := &HabitAddCmd{Name: name, HabitFields: HabitFields{StartDate: "2024-06-01"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("habit add %s: %v", name, err)
	}
}

func TestHabitAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &HabitAddCmd{Name: "Run", HabitFields: HabitFields{Type: "numeric", Days: "1,3,5", Target: "5", Color: "#00FF00"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Added habit: Run (Mon,Wed,Fri)") {
		t.Errorf("output = %q", out.String())
	}

	h, err := ctx.Store.GetHabitByName("Run")
	if err != nil {
		t.Fatal(err)
	}
	if h.Type != models.HabitNumeric || h.Target() != "5" || h.Color != "#00FF00" || !h.StartDate.Equal(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("stored habit = %+v", h)
	}

	if err := cmd.Run(ctx); err == nil {
		t.Error("adding a duplicate name should fail")
	}
	bad := &HabitAddCmd{Name: "Swim", HabitFields: HabitFields{Type: "weekly"}}
	if err := bad.Run(ctx); !errors.Is(err, models.ErrInvalidType) {
		t.Errorf("invalid type error = %v", err)
	}
}

func TestHabitEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Read")

	cmd := &HabitEditCmd{Habit: "Read", Name: "Read books", HabitFields: HabitFields{Days: "6,7", EndDate: "2024-12-31"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	h, err := ctx.Store.GetHabitByName("Read books")
	if err != nil {
		t.Fatal(err)
	}
	if models.FormatFrequency(h.Frequency) != "6,7" || h.EndDate == nil {
		t.Errorf("edited habit = %+v", h)
	}

	clear := &HabitEditCmd{Habit: h.ID, HabitFields: HabitFields{EndDate: "none"}}
	if err := clear.Run(ctx); err != nil {
		t.Fatal(err)
	}
	h, _ = ctx.Store.GetHabit(h.ID)
	if h.EndDate != nil {
		t.Error("--end none should clear the end date")
	}

	before := &HabitEditCmd{Habit: h.ID, HabitFields: HabitFields{EndDate: "2024-01-01"}}
	if err := before.Run(ctx); !errors.Is(err, models.ErrEndBeforeStart) {
		t.Errorf("end before start error = %v", err)
	}
}

func TestMarkNoteTagAndList(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, "Read")

	if err := (&HabitMarkCmd{Habit: "Read", Date: "yesterday"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&HabitMarkCmd{Habit: "Read", Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&HabitNoteCmd{Habit: "Read", Value: "30 pages", Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&HabitTagCmd{Habit: "Read", Tags: []string{"fiction", "evening"}, Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `Read 2024-06-12: done, "30 pages", tags fiction,evening`) {
		t.Errorf("output = %q", out.String())
	}

	if err := (&HabitMarkCmd{Habit: "Read", Date: "2024-06-13"}).Run(ctx); err == nil {
		t.Error("marking a future day should fail")
	}

	out.Reset()
	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Read", "2", "30 pages", "#fiction #evening"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("list missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := (&TagListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "fiction") || !strings.Contains(out.String(), "last used 2024-06-12") {
		t.Errorf("tag list = %q", out.String())
	}
}

func TestShowAndStreaks(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, "Read")
	for _, d := range []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-10"} {
		if err := (&HabitMarkCmd{Habit: "Read", Date: d}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&HabitShowCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Check-ins", "4", "33%", "3 days (2024-06-01 → 2024-06-03)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := (&HabitStreaksCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "1 day (2024-06-10") || !strings.Contains(lines[1], "best") {
		t.Errorf("streaks = %q", lines)
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Read")

	ctx.Confirm = func(string, string) (bool, error) { return false, nil }
	if err := (&HabitDeleteCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Store.GetHabitByName("Read"); err != nil {
		t.Fatal("declined delete should keep the habit")
	}

	if err := (&HabitDeleteCmd{Habit: "Read", Yes: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Store.GetHabitByName("Read"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabitByName after delete error = %v", err)
	}
	if err := (&HabitDeleteCmd{Habit: "Read", Yes: true}).Run(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleting a missing habit error = %v", err)
	}
}

func TestSortCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	for _, name := range []string{"A", "B", "C"} {
		addHabit(t, ctx, name)
	}

	if err := (&SortCmd{Moves: []string{"3:1"}, DryRun: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	habits, _ := ctx.Store.ListHabits()
	if habits[0].Name != "A" {
		t.Error("--dry-run should not save")
	}

	if err := (&SortCmd{Moves: []string{"3:1", "x"}}).Run(ctx); err == nil {
		t.Error("a malformed move should fail")
	}

	out.Reset()
	if err := (&SortCmd{Moves: []string{"3:1", "3:2"}}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	habits, _ = ctx.Store.ListHabits()
	var names []string
	for _, h := range habits {
		names = append(names, h.Name)
	}
	if strings.Join(names, "") != "CBA" {
		t.Errorf("order = %v, want C B A", names)
	}
	if !strings.Contains(out.String(), "Sort order saved.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHistoryAndChart(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, "Read")
	if err := (&HabitMarkCmd{Habit: "Read", Date: "2024-06-11"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&HistoryMonthCmd{Habit: "Read", Month: "2024-06"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "June 2024") {
		t.Errorf("month = %q", out.String())
	}
	if err := (&HistoryMonthCmd{Habit: "Read", Month: "June"}).Run(ctx); err == nil {
		t.Error("a malformed month should fail")
	}

	out.Reset()
	if err := (&HistoryYearCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "less") {
		t.Errorf("heatmap = %q", out.String())
	}

	out.Reset()
	if err := (&ChartCmd{Habit: "Read", Period: "week"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Count(out.String(), "\n") != 8 {
		t.Errorf("week chart = %q", out.String())
	}
	if err := (&ChartCmd{Habit: "Read", Period: "decade"}).Run(ctx); err == nil {
		t.Error("an unknown period should fail")
	}
}
