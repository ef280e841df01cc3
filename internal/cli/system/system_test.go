package system

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitick/internal/backup"
	"github.com/julianstephens/habitick/internal/cli"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/notifier"
	"github.com/julianstephens/habitick/internal/storage/sqlite"
	"github.com/julianstephens/habitick/internal/tracker"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitick.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	out := &bytes.Buffer{}
	return &cli.Context{Store: store, Out: out}, out
}

func TestInitCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "habitick.db")
	store := sqlite.NewStore(dbPath)
	defer store.Close()
	ctx := &cli.Context{Store: store, Out: &bytes.Buffer{}}

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("init should be idempotent: %v", err)
	}
}

func TestInitCmdForceDeletesExisting(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", Name: "Read", Color: "#9C27B0", Type: models.HabitNormal, Frequency: models.EveryDay, StartDate: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("output = %q", out.String())
	}
	habits, err := ctx.Store.ListHabits()
	if err != nil || len(habits) != 0 {
		t.Errorf("habits after --force = %v, %v", habits, err)
	}

	same := &InitCmd{Force: true, Source: ctx.Store.GetConfigPath()}
	if err := same.Run(ctx); err == nil {
		t.Error("--force with the source as destination should fail")
	}
}

func TestInitCmdCopiesFromSource(t *testing.T) {
	src, _ := setupTestContext(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	src.Store.SetLocation(time.UTC)
	if err := src.Store.AddHabit(models.Habit{ID: "h1", Name: "Read", Color: "#9C27B0", Type: models.HabitNormal, Frequency: models.EveryDay, StartDate: day}); err != nil {
		t.Fatal(err)
	}
	if err := src.Store.UpsertRecord(models.HabitRecord{HabitID: "h1", Date: day, IsCompleted: true, Tags: "am"}); err != nil {
		t.Fatal(err)
	}
	if err := src.Store.AddTag(models.Tag{Name: "am", HabitID: "h1", LastUsed: day}); err != nil {
		t.Fatal(err)
	}
	srcPath := src.Store.GetConfigPath()
	if err := src.Store.Close(); err != nil {
		t.Fatal(err)
	}

	dst := sqlite.NewStore(filepath.Join(t.TempDir(), "copy.db"))
	dst.SetLocation(time.UTC)
	defer dst.Close()
	out := &bytes.Buffer{}
	ctx := &cli.Context{Store: dst, Out: out}

	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Copied 1 habits", "Copied 1 records", "Copied 1 tags"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	rec, err := dst.GetRecord("h1", day)
	if err != nil || !rec.IsCompleted {
		t.Errorf("copied record = %+v, %v", rec, err)
	}
}

func TestMigrateCmdUpToDate(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Database is up to date") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDoctorCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on a healthy database: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("missing backups should warn:\n%s", out.String())
	}

	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).CreateBackup(); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("output = %s", out.String())
	}
}

func TestDoctorCmdFlagsBadData(t *testing.T) {
	ctx, out := setupTestContext(t)
	future := time.Now().AddDate(0, 0, 3)
	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", Name: "Read", Color: "#9C27B0", Type: models.HabitNormal, Frequency: models.EveryDay, StartDate: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Store.UpsertRecord(models.HabitRecord{HabitID: "h1", Date: future, IsCompleted: true}); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("doctor should fail on future-dated records")
	}
	if !strings.Contains(out.String(), "❌ Record dates: FAIL") {
		t.Errorf("output = %s", out.String())
	}
}

func TestCheckClock(t *testing.T) {
	if err := checkClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Errorf("2024 should be accepted: %v", err)
	}
	if err := checkClock(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Error("1999 should be rejected")
	}
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://alice:s3cret@db:5432/habitick", "postgres://alice:****@db:5432/habitick"},
		{"postgresql://alice@db/habitick", "postgresql://alice@db/habitick"},
		{"host=db user=alice password=s3cret dbname=habitick", "host=db user=alice password=**** dbname=habitick"},
	}
	for _, tt := range tests {
		if got := maskPassword(tt.in); got != tt.want {
			t.Errorf("maskPassword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConnectionCommands(t *testing.T) {
	keyring.MockInit()
	t.Setenv("HABITICK_DB_CONNECTION", "")
	ctx, out := setupTestContext(t)

	if err := (&SetConnectionCmd{ConnectionString: "not a database"}).Run(ctx); err == nil {
		t.Error("a non-PostgreSQL string should be rejected")
	}
	if err := (&SetConnectionCmd{ConnectionString: "postgres://alice:pw@db/habitick"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "embedded credentials") {
		t.Errorf("expected an embedded credentials warning: %q", out.String())
	}

	out.Reset()
	if err := (&KeyringStatusCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "from keyring: postgres://alice:****@db/habitick") {
		t.Errorf("status = %q", out.String())
	}

	if err := (&ClearConnectionCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&ClearConnectionCmd{}).Run(ctx); err == nil {
		t.Error("clearing twice should report nothing to delete")
	}
}

func TestReminder(t *testing.T) {
	items := []tracker.HomeItem{
		{Habit: models.Habit{Name: "Read"}, Due: true},
		{Habit: models.Habit{Name: "Run"}, Due: true, DoneToday: true},
		{Habit: models.Habit{Name: "Swim"}, Due: false},
		{Habit: models.Habit{Name: "Write"}, Due: true},
	}
	if got := Reminder(items); got != "2 habits left today: Read, Write" {
		t.Errorf("Reminder() = %q", got)
	}
	if got := Reminder(items[:1]); got != "1 habit left today: Read" {
		t.Errorf("Reminder() = %q", got)
	}
	if got := Reminder(items[1:3]); got != "" {
		t.Errorf("Reminder() = %q, want empty", got)
	}
}

func TestNotifyCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	rec := &notifier.Recorder{}
	ctx.Notifier = rec
	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", Name: "Read", Color: "#9C27B0", Type: models.HabitNormal, Frequency: models.EveryDay, StartDate: time.Now().AddDate(0, 0, -1)}); err != nil {
		t.Fatal(err)
	}

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1 habit left today: Read") || len(rec.Messages()) != 0 {
		t.Errorf("dry run output = %q, sent = %v", out.String(), rec.Messages())
	}

	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if msgs := rec.Messages(); len(msgs) != 1 || msgs[0] != "1 habit left today: Read" {
		t.Errorf("sent = %v", msgs)
	}
}
