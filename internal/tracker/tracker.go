// Package tracker is the application layer between the CLI and storage: it
// validates edits, keeps derived views current and runs CSV jobs.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/logger"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/notifier"
	"github.com/julianstephens/habitick/internal/storage"
	"github.com/julianstephens/habitick/internal/utils"
	"github.com/julianstephens/habitick/internal/watch"
)

var (
	ErrFutureDate = errors.New("cannot record a day after today")
	ErrBlankTag   = errors.New("tag name cannot be blank")
)

// Backuper snapshots the store before an import.
type Backuper interface {
	CreateBackup() (string, error)
}

type Config struct {
	Store    storage.Provider
	Hub      *watch.Hub
	Notifier notifier.Notifier
	// Backup is optional; nil skips the pre-import snapshot.
	Backup   Backuper
	Location *time.Location
	Settings models.Settings

	Now    func() time.Time
	NewID  func() string
	Stdin  io.Reader
	Stdout io.Writer
}

type Tracker struct {
	store    storage.Provider
	hub      *watch.Hub
	notify   notifier.Notifier
	backup   Backuper
	loc      *time.Location
	settings models.Settings
	now      func() time.Time
	newID    func() string
	stdin    io.Reader
	stdout   io.Writer

	mu        sync.Mutex
	snapshots map[string]Detail
	sorting   []models.Habit

	jobsMu   sync.Mutex
	jobs     *errgroup.Group
	queue    []func() error
	draining bool
}

// New builds a Tracker. The store should publish to cfg.Hub (see
// storage.Observed) for live views to follow writes.
func New(cfg Config) *Tracker {
	t := &Tracker{
		store:     cfg.Store,
		hub:       cfg.Hub,
		notify:    cfg.Notifier,
		backup:    cfg.Backup,
		loc:       cfg.Location,
		settings:  cfg.Settings,
		now:       cfg.Now,
		newID:     cfg.NewID,
		stdin:     cfg.Stdin,
		stdout:    cfg.Stdout,
		snapshots: make(map[string]Detail),
	}
	if t.hub == nil {
		t.hub = watch.NewHub()
	}
	if t.notify == nil {
		t.notify = notifier.NewConsole(os.Stderr)
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
	if t.stdin == nil {
		t.stdin = os.Stdin
	}
	if t.stdout == nil {
		t.stdout = os.Stdout
	}
	models.ApplyDefaultSettings(&t.settings)
	t.jobs = &errgroup.Group{}
	return t
}

func (t *Tracker) Location() *time.Location { return t.loc }

// Today is midnight of the current day in the tracker's location.
func (t *Tracker) Today() time.Time {
	return utils.StartOfDay(t.now().In(t.loc))
}

func (t *Tracker) day(d time.Time) time.Time {
	return utils.StartOfDay(d.In(t.loc))
}

// AddHabit fills defaults, validates, and stores h at the end of the list.
func (t *Tracker) AddHabit(h models.Habit) (models.Habit, error) {
	h.Name = strings.TrimSpace(h.Name)
	if h.Color == "" {
		h.Color = t.settings.DefaultColor
	}
	if h.Type == "" {
		h.Type = models.HabitNormal
	}
	if h.StartDate.IsZero() {
		h.StartDate = t.Today()
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, err
	}

	maxIdx, err := t.store.MaxSortIndex()
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to read sort order: %w", err)
	}
	h.ID = t.newID()
	h.SortIndex = maxIdx + 1
	h.IsCompleted = false
	if err := t.store.AddHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	logger.Info("Added habit", "id", h.ID, "name", h.Name)
	return h, nil
}

func (t *Tracker) UpdateHabit(h models.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return err
	}
	if err := t.store.UpdateHabit(h); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return nil
}

// DeleteHabit removes the habit with its records and tags.
func (t *Tracker) DeleteHabit(id string) error {
	if err := t.store.DeleteHabit(id); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	logger.Info("Deleted habit", "id", id)
	return nil
}

// FindHabit resolves a habit by id or, failing that, by exact name.
func (t *Tracker) FindHabit(ref string) (models.Habit, error) {
	h, err := t.store.GetHabit(ref)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}
	h, err = t.store.GetHabitByName(ref)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, err)
	}
	return h, nil
}

func (t *Tracker) Habits() ([]models.Habit, error) {
	return t.store.ListHabits()
}

// UpdateRecord edits one day of a habit. Nil arguments keep the stored value.
// A record left with nothing in it is deleted rather than stored.
func (t *Tracker) UpdateRecord(habitID string, date time.Time, completed *bool, note, tags *string) (models.HabitRecord, error) {
	day := t.day(date)
	today := t.Today()
	if day.After(today) {
		return models.HabitRecord{}, ErrFutureDate
	}

	rec, err := t.store.GetRecord(habitID, day)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		rec = models.HabitRecord{HabitID: habitID, Date: day}
	case err != nil:
		return models.HabitRecord{}, fmt.Errorf("failed to read record: %w", err)
	}

	if completed != nil {
		rec.IsCompleted = *completed
	}
	if note != nil {
		rec.Value = models.StrPtr(*note)
	}
	if tags != nil {
		rec.Tags = strings.Join(models.SplitTags(*tags), ",")
	}

	if rec.IsEmpty() {
		if err := t.store.DeleteRecord(habitID, day); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return models.HabitRecord{}, fmt.Errorf("failed to delete record: %w", err)
		}
	} else if err := t.store.UpsertRecord(rec); err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to save record: %w", err)
	}

	if day.Equal(today) {
		if err := t.syncCompletion(habitID, rec.IsCompleted); err != nil {
			return rec, err
		}
	}
	if tags != nil {
		if err := t.touchTags(habitID, rec.TagList()); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// ToggleHabit flips completion for the day when neither value nor tags are
// given; otherwise it sets them and leaves completion alone. A nil date means today.
func (t *Tracker) ToggleHabit(habitID string, value, tags *string, date *time.Time) (models.HabitRecord, error) {
	day := t.Today()
	if date != nil {
		day = t.day(*date)
	}
	if value != nil || tags != nil {
		return t.UpdateRecord(habitID, day, nil, value, tags)
	}

	done := true
	rec, err := t.store.GetRecord(habitID, day)
	switch {
	case err == nil:
		done = !rec.IsCompleted
	case !errors.Is(err, storage.ErrNotFound):
		return models.HabitRecord{}, fmt.Errorf("failed to read record: %w", err)
	}
	return t.UpdateRecord(habitID, day, &done, nil, nil)
}

func (t *Tracker) syncCompletion(habitID string, done bool) error {
	h, err := t.store.GetHabit(habitID)
	if err != nil {
		return fmt.Errorf("failed to load habit: %w", err)
	}
	if h.IsCompleted == done {
		return nil
	}
	h.IsCompleted = done
	if err := t.store.UpdateHabit(h); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return nil
}

func (t *Tracker) touchTags(habitID string, names []string) error {
	at := t.now()
	for _, name := range names {
		if err := t.store.AddTag(models.Tag{Name: name, HabitID: habitID, LastUsed: at}); err != nil {
			return fmt.Errorf("failed to register tag %q: %w", name, err)
		}
		if err := t.store.TouchTag(habitID, name, at); err != nil {
			return fmt.Errorf("failed to touch tag %q: %w", name, err)
		}
	}
	return nil
}

// AddTag registers a tag on a habit; existing tags are left as they are.
func (t *Tracker) AddTag(habitID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankTag
	}
	if strings.ContainsAny(name, ","+constants.CSVTagSeparator) {
		return fmt.Errorf("tag %q cannot contain ',' or %q", name, constants.CSVTagSeparator)
	}
	return t.store.AddTag(models.Tag{Name: name, HabitID: habitID, LastUsed: t.now()})
}

func (t *Tracker) DeleteTag(habitID, name string) error {
	return t.store.DeleteTag(habitID, strings.TrimSpace(name))
}

// Tags lists a habit's tags, most recently used first. An empty habitID lists all.
func (t *Tracker) Tags(habitID string) ([]models.Tag, error) {
	return t.store.ListTags(habitID)
}
