package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/habitick/internal/models"
)

// ErrNotFound is returned when a habit, record, or tag does not exist.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// SetLocation sets the zone stored day keys are parsed into.
	SetLocation(*time.Location)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits, ordered by sort index
	ListHabits() ([]models.Habit, error)
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	AddHabit(models.Habit) error
	UpdateHabit(models.Habit) error
	UpdateHabits([]models.Habit) error
	// UpdateSortIndexes sets each listed habit's sort index to its position
	// in ids. Other columns are left alone and unknown ids are skipped.
	UpdateSortIndexes(ids []string) error
	// DeleteHabit removes the habit together with its records and tags.
	DeleteHabit(id string) error
	// MaxSortIndex returns -1 when there are no habits.
	MaxSortIndex() (int, error)

	// Records, ordered by date ascending
	ListRecords(habitID string) ([]models.HabitRecord, error)
	ListAllRecords() ([]models.HabitRecord, error)
	ListRecordsForDate(day time.Time) ([]models.HabitRecord, error)
	GetRecord(habitID string, day time.Time) (models.HabitRecord, error)
	// UpsertRecord replaces any record with the same habit and day.
	UpsertRecord(models.HabitRecord) error
	DeleteRecord(habitID string, day time.Time) error
	// HeatmapCounts counts completed records per day in [from, to].
	HeatmapCounts(from, to time.Time) ([]models.HeatmapEntry, error)

	// Tags; an empty habitID lists tags of every habit
	ListTags(habitID string) ([]models.Tag, error)
	// AddTag is a no-op when the tag already exists.
	AddTag(models.Tag) error
	TouchTag(habitID, name string, at time.Time) error
	DeleteTag(habitID, name string) error
}
