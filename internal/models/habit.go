package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type HabitType string

const (
	HabitNormal    HabitType = "Normal"
	HabitNumeric   HabitType = "Numeric"
	HabitTimer     HabitType = "Timer"
	HabitTimePoint HabitType = "TimePoint"
)

var (
	ErrBlankName      = errors.New("habit name cannot be blank")
	ErrEmptyFrequency = errors.New("habit frequency must include at least one weekday")
	ErrEndBeforeStart = errors.New("habit end date is before its start date")
	ErrInvalidType    = errors.New("invalid habit type")
	ErrInvalidColor   = errors.New("color must be in #RRGGBB format")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether s is a #RRGGBB color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// ParseHabitType maps a type name (case-insensitive) to a HabitType.
func ParseHabitType(s string) (HabitType, error) {
	for _, t := range []HabitType{HabitNormal, HabitNumeric, HabitTimer, HabitTimePoint} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Label returns a short human-readable name for the type.
func (t HabitType) Label() string {
	switch t {
	case HabitNumeric:
		return "numeric"
	case HabitTimer:
		return "timer"
	case HabitTimePoint:
		return "time of day"
	default:
		return "checkbox"
	}
}

// Habit is a user-defined recurring task.
type Habit struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"` // #RRGGBB
	Type        HabitType  `json:"type"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Frequency   []int      `json:"frequency"` // ISO weekday numbers, 1=Monday ... 7=Sunday
	TargetValue *string    `json:"target_value,omitempty"`
	SortIndex   int        `json:"sort_index"`
	IsCompleted bool       `json:"is_completed"` // cached completion flag for today
}

// Validate checks the habit invariants.
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrBlankName
	}
	if len(h.Frequency) == 0 {
		return ErrEmptyFrequency
	}
	for _, d := range h.Frequency {
		if d < 1 || d > 7 {
			return fmt.Errorf("invalid weekday %d in frequency (expected 1-7)", d)
		}
	}
	if h.EndDate != nil && h.EndDate.Before(h.StartDate) {
		return ErrEndBeforeStart
	}
	if _, err := ParseHabitType(string(h.Type)); err != nil {
		return err
	}
	if h.Color != "" && !colorPattern.MatchString(h.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Target returns the target value or "" when none is set.
func (h Habit) Target() string {
	if h.TargetValue == nil {
		return ""
	}
	return *h.TargetValue
}

// ScheduledOn reports whether the habit is due on the given day: within its
// active range and on one of its weekdays.
func (h Habit) ScheduledOn(day time.Time) bool {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	start := time.Date(h.StartDate.Year(), h.StartDate.Month(), h.StartDate.Day(), 0, 0, 0, 0, day.Location())
	if d.Before(start) {
		return false
	}
	if h.EndDate != nil {
		end := time.Date(h.EndDate.Year(), h.EndDate.Month(), h.EndDate.Day(), 0, 0, 0, 0, day.Location())
		if d.After(end) {
			return false
		}
	}
	iso := IsoWeekday(d.Weekday())
	for _, f := range h.Frequency {
		if f == iso {
			return true
		}
	}
	return false
}

// HabitRecord is one day's state for one habit.
type HabitRecord struct {
	HabitID     string    `json:"habit_id"`
	Date        time.Time `json:"date"` // midnight in the user's timezone
	Value       *string   `json:"value,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	Tags        string    `json:"tags"` // comma-joined tag names
}

// Note returns the record value or "" when none is set.
func (r HabitRecord) Note() string {
	if r.Value == nil {
		return ""
	}
	return *r.Value
}

// IsEmpty reports whether the record carries no information worth storing.
func (r HabitRecord) IsEmpty() bool {
	return !r.IsCompleted && strings.TrimSpace(r.Note()) == "" && r.Tags == ""
}

// TagList splits the comma-joined tags, dropping blanks.
func (r HabitRecord) TagList() []string {
	return SplitTags(r.Tags)
}

// SplitTags splits a comma-joined tag string, trimming names and dropping blanks.
func SplitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Tag is a label scoped to a single habit.
type Tag struct {
	Name     string    `json:"name"`
	HabitID  string    `json:"habit_id"`
	LastUsed time.Time `json:"last_used"`
}

// HeatmapEntry is the number of completed records on one day across all habits.
type HeatmapEntry struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// StrPtr returns nil for blank strings and a pointer to s otherwise.
func StrPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
