package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
)

type habitRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Color       string         `db:"color"`
	Type        string         `db:"type"`
	StartDate   string         `db:"start_date"`
	EndDate     sql.NullString `db:"end_date"`
	Frequency   string         `db:"frequency"`
	TargetValue sql.NullString `db:"target_value"`
	SortIndex   int            `db:"sort_index"`
	IsCompleted bool           `db:"is_completed"`
}

var habitColumns = []string{
	"id", "name", "color", "type", "start_date", "end_date",
	"frequency", "target_value", "sort_index", "is_completed",
}

func (q *Queries) toHabit(r habitRow) (models.Habit, error) {
	start, err := time.ParseInLocation(constants.DateFormat, r.StartDate, q.loc)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse start_date for habit %s: %w", r.ID, err)
	}
	h := models.Habit{
		ID:          r.ID,
		Name:        r.Name,
		Color:       r.Color,
		Type:        models.HabitType(r.Type),
		StartDate:   start,
		Frequency:   models.ParseFrequency(r.Frequency),
		SortIndex:   r.SortIndex,
		IsCompleted: r.IsCompleted,
	}
	if r.EndDate.Valid && r.EndDate.String != "" {
		end, err := time.ParseInLocation(constants.DateFormat, r.EndDate.String, q.loc)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse end_date for habit %s: %w", r.ID, err)
		}
		h.EndDate = &end
	}
	if r.TargetValue.Valid {
		v := r.TargetValue.String
		h.TargetValue = &v
	}
	return h, nil
}

func habitValues(h models.Habit) []any {
	var end, target sql.NullString
	if h.EndDate != nil {
		end = sql.NullString{String: h.EndDate.Format(constants.DateFormat), Valid: true}
	}
	if h.TargetValue != nil {
		target = sql.NullString{String: *h.TargetValue, Valid: true}
	}
	return []any{
		h.ID, h.Name, h.Color, string(h.Type), h.StartDate.Format(constants.DateFormat), end,
		models.FormatFrequency(h.Frequency), target, h.SortIndex, h.IsCompleted,
	}
}

type recordRow struct {
	HabitID     string         `db:"habit_id"`
	Date        string         `db:"date"`
	Value       sql.NullString `db:"value"`
	IsCompleted bool           `db:"is_completed"`
	Tags        string         `db:"tags"`
}

var recordColumns = []string{"habit_id", "date", "value", "is_completed", "tags"}

func (q *Queries) toRecord(r recordRow) (models.HabitRecord, error) {
	day, err := time.ParseInLocation(constants.DateFormat, r.Date, q.loc)
	if err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to parse date %q for habit %s: %w", r.Date, r.HabitID, err)
	}
	rec := models.HabitRecord{
		HabitID:     r.HabitID,
		Date:        day,
		IsCompleted: r.IsCompleted,
		Tags:        r.Tags,
	}
	if r.Value.Valid {
		v := r.Value.String
		rec.Value = &v
	}
	return rec, nil
}

type tagRow struct {
	Name     string `db:"name"`
	HabitID  string `db:"habit_id"`
	LastUsed string `db:"last_used"`
}

func toTag(r tagRow) models.Tag {
	t := models.Tag{Name: r.Name, HabitID: r.HabitID}
	if r.LastUsed != "" {
		if ts, err := time.Parse(constants.TimestampFormat, r.LastUsed); err == nil {
			t.LastUsed = ts
		}
	}
	return t
}
