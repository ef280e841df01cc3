// Package sqlstore holds the record-store queries shared by the SQLite and
// PostgreSQL backends. Statements are written once and bound to the dialect's
// placeholder style.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/storage"
)

type Queries struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	loc *time.Location
}

// New wraps db. driverName is "sqlite" or "postgres".
func New(db *sql.DB, driverName string) *Queries {
	var format sq.PlaceholderFormat = sq.Question
	if driverName == "postgres" {
		format = sq.Dollar
	}
	return &Queries{
		db:  sqlx.NewDb(db, driverName),
		sb:  sq.StatementBuilder.PlaceholderFormat(format),
		loc: time.Local,
	}
}

func (q *Queries) SetLocation(loc *time.Location) {
	if loc != nil {
		q.loc = loc
	}
}

// DB exposes the underlying handle for lifecycle code.
func (q *Queries) DB() *sql.DB {
	return q.db.DB
}

func day(t time.Time) string {
	return t.Format(constants.DateFormat)
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return err
}

func (q *Queries) withTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := q.db.Beginx()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Settings

func (q *Queries) GetSettings() (models.Settings, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := q.db.Select(&rows, "SELECT key, value FROM settings"); err != nil {
		return models.Settings{}, err
	}
	if len(rows) == 0 {
		return models.Settings{}, fmt.Errorf("settings: %w", storage.ErrNotFound)
	}
	data := make(map[string]string, len(rows))
	for _, r := range rows {
		data[r.Key] = r.Value
	}
	return models.MapToSettings(data)
}

func (q *Queries) SaveSettings(settings models.Settings) error {
	return q.withTx(func(tx *sqlx.Tx) error {
		for key, value := range models.SettingsToMap(settings) {
			query, args, err := q.sb.Insert("settings").
				Columns("key", "value").
				Values(key, value).
				Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(query, args...); err != nil {
				return fmt.Errorf("saving setting %s: %w", key, err)
			}
		}
		return nil
	})
}

// Habits

func (q *Queries) selectHabits(where sq.Sqlizer) ([]models.Habit, error) {
	b := q.sb.Select(habitColumns...).From("habits").OrderBy("sort_index", "name")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []habitRow
	if err := q.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	habits := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		h, err := q.toHabit(r)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

func (q *Queries) ListHabits() ([]models.Habit, error) {
	return q.selectHabits(nil)
}

func (q *Queries) GetHabit(id string) (models.Habit, error) {
	habits, err := q.selectHabits(sq.Eq{"id": id})
	if err != nil {
		return models.Habit{}, err
	}
	if len(habits) == 0 {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return habits[0], nil
}

func (q *Queries) GetHabitByName(name string) (models.Habit, error) {
	habits, err := q.selectHabits(sq.Eq{"name": name})
	if err != nil {
		return models.Habit{}, err
	}
	if len(habits) == 0 {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, storage.ErrNotFound)
	}
	return habits[0], nil
}

func (q *Queries) AddHabit(h models.Habit) error {
	query, args, err := q.sb.Insert("habits").Columns(habitColumns...).Values(habitValues(h)...).ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (q *Queries) updateHabit(exec sqlx.Execer, h models.Habit) error {
	values := habitValues(h)
	b := q.sb.Update("habits").Where(sq.Eq{"id": h.ID})
	for i, col := range habitColumns[1:] {
		b = b.Set(col, values[i+1])
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	res, err := exec.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habit %s: %w", h.ID, storage.ErrNotFound)
	}
	return nil
}

func (q *Queries) UpdateHabit(h models.Habit) error {
	return q.updateHabit(q.db, h)
}

func (q *Queries) UpdateHabits(habits []models.Habit) error {
	return q.withTx(func(tx *sqlx.Tx) error {
		for _, h := range habits {
			if err := q.updateHabit(tx, h); err != nil {
				return err
			}
		}
		return nil
	})
}

func (q *Queries) UpdateSortIndexes(ids []string) error {
	return q.withTx(func(tx *sqlx.Tx) error {
		for i, id := range ids {
			query, args, err := q.sb.Update("habits").Set("sort_index", i).Where(sq.Eq{"id": id}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(query, args...); err != nil {
				return fmt.Errorf("failed to update sort index: %w", err)
			}
		}
		return nil
	})
}

func (q *Queries) DeleteHabit(id string) error {
	return q.withTx(func(tx *sqlx.Tx) error {
		for _, table := range []string{"habit_records", "tags"} {
			query, args, err := q.sb.Delete(table).Where(sq.Eq{"habit_id": id}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(query, args...); err != nil {
				return fmt.Errorf("failed to delete %s for habit %s: %w", table, id, err)
			}
		}
		query, args, err := q.sb.Delete("habits").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
		}
		return nil
	})
}

func (q *Queries) MaxSortIndex() (int, error) {
	var max int
	if err := q.db.Get(&max, "SELECT COALESCE(MAX(sort_index), -1) FROM habits"); err != nil {
		return 0, err
	}
	return max, nil
}

// Records

func (q *Queries) selectRecords(where sq.Sqlizer) ([]models.HabitRecord, error) {
	b := q.sb.Select(recordColumns...).From("habit_records").OrderBy("date", "habit_id")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []recordRow
	if err := q.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	records := make([]models.HabitRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := q.toRecord(r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (q *Queries) ListRecords(habitID string) ([]models.HabitRecord, error) {
	return q.selectRecords(sq.Eq{"habit_id": habitID})
}

func (q *Queries) ListAllRecords() ([]models.HabitRecord, error) {
	return q.selectRecords(nil)
}

func (q *Queries) ListRecordsForDate(d time.Time) ([]models.HabitRecord, error) {
	return q.selectRecords(sq.Eq{"date": day(d)})
}

func (q *Queries) GetRecord(habitID string, d time.Time) (models.HabitRecord, error) {
	query, args, err := q.sb.Select(recordColumns...).From("habit_records").
		Where(sq.Eq{"habit_id": habitID, "date": day(d)}).ToSql()
	if err != nil {
		return models.HabitRecord{}, err
	}
	var row recordRow
	if err := q.db.Get(&row, query, args...); err != nil {
		return models.HabitRecord{}, notFound(err, fmt.Sprintf("record %s@%s", habitID, day(d)))
	}
	return q.toRecord(row)
}

func (q *Queries) UpsertRecord(r models.HabitRecord) error {
	var value sql.NullString
	if r.Value != nil {
		value = sql.NullString{String: *r.Value, Valid: true}
	}
	query, args, err := q.sb.Insert("habit_records").
		Columns(recordColumns...).
		Values(r.HabitID, day(r.Date), value, r.IsCompleted, r.Tags).
		Suffix(`ON CONFLICT (habit_id, date) DO UPDATE SET
			value = excluded.value,
			is_completed = excluded.is_completed,
			tags = excluded.tags`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (q *Queries) DeleteRecord(habitID string, d time.Time) error {
	query, args, err := q.sb.Delete("habit_records").
		Where(sq.Eq{"habit_id": habitID, "date": day(d)}).ToSql()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(query, args...)
	return err
}

func (q *Queries) HeatmapCounts(from, to time.Time) ([]models.HeatmapEntry, error) {
	query, args, err := q.sb.Select("date", "COUNT(*) AS count").From("habit_records").
		Where(sq.Eq{"is_completed": true}).
		Where(sq.GtOrEq{"date": day(from)}).
		Where(sq.LtOrEq{"date": day(to)}).
		GroupBy("date").OrderBy("date").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Date  string `db:"date"`
		Count int    `db:"count"`
	}
	if err := q.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	entries := make([]models.HeatmapEntry, 0, len(rows))
	for _, r := range rows {
		d, err := time.ParseInLocation(constants.DateFormat, r.Date, q.loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse heatmap date %q: %w", r.Date, err)
		}
		entries = append(entries, models.HeatmapEntry{Date: d, Count: r.Count})
	}
	return entries, nil
}

// Tags

func (q *Queries) ListTags(habitID string) ([]models.Tag, error) {
	b := q.sb.Select("name", "habit_id", "last_used").From("tags").OrderBy("last_used DESC", "name")
	if habitID != "" {
		b = b.Where(sq.Eq{"habit_id": habitID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []tagRow
	if err := q.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	tags := make([]models.Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, toTag(r))
	}
	return tags, nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(constants.TimestampFormat)
}

func (q *Queries) AddTag(t models.Tag) error {
	query, args, err := q.sb.Insert("tags").
		Columns("name", "habit_id", "last_used").
		Values(t.Name, t.HabitID, stamp(t.LastUsed)).
		Suffix("ON CONFLICT (name, habit_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(query, args...)
	return err
}

func (q *Queries) TouchTag(habitID, name string, at time.Time) error {
	query, args, err := q.sb.Insert("tags").
		Columns("name", "habit_id", "last_used").
		Values(name, habitID, stamp(at)).
		Suffix("ON CONFLICT (name, habit_id) DO UPDATE SET last_used = excluded.last_used").
		ToSql()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(query, args...)
	return err
}

func (q *Queries) DeleteTag(habitID, name string) error {
	query, args, err := q.sb.Delete("tags").Where(sq.Eq{"habit_id": habitID, "name": name}).ToSql()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(query, args...)
	return err
}
