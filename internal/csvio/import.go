package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/storage"
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrMissingHeader = errors.New("missing [HABIT] header: the file does not look like a habitick export")
)

// markerFields is the minimum token count of a [HABIT] line:
// marker, name, start, end, type, target, frequency.
const markerFields = 7

// Target receives imported habits, records and tags.
type Target interface {
	GetHabitByName(name string) (models.Habit, error)
	MaxSortIndex() (int, error)
	AddHabit(models.Habit) error
	UpsertRecord(models.HabitRecord) error
	AddTag(models.Tag) error
}

type Options struct {
	// Location anchors imported day keys. Defaults to time.Local.
	Location *time.Location
	// DefaultColor is used for new habits whose marker carries no valid color.
	DefaultColor string
	// NewID generates ids for created habits. Defaults to uuid.NewString.
	NewID func() string
	// Today is the start date for new habits with an unreadable start date.
	Today time.Time
}

func (o *Options) defaults() {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.DefaultColor == "" {
		o.DefaultColor = constants.DefaultHabitColor
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Today.IsZero() {
		now := time.Now().In(o.Location)
		o.Today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, o.Location)
	}
}

type Result struct {
	HabitsCreated   int
	RecordsImported int
	RowsSkipped     int
}

// Import reads blocks from r into dst. Rows are committed as they are read;
// an error part-way leaves earlier rows in place and returns the partial Result.
func Import(ctx context.Context, r io.Reader, dst Target, opts Options) (Result, error) {
	opts.defaults()
	var res Result

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	first := true
	habitID := ""
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			if first {
				return res, ErrEmptyFile
			}
			return res, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			if first {
				return res, ErrMissingHeader
			}
			res.RowsSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("reading csv: %w", err)
		}

		if first && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		isMarker := len(rec) > 0 && strings.TrimSpace(rec[0]) == constants.CSVHabitMarker

		if first {
			first = false
			if !isMarker || len(rec) < markerFields {
				return res, ErrMissingHeader
			}
		}

		switch {
		case isMarker:
			if len(rec) < markerFields {
				return res, fmt.Errorf("%w (line %d has %d fields)", ErrMissingHeader, line(cr), len(rec))
			}
			id, created, err := resolveHabit(dst, rec, opts)
			if err != nil {
				return res, err
			}
			if created {
				res.HabitsCreated++
			}
			habitID = id
		case strings.TrimSpace(rec[0]) == constants.CSVDateHeader:
			// sub-header
		default:
			ok, err := importRow(dst, habitID, rec, opts.Location)
			if err != nil {
				return res, err
			}
			if ok {
				res.RecordsImported++
			} else {
				res.RowsSkipped++
			}
		}
	}
}

func line(cr *csv.Reader) int {
	l, _ := cr.FieldPos(0)
	return l
}

// resolveHabit finds the habit named by a marker line or creates it, and
// registers the marker's tags.
func resolveHabit(dst Target, rec []string, opts Options) (string, bool, error) {
	name := strings.TrimSpace(rec[1])
	if name == "" {
		return "", false, fmt.Errorf("%w: habit name is blank", ErrMissingHeader)
	}

	created := false
	habit, err := dst.GetHabitByName(name)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		habit, err = newHabit(dst, rec, opts)
		if err != nil {
			return "", false, err
		}
		if err := dst.AddHabit(habit); err != nil {
			return "", false, fmt.Errorf("creating habit %q: %w", name, err)
		}
		created = true
	default:
		return "", false, fmt.Errorf("looking up habit %q: %w", name, err)
	}

	if len(rec) > 7 {
		for _, tag := range strings.Split(rec[7], constants.CSVTagSeparator) {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if err := dst.AddTag(models.Tag{Name: tag, HabitID: habit.ID}); err != nil {
				return "", false, fmt.Errorf("registering tag %q: %w", tag, err)
			}
		}
	}
	return habit.ID, created, nil
}

func newHabit(dst Target, rec []string, opts Options) (models.Habit, error) {
	maxIndex, err := dst.MaxSortIndex()
	if err != nil {
		return models.Habit{}, err
	}

	start, err := parseDay(rec[2], opts.Location)
	if err != nil {
		start = opts.Today
	}
	habitType, err := models.ParseHabitType(rec[4])
	if err != nil {
		habitType = models.HabitNormal
	}

	h := models.Habit{
		ID:          opts.NewID(),
		Name:        strings.TrimSpace(rec[1]),
		Color:       opts.DefaultColor,
		Type:        habitType,
		StartDate:   start,
		Frequency:   models.ParseFrequency(rec[6]),
		TargetValue: models.StrPtr(rec[5]),
		SortIndex:   maxIndex + 1,
	}
	if end, err := parseDay(rec[3], opts.Location); err == nil && !end.Before(start) {
		h.EndDate = &end
	}
	if len(rec) > 8 {
		if color := strings.TrimSpace(rec[8]); models.ValidColor(color) {
			h.Color = color
		}
	}
	return h, nil
}

// importRow stores one data row. It reports false for rows that are skipped.
func importRow(dst Target, habitID string, rec []string, loc *time.Location) (bool, error) {
	if habitID == "" || len(rec) < 2 {
		return false, nil
	}
	date, err := parseDay(rec[0], loc)
	if err != nil {
		return false, nil
	}
	completed, err := strconv.ParseBool(strings.TrimSpace(rec[1]))
	if err != nil {
		return false, nil
	}

	r := models.HabitRecord{HabitID: habitID, Date: date, IsCompleted: completed}
	if len(rec) > 2 {
		r.Value = models.StrPtr(rec[2])
	}
	if len(rec) > 3 {
		r.Tags = strings.Join(models.SplitTags(rec[3]), ",")
	}
	if err := dst.UpsertRecord(r); err != nil {
		return false, fmt.Errorf("saving record for %s: %w", rec[0], err)
	}
	for _, tag := range r.TagList() {
		if err := dst.AddTag(models.Tag{Name: tag, HabitID: habitID}); err != nil {
			return false, fmt.Errorf("registering tag %q: %w", tag, err)
		}
	}
	return true, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, strings.TrimSpace(s), loc)
}
