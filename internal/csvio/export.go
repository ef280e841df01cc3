// Package csvio reads and writes the habit backup format: one block per habit
// made of a [HABIT] marker line, a Date,IsCompleted,Note,CurrentTags
// sub-header, one row per record, and a blank separator line.
package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/julianstephens/habitick/internal/constants"
	"github.com/julianstephens/habitick/internal/models"
)

// Source supplies the data to export.
type Source interface {
	ListHabits() ([]models.Habit, error)
	ListRecords(habitID string) ([]models.HabitRecord, error)
	ListTags(habitID string) ([]models.Tag, error)
}

// ExportSummary counts what was written.
type ExportSummary struct {
	Habits  int
	Records int
}

// Export writes every habit and its records to w.
func Export(ctx context.Context, w io.Writer, src Source) (ExportSummary, error) {
	var sum ExportSummary

	habits, err := src.ListHabits()
	if err != nil {
		return sum, fmt.Errorf("listing habits: %w", err)
	}

	cw := csv.NewWriter(w)
	for _, h := range habits {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		tags, err := src.ListTags(h.ID)
		if err != nil {
			return sum, fmt.Errorf("listing tags for %q: %w", h.Name, err)
		}
		records, err := src.ListRecords(h.ID)
		if err != nil {
			return sum, fmt.Errorf("listing records for %q: %w", h.Name, err)
		}

		if err := cw.Write(markerLine(h, tags)); err != nil {
			return sum, err
		}
		if err := cw.Write(constants.CSVRecordHeader); err != nil {
			return sum, err
		}
		for _, r := range records {
			row := []string{
				r.Date.Format(constants.DateFormat),
				strconv.FormatBool(r.IsCompleted),
				r.Note(),
				r.Tags,
			}
			if err := cw.Write(row); err != nil {
				return sum, err
			}
			sum.Records++
		}
		if err := cw.Write(nil); err != nil {
			return sum, err
		}
		sum.Habits++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return sum, fmt.Errorf("writing csv: %w", err)
	}
	return sum, nil
}

func markerLine(h models.Habit, tags []models.Tag) []string {
	end := ""
	if h.EndDate != nil {
		end = h.EndDate.Format(constants.DateFormat)
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return []string{
		constants.CSVHabitMarker,
		h.Name,
		h.StartDate.Format(constants.DateFormat),
		end,
		string(h.Type),
		h.Target(),
		models.FormatFrequency(h.Frequency),
		strings.Join(names, constants.CSVTagSeparator),
		h.Color,
	}
}
