package stats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/julianstephens/habitick/internal/models"
)

var (
	numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)
	colonPattern  = regexp.MustCompile(`[:：]`)
)

// ExtractValue parses a record value into a number according to the habit type.
// TimePoint values become minutes since midnight; Numeric and Timer values use
// the first decimal number in the text. Normal habits carry no numeric value.
func ExtractValue(raw *string, habitType models.HabitType) (float64, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return 0, false
	}
	switch habitType {
	case models.HabitNormal:
		return 0, false
	case models.HabitTimePoint:
		minutes, ok := ParseTimePoint(*raw)
		return float64(minutes), ok
	default:
		match := numberPattern.FindString(*raw)
		if match == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}

// ParseTimePoint parses "HH:MM" (ASCII or full-width colon) into minutes since
// midnight. Unparsable hour or minute parts count as zero.
func ParseTimePoint(s string) (int, bool) {
	parts := colonPattern.Split(strings.TrimSpace(s), -1)
	if len(parts) != 2 {
		return 0, false
	}
	h, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	return h*60 + m, true
}

// FormatMinutes renders minutes since midnight as "HH:MM", truncating fractions.
func FormatMinutes(minutes float64) string {
	total := int(minutes)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatAxisValue renders a chart axis value for the habit type.
func FormatAxisValue(v float64, habitType models.HabitType) string {
	if habitType == models.HabitTimePoint {
		return FormatMinutes(v)
	}
	return fmt.Sprintf("%.0f", v)
}
