package query

import (
	"fmt"
	"strings"
	"time"
)

// TimeSelect is the spatial-indexed operator a time constraint maps to.
type TimeSelect string

const (
	TimeSelectStrict   TimeSelect = "strict"
	TimeSelectFlexible TimeSelect = "flexible"
	TimeSelectFile     TimeSelect = "file"
)

// IndexOperator is the backend-facing operator name for a TimeSelect value.
func (s TimeSelect) IndexOperator() (string, error) {
	switch s {
	case TimeSelectStrict, "":
		return "Within", nil
	case TimeSelectFlexible:
		return "Intersects", nil
	case TimeSelectFile:
		return "Contains", nil
	default:
		return "", fmt.Errorf("invalid time_select %q: valid operators are strict, flexible, file", s)
	}
}

var (
	minTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// ParseTimeRange parses the `time` query parameter per spec §4.1 "Time
// constraint": either a single bound ("YYYY[-MM-DD[THH:MM]]"), which expands
// to the period it names, or "<start> to <end>", where a missing start or
// end defaults to minTime or maxTime. An empty string means no constraint
// (nil, nil).
func ParseTimeRange(raw string) (*TimeRangeConstraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	padded := " " + raw + " "
	for idx := 0; idx+4 <= len(padded); idx++ {
		if !strings.EqualFold(padded[idx:idx+4], " to ") {
			continue
		}
		startStr := strings.TrimSpace(padded[:idx])
		endStr := strings.TrimSpace(padded[idx+4:])
		start, err := parseTimePoint(startStr, minTime)
		if err != nil {
			return nil, err
		}
		end, err := parseTimePoint(endStr, maxTime)
		if err != nil {
			return nil, err
		}
		return &TimeRangeConstraint{Start: start, End: end}, nil
	}

	// A single bound expands to the full period it names at whatever
	// precision was given: "1800" means all of year 1800, "1800-06-15" all
	// of that day, and "1800-06-15T12:00" that single minute mark (spec §8
	// boundary behavior).
	start, end, err := parsePeriod(raw)
	if err != nil {
		return nil, err
	}
	return &TimeRangeConstraint{Start: start, End: end}, nil
}

// parsePeriod parses a single time bound and returns the first and last
// second of the period it denotes at its given precision, both inclusive.
func parsePeriod(raw string) (time.Time, time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return t, t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, t.AddDate(0, 0, 1).Add(-time.Second), nil
	}
	if t, err := time.Parse("2006", raw); err == nil {
		return t, t.AddDate(1, 0, 0).Add(-time.Second), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("invalid time value %q: expected YYYY[-MM-DD[THH:MM]]", raw)
}

// TimeRangeConstraint is a parsed `time=` query value ready for index
// translation.
type TimeRangeConstraint struct {
	Start time.Time
	End   time.Time
}

var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02",
	"2006",
}

func parseTimePoint(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if layout == "2006" {
				return t, nil
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time value %q: expected YYYY[-MM-DD[THH:MM]]", raw)
}
