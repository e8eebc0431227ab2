package crawl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	BackfillDateLayout = "01/02/2006"
	maxBackfillWeeks   = 26
	maxBackfillMonths  = 6
	weeksPerMonth      = 4
	week               = 7 * 24 * time.Hour
)

var ErrInvalidBackfill = errors.New("invalid backfill parameter")

// GenerateBackfillDates returns weekly checkpoints in descending order. The
// first one is the Wednesday at or before start; the last one is still after
// start minus duration.
func GenerateBackfillDates(duration time.Duration, start time.Time) []time.Time {
	offset := (int(start.Weekday()) + 4) % 7
	date := start.AddDate(0, 0, -offset)
	end := start.Add(-duration)

	out := make([]time.Time, 0, int(duration/week)+1)
	for date.After(end) {
		out = append(out, date)
		date = date.AddDate(0, 0, -7)
	}
	return out
}

// ParseBackfillDuration accepts "<N>w" (1..26) and "<N>m" (1..6, four weeks each).
func ParseBackfillDuration(raw string) (time.Duration, error) {
	value := strings.TrimSpace(raw)
	if len(value) < 2 {
		return 0, fmt.Errorf("%w: duration %q, expected e.g. 3w or 4m", ErrInvalidBackfill, raw)
	}

	unit := value[len(value)-1]
	if unit != 'w' && unit != 'm' {
		return 0, fmt.Errorf("%w: duration %q, expected e.g. 3w or 4m", ErrInvalidBackfill, raw)
	}
	num, err := strconv.Atoi(value[:len(value)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q: %v", ErrInvalidBackfill, raw, err)
	}
	if num < 1 {
		return 0, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidBackfill, num)
	}

	if unit == 'w' {
		if num > maxBackfillWeeks {
			return 0, fmt.Errorf("%w: backfill period too long: %d weeks", ErrInvalidBackfill, num)
		}
		return time.Duration(num) * week, nil
	}
	if num > maxBackfillMonths {
		return 0, fmt.Errorf("%w: backfill period too long: %d months", ErrInvalidBackfill, num)
	}
	return time.Duration(num*weeksPerMonth) * week, nil
}

// ParseBackfillDate parses MM/DD/YYYY as a UTC date.
func ParseBackfillDate(raw string) (time.Time, error) {
	out, err := time.ParseInLocation(BackfillDateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, expected e.g. 11/16/2014", ErrInvalidBackfill, raw)
	}
	return out, nil
}

func FormatBackfillDate(date time.Time) string {
	return date.UTC().Format(BackfillDateLayout)
}
