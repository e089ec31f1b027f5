package interval

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-day format used everywhere in
// the engine. Interval boundaries carry no timezone; presentation-layer
// conversion is the UI's job.
const DateLayout = "2006-01-02"

const minutesPerDay = 24 * 60

// Granularity drives which interval fields are mandatory for a
// resource kind.
type Granularity string

const (
	WholeDay Granularity = "WHOLE_DAY"
	SubDay   Granularity = "SUB_DAY"
)

// ErrInvalidInterval marks structural or time-range errors. Callers
// match with errors.Is; the wrapped message carries the field-level
// reason.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a reservation's temporal extent: one calendar day, either
// whole-day (desks) or a half-open [Start, End) minute-of-day range
// (rooms).
type Interval struct {
	Date        string `json:"date"`
	StartMinute int    `json:"startMinute"`
	EndMinute   int    `json:"endMinute"`
	WholeDay    bool   `json:"wholeDay"`
}

// Day returns a whole-day interval for the given date.
func Day(date string) Interval {
	return Interval{Date: date, WholeDay: true}
}

// Range returns a sub-day interval for the given date and minute range.
func Range(date string, start, end int) Interval {
	return Interval{Date: date, StartMinute: start, EndMinute: end}
}

// Overlaps reports whether two intervals intersect. Intervals on
// different calendar days never overlap; a whole-day interval overlaps
// anything on its day; sub-day ranges use the half-open rule
// a.start < b.end && b.start < a.end.
func Overlaps(a, b Interval) bool {
	if a.Date != b.Date {
		return false
	}
	if a.WholeDay || b.WholeDay {
		return true
	}
	return a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute
}

// Validate checks an interval against a resource kind's granularity.
// Past dates are rejected relative to the supplied now; violations are
// reported as errors wrapping ErrInvalidInterval, never corrected.
func Validate(iv Interval, g Granularity, now time.Time) error {
	day, err := ParseDate(iv.Date)
	if err != nil {
		return fmt.Errorf("%w: date %q is not in YYYY-MM-DD form", ErrInvalidInterval, iv.Date)
	}
	if day.Before(DayOf(now)) {
		return fmt.Errorf("%w: date %s is in the past", ErrInvalidInterval, iv.Date)
	}

	switch g {
	case WholeDay:
		if !iv.WholeDay || iv.StartMinute != 0 || iv.EndMinute != 0 {
			return fmt.Errorf("%w: whole-day resources do not take a time range", ErrInvalidInterval)
		}
	case SubDay:
		if iv.WholeDay {
			return fmt.Errorf("%w: a start and end time are required", ErrInvalidInterval)
		}
		if iv.StartMinute < 0 || iv.EndMinute > minutesPerDay {
			return fmt.Errorf("%w: times must fall within a single day", ErrInvalidInterval)
		}
		if iv.StartMinute >= iv.EndMinute {
			return fmt.Errorf("%w: start time must be before end time", ErrInvalidInterval)
		}
	default:
		return fmt.Errorf("%w: unknown granularity %q", ErrInvalidInterval, g)
	}
	return nil
}

// ParseDate parses a canonical YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DayOf truncates an instant to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseTimeOfDay converts "HH:MM" to a minute-of-day integer.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q is not in HH:MM form", ErrInvalidInterval, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinute renders a minute-of-day integer as "HH:MM".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
