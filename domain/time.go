package domain

import (
	"fmt"
	"time"
)

// Instant is a UTC-normalized timestamp. The zero value is not a valid
// Instant; always construct via NewInstant or ParseInstant.
type Instant struct {
	t time.Time
}

// NewInstant normalizes t to UTC.
func NewInstant(t time.Time) Instant {
	return Instant{t: t.UTC()}
}

// ParseInstant parses an ISO-8601 timestamp with an explicit offset and
// normalizes it to UTC.
func ParseInstant(raw string) (Instant, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339Nano, raw); err2 == nil {
			return NewInstant(t2), nil
		}
		return Instant{}, fmt.Errorf("%w: %q: %v", ErrInvalidTime, raw, err)
	}
	return NewInstant(t), nil
}

// Time returns the underlying UTC time.Time.
func (i Instant) Time() time.Time { return i.t }

// Unix returns seconds since epoch.
func (i Instant) Unix() int64 { return i.t.Unix() }

// Weekday returns the UTC weekday.
func (i Instant) Weekday() time.Weekday { return i.t.Weekday() }

// DayKey is a UTC civil date used to bucket daily counters.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// DayKeyOf derives the civil date of an Instant.
func DayKeyOf(i Instant) DayKey {
	y, m, d := i.t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// String renders the day key as YYYY-MM-DD.
func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// asTime reconstructs a midnight-UTC time.Time for arithmetic.
func (k DayKey) asTime() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day key n days later (n may be negative).
func (k DayKey) AddDays(n int) DayKey {
	t := k.asTime().AddDate(0, 0, n)
	return DayKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Weekday returns the weekday of the day key.
func (k DayKey) Weekday() time.Weekday {
	return k.asTime().Weekday()
}

// WeekKey is the civil date of the configured week-start weekday on or
// before the given day key.
type WeekKey DayKey

// String renders the week key as YYYY-MM-DD.
func (k WeekKey) String() string {
	return DayKey(k).String()
}

// WeekKeyOf computes the week key for dayKey given the configured
// week-start weekday (spec.md §4.3).
func WeekKeyOf(dayKey DayKey, weekStart time.Weekday) WeekKey {
	delta := int(dayKey.Weekday()-weekStart+7) % 7
	return WeekKey(dayKey.AddDays(-delta))
}

// ParseWeekday validates a weekday name against the closed set of English
// weekday names (spec.md §9 open question: week-start configurability).
func ParseWeekday(name string) (time.Weekday, error) {
	switch name {
	case "Sunday":
		return time.Sunday, nil
	case "Monday":
		return time.Monday, nil
	case "Tuesday":
		return time.Tuesday, nil
	case "Wednesday":
		return time.Wednesday, nil
	case "Thursday":
		return time.Thursday, nil
	case "Friday":
		return time.Friday, nil
	case "Saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("config: unsupported weekday %q", name)
	}
}
