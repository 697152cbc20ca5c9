package utils

import (
	"errors"
	"time"
)

// DayKey is the canonical calendar-date string for a timestamp, derived in
// the given location. Every engine routes its date math through this one
// function so they all agree on day boundaries; mixing local arithmetic
// with UTC-stored timestamps is how off-by-one-day bugs happen.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// DayStart returns local midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// ParseDayKey parses a canonical day key back into local midnight.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", key, loc)
	if err != nil {
		return time.Time{}, errors.New("invalid day key, want YYYY-MM-DD")
	}
	return t, nil
}

// LoadTimezone resolves an IANA zone name, defaulting to UTC when empty.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New("invalid IANA timezone: " + name)
	}
	return loc, nil
}

// MondayOf returns local midnight of the Monday that starts t's week.
func MondayOf(t time.Time, loc *time.Location) time.Time {
	d := DayStart(t, loc)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 … Sunday=6
	return d.AddDate(0, 0, -offset)
}
