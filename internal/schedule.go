package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Date layouts observed coming off the backend. Some records carry a full
// timestamp with an embedded T marker in the date field.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

var clockLayouts = []string{
	ClockLayout,
	"15:04:05",
	"3:04 PM",
	"3:04PM",
}

// NormalizeDate reduces any tolerated backend date string to "2006-01-02".
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date: %w", ErrMalformedSchedule)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("date %q: %w", s, ErrMalformedSchedule)
}

// NormalizeClock reduces any tolerated time-of-day string to "15:04".
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty time: %w", ErrMalformedSchedule)
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", fmt.Errorf("time %q: %w", s, ErrMalformedSchedule)
}

// ComposeAt builds an instant from a date string and a clock string in loc.
func ComposeAt(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := NormalizeDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := NormalizeClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(DateLayout+" "+ClockLayout, d+" "+c, loc)
}

// StartAt is the instant the session is scheduled to begin, in loc.
func (b *Booking) StartAt(loc *time.Location) (time.Time, error) {
	return ComposeAt(b.Date, b.StartTime, loc)
}

// EndAt is the instant the session is scheduled to end, in loc. An end
// clock at or before the start clock rolls over to the next day.
func (b *Booking) EndAt(loc *time.Location) (time.Time, error) {
	start, err := b.StartAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	end, err := ComposeAt(b.Date, b.EndTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return end, nil
}

// DurationHours is the scheduled session length derived from the time
// window, independent of the server-reported duration field.
func (b *Booking) DurationHours() (float64, error) {
	start, err := b.StartAt(time.UTC)
	if err != nil {
		return 0, err
	}
	end, err := b.EndAt(time.UTC)
	if err != nil {
		return 0, err
	}
	return end.Sub(start).Hours(), nil
}
