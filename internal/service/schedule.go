package service

import (
	"fmt"
	"strings"
	"time"
)

// Canonical layouts used when a match date/time is written to storage or
// shown to a client.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// inputLayout accepts one- or two-digit day, month and hour.
const inputLayout = "2/1/2006 15:04"

// ParseSchedule turns a "DD/MM/YYYY" date and an "HH:MM" time into the
// instant they denote in loc.  Impossible dates such as 31/02 are rejected.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	t, err := time.ParseInLocation(inputLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule %q %q: %w", date, clock, err)
	}
	return t, nil
}

// FormatSchedule splits t back into the canonical date and time strings.
func FormatSchedule(t time.Time) (date, clock string) {
	return t.Format(DateLayout), t.Format(TimeLayout)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
