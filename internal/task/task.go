// Package task defines the read-only view of tasks the notification engine
// consumes. Task lifecycle (create/edit/complete) is owned elsewhere; the
// engine only ever sees a snapshot per evaluation cycle and writes nothing
// back.
package task

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time-of-day and no timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Task is one schedulable item.
type Task struct {
	ID            string
	Title         string
	DueDate       *Date      // nil means never eligible for notification
	DueTime       *TimeOfDay // nil means midnight of DueDate
	Completed     bool
	NotifyEnabled bool
}

// Source supplies the per-cycle task snapshot.
type Source interface {
	Snapshot(ctx context.Context) ([]Task, error)
}

// DueInstant combines DueDate and DueTime into a local-time instant.
// The instant is built from calendar fields directly. Parsing a date string
// into a timestamp would interpret it in UTC and shift the due day for users
// west of Greenwich, which is exactly the bug this avoids.
func (t Task) DueInstant() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	hour, minute := 0, 0
	if t.DueTime != nil {
		hour, minute = t.DueTime.Hour, t.DueTime.Minute
	}
	d := t.DueDate
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, time.Local), true
}

// ParseDate splits a "YYYY-MM-DD" string into calendar fields.
func ParseDate(s string) (*Date, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("date %q out of range", s)
	}
	return &Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// ParseTimeOfDay splits a "HH:MM" string into wall-clock fields.
func ParseTimeOfDay(s string) (*TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("time %q out of range", s)
	}
	return &TimeOfDay{Hour: hour, Minute: minute}, nil
}
