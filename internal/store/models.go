package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and column format of Event.Date.
const DateLayout = "2006-01-02"

const (
	DefaultDuration = 60
	DefaultColor    = "#3B82F6"
)

var (
	ErrNotFound   = errors.New("event not found")
	ErrValidation = errors.New("invalid event")
)

type Event struct {
	ID          int64
	Title       string
	Date        time.Time // midnight UTC, no time component
	Time        *string   // "HH:MM", nil for untimed events
	Duration    int       // minutes
	Description *string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DateKey returns e.Date formatted as YYYY-MM-DD.
func (e Event) DateKey() string {
	return e.Date.Format(DateLayout)
}

// EventFields is everything a create or update replaces.
type EventFields struct {
	Title       string
	Date        time.Time
	Time        *string
	Duration    int
	Description *string
	Color       string
}

// Validate checks required fields and normalizes defaults in place.
func (f *EventFields) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if f.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	f.Date = time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
	if f.Time != nil {
		t := strings.TrimSpace(*f.Time)
		if t == "" {
			f.Time = nil
		} else {
			norm, ok := normalizeClock(t)
			if !ok {
				return fmt.Errorf("%w: time %q is not HH:MM", ErrValidation, t)
			}
			f.Time = &norm
		}
	}
	if f.Duration <= 0 {
		f.Duration = DefaultDuration
	}
	if f.Description != nil && *f.Description == "" {
		f.Description = nil
	}
	if f.Color == "" {
		f.Color = DefaultColor
	}
	return nil
}

// ParseClock parses H:MM or HH:MM, optionally followed by :SS. Signs,
// single-digit minutes and out-of-range values are rejected.
func ParseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, false
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	if len(parts) == 3 && len(parts[2]) != 2 {
		return 0, 0, false
	}
	for _, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return 0, 0, false
			}
		}
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	if h > 23 || m > 59 {
		return 0, 0, false
	}
	if len(parts) == 3 {
		if sec, _ := strconv.Atoi(parts[2]); sec > 59 {
			return 0, 0, false
		}
	}
	return h, m, true
}

// normalizeClock returns s as zero-padded HH:MM.
func normalizeClock(s string) (string, bool) {
	h, m, ok := ParseClock(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// EventFilter restricts List to an inclusive date range. The filter applies
// only when both bounds are set.
type EventFilter struct {
	From *time.Time
	To   *time.Time
}

// EventStore is implemented by the local SQLite store and the HTTP client.
type EventStore interface {
	List(ctx context.Context, f EventFilter) ([]Event, error)
	Create(ctx context.Context, f EventFields) (*Event, error)
	Update(ctx context.Context, id int64, f EventFields) (*Event, error)
	Delete(ctx context.Context, id int64) error
}
