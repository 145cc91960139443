package api

import (
	"fmt"
	"time"

	"github.com/sadopc/calgrid/internal/store"
)

// EventDTO is the JSON shape of an event on the wire. Requests omit id;
// responses always carry it.
type EventDTO struct {
	ID          int64   `json:"id,omitempty"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        *string `json:"time"`
	Duration    int     `json:"duration"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

func ToDTO(e store.Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.DateKey(),
		Time:        e.Time,
		Duration:    e.Duration,
		Description: e.Description,
		Color:       e.Color,
	}
}

// FromFields builds a request body from store fields.
func FromFields(f store.EventFields) EventDTO {
	return EventDTO{
		Title:       f.Title,
		Date:        f.Date.Format(store.DateLayout),
		Time:        f.Time,
		Duration:    f.Duration,
		Description: f.Description,
		Color:       f.Color,
	}
}

// Fields parses the date and runs validation.
func (d EventDTO) Fields() (store.EventFields, error) {
	var date time.Time
	if d.Date != "" {
		// accept full timestamps too; only the calendar date is kept
		t, err := time.Parse(store.DateLayout, d.Date)
		if err != nil {
			t, err = time.Parse(time.RFC3339, d.Date)
			if err != nil {
				return store.EventFields{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrValidation)
			}
		}
		date = t
	}
	f := store.EventFields{
		Title:       d.Title,
		Date:        date,
		Time:        d.Time,
		Duration:    d.Duration,
		Description: d.Description,
		Color:       d.Color,
	}
	if err := f.Validate(); err != nil {
		return store.EventFields{}, err
	}
	return f, nil
}

// Event converts a response body back into a store event.
func (d EventDTO) Event() (store.Event, error) {
	date, err := time.Parse(store.DateLayout, d.Date)
	if err != nil {
		return store.Event{}, fmt.Errorf("parse date %q: %w", d.Date, err)
	}
	return store.Event{
		ID:          d.ID,
		Title:       d.Title,
		Date:        date,
		Time:        d.Time,
		Duration:    d.Duration,
		Description: d.Description,
		Color:       d.Color,
	}, nil
}
