// Package view holds the calendar's view state and the transitions between
// states. Transitions are pure; store traffic is described by Request values
// and carried out by Execute.
package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/store"
)

// Palette is the set of colors offered for new events.
var Palette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

// Durations are the minute values offered by the event form. 480 reads as
// "all day".
var Durations = []int{15, 30, 45, 60, 90, 120, 180, 240, 480}

// Form is the draft of an event being created or edited.
type Form struct {
	Title       string
	Time        string // "HH:MM" or empty for untimed
	Duration    int
	Description string
	Color       string
}

// EmptyForm returns the draft a fresh create starts from.
func EmptyForm() Form {
	return Form{Duration: store.DefaultDuration, Color: Palette[0]}
}

type State struct {
	Config calendar.Config
	Anchor time.Time
	Mode   calendar.Mode
	Events []store.Event // last successful fetch

	Selected    time.Time
	HasSelected bool
	FormOpen    bool
	Form        Form
	EditingID   *int64 // nil while creating

	Err error // last failed store operation
}

// New returns a month view anchored on today's date.
func New(cfg calendar.Config, mode calendar.Mode, today time.Time) State {
	return State{
		Config: cfg,
		Anchor: calendar.Day(today),
		Mode:   mode,
		Form:   EmptyForm(),
	}
}

func (s State) VisibleDays() []time.Time {
	return s.Config.VisibleDays(s.Anchor, s.Mode)
}

func (s State) Title() string {
	return s.Config.Title(s.Anchor, s.Mode)
}

// Filter scopes a fetch to the visible page.
func (s State) Filter() store.EventFilter {
	from, to := s.Config.Range(s.Anchor, s.Mode)
	return store.EventFilter{From: &from, To: &to}
}

func (s State) SelectView(mode calendar.Mode) State {
	s.Mode = mode
	return s
}

func (s State) Navigate(dir calendar.Direction) State {
	s.Anchor = calendar.Navigate(s.Anchor, s.Mode, dir)
	return s
}

// Today jumps the anchor to now's date.
func (s State) Today(now time.Time) State {
	s.Anchor = calendar.Day(now)
	return s
}

// OpenFormForDate starts a create for an untimed event on date.
func (s State) OpenFormForDate(date time.Time) State {
	s.Selected = calendar.Day(date)
	s.HasSelected = true
	s.EditingID = nil
	s.Form = EmptyForm()
	s.FormOpen = true
	return s
}

// OpenFormForHour starts a create on date with the time pre-filled from the
// clicked hour slot.
func (s State) OpenFormForHour(date time.Time, hour int) State {
	s = s.OpenFormForDate(date)
	s.Form.Time = fmt.Sprintf("%02d:00", hour)
	return s
}

// OpenFormForEdit loads every field of e into the draft.
func (s State) OpenFormForEdit(e store.Event) State {
	id := e.ID
	s.EditingID = &id
	s.Selected = e.Date
	s.HasSelected = true
	s.Form = Form{
		Title:    e.Title,
		Duration: e.Duration,
		Color:    e.Color,
	}
	if e.Time != nil {
		s.Form.Time = *e.Time
	}
	if e.Description != nil {
		s.Form.Description = *e.Description
	}
	if s.Form.Duration <= 0 {
		s.Form.Duration = store.DefaultDuration
	}
	s.FormOpen = true
	return s
}

// Discard closes the form without persisting anything.
func (s State) Discard() State {
	s.FormOpen = false
	s.EditingID = nil
	s.Form = EmptyForm()
	return s
}

// Fields converts the draft into store fields for the selected date.
func (s State) Fields() store.EventFields {
	f := store.EventFields{
		Title:    strings.TrimSpace(s.Form.Title),
		Date:     s.Selected,
		Duration: s.Form.Duration,
		Color:    s.Form.Color,
	}
	if t := strings.TrimSpace(s.Form.Time); t != "" {
		f.Time = &t
	}
	if d := strings.TrimSpace(s.Form.Description); d != "" {
		f.Description = &d
	}
	return f
}

// Submit turns the draft into a create or update request. It is a no-op
// (ok == false) when the title is empty or no date is selected. Drafts that
// fail validation are rejected before any request is built.
func (s State) Submit() (State, Request, bool) {
	if strings.TrimSpace(s.Form.Title) == "" || !s.HasSelected {
		return s, Request{}, false
	}
	fields := s.Fields()
	if err := fields.Validate(); err != nil {
		s.Err = err
		return s, Request{}, false
	}
	req := Request{Kind: RequestCreate, Fields: fields}
	if s.EditingID != nil {
		req.Kind = RequestUpdate
		req.ID = *s.EditingID
	}
	return s, req, true
}

// Remove builds a delete request for id.
func (s State) Remove(id int64) Request {
	return Request{Kind: RequestDelete, ID: id}
}

// Loaded replaces the event list wholesale and clears the last error.
func (s State) Loaded(events []store.Event) State {
	s.Events = events
	s.Err = nil
	return s
}

// Completed applies a successful mutation: the refetched list replaces the
// old one and a create/update form is closed.
func (s State) Completed(req Request, events []store.Event) State {
	s = s.Loaded(events)
	if req.Kind != RequestDelete {
		s = s.Discard()
	}
	return s
}

// Committed applies a mutation that was stored but whose refetch failed:
// the form closes as on success, the old list stays and err is recorded.
func (s State) Committed(req Request, err error) State {
	if req.Kind != RequestDelete {
		s = s.Discard()
	}
	s.Err = err
	return s
}

// Apply folds the result of Execute into s.
func (s State) Apply(req Request, events []store.Event, err error) State {
	switch {
	case err == nil:
		return s.Completed(req, events)
	case errors.Is(err, ErrRefetch):
		return s.Committed(req, err)
	}
	return s.Failed(err)
}

// Failed records err and leaves the event list and any open form untouched.
func (s State) Failed(err error) State {
	s.Err = err
	return s
}
