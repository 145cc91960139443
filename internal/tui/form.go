package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/view"
)

// eventForm is the huh form behind view.State.Form. Field values live behind
// pointers so they survive value copies of the model.
type eventForm struct {
	form *huh.Form

	title       *string
	clock       *string
	duration    *int
	description *string
	color       *string

	editing bool
	heading string
}

func newEventForm(st view.State) eventForm {
	title, clock := st.Form.Title, st.Form.Time
	duration, description, color := st.Form.Duration, st.Form.Description, st.Form.Color
	if color == "" {
		color = view.Palette[0]
	}

	f := eventForm{
		title:       &title,
		clock:       &clock,
		duration:    &duration,
		description: &description,
		color:       &color,
		editing:     st.EditingID != nil,
	}
	f.heading = "New Event · " + st.Selected.Format("Mon Jan 2, 2006")
	if f.editing {
		f.heading = "Edit Event · " + st.Selected.Format("Mon Jan 2, 2006")
	}

	durationOptions := make([]huh.Option[int], 0, len(view.Durations)+1)
	known := false
	for _, d := range view.Durations {
		durationOptions = append(durationOptions, huh.NewOption(durationLabel(d), d))
		known = known || d == duration
	}
	if !known {
		// keep durations set through the API selectable
		durationOptions = append(durationOptions, huh.NewOption(formatMinutes(duration), duration))
	}

	colorOptions := make([]huh.Option[string], 0, len(view.Palette)+1)
	known = false
	for _, c := range view.Palette {
		colorOptions = append(colorOptions, huh.NewOption(colorSwatch(c), c))
		known = known || c == color
	}
	if !known {
		colorOptions = append(colorOptions, huh.NewOption(colorSwatch(color), color))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(f.title).Validate(requireTitle),
			huh.NewInput().Title("Time").Placeholder("HH:MM, empty for all day").Value(f.clock).Validate(validateClock),
			huh.NewSelect[int]().Title("Duration").Options(durationOptions...).Value(f.duration),
			huh.NewText().Title("Description").Lines(3).Value(f.description),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(f.color),
		),
	).WithShowHelp(true).WithShowErrors(true)

	return f
}

func (f eventForm) active() bool { return f.form != nil }

// draft copies the field values back into a view.Form.
func (f eventForm) draft() view.Form {
	return view.Form{
		Title:       *f.title,
		Time:        *f.clock,
		Duration:    *f.duration,
		Description: *f.description,
		Color:       *f.color,
	}
}

func colorSwatch(c string) string {
	return fmt.Sprintf("● %s", c)
}

func requireTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validateClock(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, _, ok := calendar.ParseClock(s); !ok {
		return errors.New("use HH:MM, e.g. 09:30")
	}
	return nil
}
