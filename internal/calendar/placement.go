package calendar

import (
	"time"

	"github.com/sadopc/calgrid/internal/store"
)

// MonthCellLimit is how many events a month cell lists before "+N more".
const MonthCellLimit = 3

// Placement is the vertical extent of a timed event inside a day column.
type Placement struct {
	Top    float64
	Height float64
}

// ParseClock splits "HH:MM" into hour and minute using the same rules the
// store validates with, so anything placed here is also storable.
func ParseClock(s string) (hour, minute int, ok bool) {
	return store.ParseClock(s)
}

// Position maps an event's start time and duration onto a day column scaled
// at pixelsPerHour. Untimed events have no position. Callers clamp the
// minimum rendered height.
func Position(e store.Event, pixelsPerHour float64) (Placement, bool) {
	if e.Time == nil {
		return Placement{}, false
	}
	hour, minute, ok := ParseClock(*e.Time)
	if !ok {
		return Placement{}, false
	}
	duration := e.Duration
	if duration <= 0 {
		duration = store.DefaultDuration
	}
	return Placement{
		Top:    float64(hour*60+minute) * pixelsPerHour / 60,
		Height: float64(duration) * pixelsPerHour / 60,
	}, true
}

// GroupByDay buckets events under each of days, keyed by YYYY-MM-DD. Every
// day gets an entry; events keep their input order and events on days not
// listed are dropped.
func GroupByDay(events []store.Event, days []time.Time) map[string][]store.Event {
	out := make(map[string][]store.Event, len(days))
	for _, d := range days {
		out[d.Format(store.DateLayout)] = []store.Event{}
	}
	for _, e := range events {
		key := e.DateKey()
		if bucket, ok := out[key]; ok {
			out[key] = append(bucket, e)
		}
	}
	return out
}

// EventsOn returns the events dated day, in input order.
func EventsOn(events []store.Event, day time.Time) []store.Event {
	var out []store.Event
	for _, e := range events {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize truncates a month cell to its first limit events and reports how
// many were left out.
func Summarize(events []store.Event, limit int) ([]store.Event, int) {
	if limit < 0 {
		limit = 0
	}
	if len(events) <= limit {
		return events, 0
	}
	return events[:limit], len(events) - limit
}

// EventsForHourSlot returns the events on day whose start hour is hour.
// Untimed events never match.
func EventsForHourSlot(events []store.Event, day time.Time, hour int) []store.Event {
	var out []store.Event
	for _, e := range events {
		if e.Time == nil || !SameDay(e.Date, day) {
			continue
		}
		h, _, ok := ParseClock(*e.Time)
		if ok && h == hour {
			out = append(out, e)
		}
	}
	return out
}

// Untimed returns the events without a time of day.
func Untimed(events []store.Event) []store.Event {
	var out []store.Event
	for _, e := range events {
		if e.Time == nil {
			out = append(out, e)
		}
	}
	return out
}

// ScheduledMinutes totals the duration of timed events per visible day.
func ScheduledMinutes(events []store.Event, days []time.Time) []int {
	grouped := GroupByDay(events, days)
	out := make([]int, len(days))
	for i, d := range days {
		for _, e := range grouped[d.Format(store.DateLayout)] {
			if e.Time == nil {
				continue
			}
			if e.Duration > 0 {
				out[i] += e.Duration
			} else {
				out[i] += store.DefaultDuration
			}
		}
	}
	return out
}
