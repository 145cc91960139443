// Package calendar computes which days a month, week or day page shows and
// where events land on those pages. Dates are naive calendar days carried as
// midnight-UTC time.Time values.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

type Mode int

const (
	ModeMonth Mode = iota
	ModeWeek
	ModeDay
)

var modeNames = []string{"month", "week", "day"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode accepts "month", "week" or "day" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeMonth, fmt.Errorf("unknown view mode %q", s)
}

type Direction int

const (
	Next Direction = 1
	Prev Direction = -1
)

// Config carries the conventions a date library would otherwise imply.
type Config struct {
	WeekStart time.Weekday
}

// DefaultConfig starts weeks on Sunday.
func DefaultConfig() Config {
	return Config{WeekStart: time.Sunday}
}

// ParseWeekStart maps "monday"/"sunday" (any weekday name works) to a weekday.
func ParseWeekStart(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown week start %q", s)
}

// Day truncates t to its calendar day, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// InMonth reports whether day belongs to anchor's month. Month grids use it to
// dim the leading and trailing days of adjacent months.
func InMonth(day, anchor time.Time) bool {
	return day.Year() == anchor.Year() && day.Month() == anchor.Month()
}

func (c Config) startOfWeek(t time.Time) time.Time {
	d := Day(t)
	back := (int(d.Weekday()) - int(c.WeekStart) + 7) % 7
	return d.AddDate(0, 0, -back)
}

func (c Config) endOfWeek(t time.Time) time.Time {
	return c.startOfWeek(t).AddDate(0, 0, 6)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}

// Range returns the first and last visible day (inclusive) for anchor in mode.
func (c Config) Range(anchor time.Time, mode Mode) (time.Time, time.Time) {
	switch mode {
	case ModeWeek:
		return c.startOfWeek(anchor), c.endOfWeek(anchor)
	case ModeDay:
		d := Day(anchor)
		return d, d
	default:
		return c.startOfWeek(startOfMonth(anchor)), c.endOfWeek(endOfMonth(anchor))
	}
}

// VisibleDays lists every day shown for anchor in mode. Month pages always
// cover whole weeks, so the length is a multiple of 7.
func (c Config) VisibleDays(anchor time.Time, mode Mode) []time.Time {
	from, to := c.Range(anchor, mode)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Navigate moves anchor one page forward or back. Months are added as whole
// units: the day of month is clamped to the target month's length, so Jan 31
// goes to Feb 28/29 rather than spilling into March.
func Navigate(anchor time.Time, mode Mode, dir Direction) time.Time {
	d := Day(anchor)
	switch mode {
	case ModeWeek:
		return d.AddDate(0, 0, 7*int(dir))
	case ModeDay:
		return d.AddDate(0, 0, int(dir))
	default:
		return addMonths(d, int(dir))
	}
}

func addMonths(d time.Time, n int) time.Time {
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Title renders the page heading for anchor in mode.
func (c Config) Title(anchor time.Time, mode Mode) string {
	switch mode {
	case ModeWeek:
		start, end := c.Range(anchor, mode)
		if start.Year() != end.Year() {
			return fmt.Sprintf("%s – %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	case ModeDay:
		return anchor.Format("Monday, January 2, 2006")
	default:
		return anchor.Format("January 2006")
	}
}

// WeekdayNames returns short weekday labels in display order.
func (c Config) WeekdayNames() []string {
	names := make([]string, 7)
	for i := range names {
		names[i] = time.Weekday((int(c.WeekStart) + i) % 7).String()[:3]
	}
	return names
}

// Hours returns the hour rows of a week or day grid.
func Hours() []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}
