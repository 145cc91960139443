package tui

import (
	"fmt"

	"github.com/sadopc/calgrid/internal/config"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/view"
)

// viewState represents the currently active tab.
type viewState int

const (
	viewCalendar viewState = iota
	viewAgenda
	viewLoad
	viewSettings
)

var viewNames = []string{"Calendar", "Agenda", "Load", "Settings"}

// --- Messages ---

type eventsLoadedMsg struct {
	events []store.Event
	err    error
}

// requestMsg asks the app to carry out a store mutation.
type requestMsg struct {
	req view.Request
}

type mutationDoneMsg struct {
	req    view.Request
	events []store.Event
	err    error
}

type configSavedMsg struct {
	cfg config.Config
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path  string
	count int
}

// --- Helpers ---

// formatMinutes renders a duration in minutes as 1h30m, 45m or 2h.
func formatMinutes(mins int) string {
	h, m := mins/60, mins%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

func formatHours(mins int) string {
	return fmt.Sprintf("%.1fh", float64(mins)/60)
}

// truncate cuts s to at most w runes, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func durationLabel(mins int) string {
	if mins >= 480 {
		return "All day"
	}
	return formatMinutes(mins)
}
