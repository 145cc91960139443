package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/view"
)

type agendaModel struct {
	width  int
	height int

	cursor     int
	offset     int // first visible event
	confirming bool
}

func newAgendaModel() agendaModel {
	return agendaModel{}
}

func (a *agendaModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

// clamp keeps the cursor on an existing event after a reload.
func (a *agendaModel) clamp(n int) {
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
	a.scrollTo()
}

func (a agendaModel) pageSize() int {
	return max(1, (a.height-8)/2)
}

func (a *agendaModel) scrollTo() {
	page := a.pageSize()
	if a.cursor < a.offset {
		a.offset = a.cursor
	}
	if a.cursor >= a.offset+page {
		a.offset = a.cursor - page + 1
	}
}

func (a agendaModel) update(msg tea.KeyMsg, st view.State) (agendaModel, view.State, tea.Cmd) {
	if a.confirming {
		a.confirming = false
		if msg.String() == "y" && a.cursor < len(st.Events) {
			req := st.Remove(st.Events[a.cursor].ID)
			return a, st, func() tea.Msg { return requestMsg{req: req} }
		}
		return a, st, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, keys.Down):
		if a.cursor < len(st.Events)-1 {
			a.cursor++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
		if a.cursor < len(st.Events) {
			st = st.OpenFormForEdit(st.Events[a.cursor])
		}
	case key.Matches(msg, keys.Delete):
		if a.cursor < len(st.Events) {
			a.confirming = true
		}
	case key.Matches(msg, keys.Prev):
		st = st.Navigate(calendar.Prev)
		a.cursor, a.offset = 0, 0
	case key.Matches(msg, keys.Next):
		st = st.Navigate(calendar.Next)
		a.cursor, a.offset = 0, 0
	}
	a.scrollTo()
	return a, st, nil
}

func (a agendaModel) view(st view.State) string {
	w := a.width - 4
	title := titleStyle.Render("Agenda") + "  " + mutedStyle.Render(st.Title())

	if len(st.Events) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No events in this range. Press 1 and n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")

	end := min(len(st.Events), a.offset+a.pageSize())
	lastDate := ""
	for i := a.offset; i < end; i++ {
		e := st.Events[i]
		if k := e.DateKey(); k != lastDate {
			lastDate = k
			rows = append(rows, weekdayStyle.Render(e.Date.Format("Monday, Jan 2")))
		}
		rows = append(rows, a.renderRow(e, i == a.cursor, w))
	}
	if more := len(st.Events) - end; more > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", more)))
	}

	rows = append(rows, "")
	if a.confirming && a.cursor < len(st.Events) {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  Delete %q? y: yes  any other key: cancel", st.Events[a.cursor].Title)))
	} else {
		rows = append(rows, mutedStyle.Render("  e/enter: edit  d: delete  [/]: prev/next page"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (a agendaModel) renderRow(e store.Event, selected bool, w int) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("●")

	when := "all day"
	if e.Time != nil {
		when = *e.Time
	}
	line := fmt.Sprintf("%s%s %-8s %-7s %s", cursor, dot, when, formatMinutes(e.Duration), e.Title)
	if e.Description != nil {
		line += mutedStyle.Render("  " + truncate(strings.ReplaceAll(*e.Description, "\n", " "), max(0, w-lipgloss.Width(line)-6)))
	}
	return style.Render(line)
}
