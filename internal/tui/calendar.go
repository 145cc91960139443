package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/view"
)

var modeNames = []string{"Month", "Week", "Day"}

type calendarModel struct {
	width  int
	height int

	rowsPerHour int
	cursor      time.Time // selected day
	hour        int       // selected hour row in week/day mode
	scroll      int       // first visible grid row in week/day mode
}

func newCalendarModel(today time.Time, rowsPerHour int) calendarModel {
	c := calendarModel{
		rowsPerHour: max(1, rowsPerHour),
		cursor:      calendar.Day(today),
		hour:        9,
	}
	c.scroll = c.hour * c.rowsPerHour
	return c
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.ensureHourVisible()
}

func (c *calendarModel) setRowsPerHour(n int) {
	c.rowsPerHour = max(1, n)
	c.ensureHourVisible()
}

// anchorFor returns the anchor to use when day should be visible in mode.
// Month pages are anchored on the 1st so month arithmetic never clamps.
func anchorFor(mode calendar.Mode, day time.Time) time.Time {
	if mode == calendar.ModeMonth {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return calendar.Day(day)
}

func visible(st view.State, day time.Time) bool {
	from, to := st.Config.Range(st.Anchor, st.Mode)
	return !day.Before(from) && !day.After(to)
}

// update handles calendar keys. It returns the next view state; the caller
// refetches when the visible range changed and opens the form when the
// state asks for it.
func (c calendarModel) update(msg tea.KeyMsg, st view.State, now time.Time) (calendarModel, view.State, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Prev):
		st = st.Navigate(calendar.Prev)
		c.cursor = calendar.Navigate(c.cursor, st.Mode, calendar.Prev)
	case key.Matches(msg, keys.Next):
		st = st.Navigate(calendar.Next)
		c.cursor = calendar.Navigate(c.cursor, st.Mode, calendar.Next)
	case key.Matches(msg, keys.Today):
		st = st.Today(now)
		st.Anchor = anchorFor(st.Mode, st.Anchor)
		c.cursor = calendar.Day(now)
	case key.Matches(msg, keys.View):
		mode := (st.Mode + 1) % 3
		st = st.SelectView(mode)
		st.Anchor = anchorFor(mode, c.cursor)
	case key.Matches(msg, keys.Left):
		c.cursor = c.cursor.AddDate(0, 0, -1)
	case key.Matches(msg, keys.Right):
		c.cursor = c.cursor.AddDate(0, 0, 1)
	case key.Matches(msg, keys.Up):
		if st.Mode == calendar.ModeMonth {
			c.cursor = c.cursor.AddDate(0, 0, -7)
		} else if c.hour > 0 {
			c.hour--
		}
	case key.Matches(msg, keys.Down):
		if st.Mode == calendar.ModeMonth {
			c.cursor = c.cursor.AddDate(0, 0, 7)
		} else if c.hour < 23 {
			c.hour++
		}
	case key.Matches(msg, keys.Edit):
		if e, ok := c.eventAtCursor(st); ok {
			st = st.OpenFormForEdit(e)
		}
		return c, st, nil
	case key.Matches(msg, keys.Enter):
		// an occupied hour slot opens its first event
		if st.Mode != calendar.ModeMonth {
			if e, ok := c.eventAtCursor(st); ok {
				return c, st.OpenFormForEdit(e), nil
			}
		}
		return c, c.openNew(st), nil
	case key.Matches(msg, keys.New):
		return c, c.openNew(st), nil
	default:
		return c, st, nil
	}

	if !visible(st, c.cursor) {
		st.Anchor = anchorFor(st.Mode, c.cursor)
	}
	c.ensureHourVisible()
	return c, st, nil
}

func (c calendarModel) openNew(st view.State) view.State {
	if st.Mode == calendar.ModeMonth {
		return st.OpenFormForDate(c.cursor)
	}
	return st.OpenFormForHour(c.cursor, c.hour)
}

// eventAtCursor is the first event of the cursor day in month mode, or of
// the cursor hour slot in week and day mode.
func (c calendarModel) eventAtCursor(st view.State) (store.Event, bool) {
	var events []store.Event
	if st.Mode == calendar.ModeMonth {
		events = calendar.EventsOn(st.Events, c.cursor)
	} else {
		events = calendar.EventsForHourSlot(st.Events, c.cursor, c.hour)
	}
	if len(events) == 0 {
		return store.Event{}, false
	}
	return events[0], true
}

// gridRows is the number of hour-grid rows that fit on screen.
func (c calendarModel) gridRows() int {
	// title, weekday header, all-day strip, hint
	return max(1, c.height-6)
}

func (c *calendarModel) ensureHourVisible() {
	rows := c.gridRows()
	top := c.hour * c.rowsPerHour
	bottom := top + c.rowsPerHour
	if top < c.scroll {
		c.scroll = top
	}
	if bottom > c.scroll+rows {
		c.scroll = bottom - rows
	}
	maxScroll := max(0, 24*c.rowsPerHour-rows)
	c.scroll = min(max(0, c.scroll), maxScroll)
}

func (c calendarModel) view(st view.State, now time.Time) string {
	if c.width < 30 {
		return "Terminal too small"
	}

	header := c.renderHeader(st)

	var body string
	if st.Mode == calendar.ModeMonth {
		body = c.renderMonth(st, now)
	} else {
		body = c.renderHours(st, now)
	}

	hint := mutedStyle.Render("  [/]: prev/next  t: today  v: view  arrows: move  enter: open  n: new  e: edit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, hint)
}

func (c calendarModel) renderHeader(st view.State) string {
	var tabs []string
	for i, name := range modeNames {
		if calendar.Mode(i) == st.Mode {
			tabs = append(tabs, highlightStyle.Bold(true).Render("["+name+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+name+" "))
		}
	}
	title := titleStyle.Render(st.Title())
	modes := strings.Join(tabs, " ")
	gap := max(1, c.width-lipgloss.Width(title)-lipgloss.Width(modes)-2)
	return " " + title + strings.Repeat(" ", gap) + modes
}

func (c calendarModel) colWidth(cols, reserved int) int {
	return max(4, (c.width-reserved)/cols)
}

func (c calendarModel) renderMonth(st view.State, now time.Time) string {
	days := st.VisibleDays()
	grouped := calendar.GroupByDay(st.Events, days)
	weeks := len(days) / 7
	colW := c.colWidth(7, 2)

	cellH := max(2, (c.height-4)/max(1, weeks))
	// one line for the day number, the rest for events and "+N more"
	eventLines := cellH - 1

	var names []string
	for _, n := range st.Config.WeekdayNames() {
		names = append(names, weekdayStyle.Width(colW).Render(n))
	}
	rows := []string{" " + lipgloss.JoinHorizontal(lipgloss.Top, names...)}

	for w := 0; w < weeks; w++ {
		var cells []string
		for _, d := range days[w*7 : w*7+7] {
			cells = append(cells, c.renderMonthCell(d, st, grouped[d.Format(store.DateLayout)], now, colW, cellH, eventLines))
		}
		rows = append(rows, " "+lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (c calendarModel) renderMonthCell(d time.Time, st view.State, events []store.Event, now time.Time, w, h, eventLines int) string {
	num := fmt.Sprintf("%2d", d.Day())
	switch {
	case calendar.SameDay(d, now):
		num = todayStyle.Render(num)
	case !calendar.InMonth(d, st.Anchor):
		num = outsideCellStyle.Render(num)
	}
	lines := []string{num}

	shown, more := calendar.Summarize(events, calendar.MonthCellLimit)
	// keep room for the "+N more" line when the cell is short
	if len(shown) > eventLines || (more > 0 && len(shown) >= eventLines) {
		keep := max(0, eventLines-1)
		if keep > len(shown) {
			keep = len(shown)
		}
		more += len(shown) - keep
		shown = shown[:keep]
	}
	for _, e := range shown {
		lines = append(lines, eventLine(e, w-1))
	}
	if more > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("+%d more", more)))
	}

	style := cellStyle
	if !calendar.InMonth(d, st.Anchor) {
		style = outsideCellStyle
	}
	if calendar.SameDay(d, c.cursor) {
		style = cursorCellStyle
	}
	return style.Width(w).Height(h).MaxHeight(h).Render(strings.Join(lines, "\n"))
}

func eventLine(e store.Event, w int) string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("●")
	label := e.Title
	if e.Time != nil {
		label = *e.Time + " " + label
	}
	return dot + " " + truncate(label, w-2)
}

type gridCell struct {
	text  string
	color string
	set   bool
	more  int // further events starting in this row
}

// layoutDay places the timed events of one day on a rows-per-hour grid.
// Every placed event covers at least one row.
func layoutDay(events []store.Event, rowsPerHour int) []gridCell {
	total := 24 * rowsPerHour
	cells := make([]gridCell, total)
	for _, e := range events {
		p, ok := calendar.Position(e, float64(rowsPerHour))
		if !ok {
			continue
		}
		start := int(math.Floor(p.Top))
		if start >= total {
			continue
		}
		height := max(1, int(math.Round(p.Height)))
		end := min(total, start+height)
		for r := start; r < end; r++ {
			if !cells[r].set {
				cells[r] = gridCell{color: e.Color, set: true}
			}
		}
		if cells[start].text != "" {
			cells[start].more++
			continue
		}
		cells[start].text = *e.Time + " " + e.Title
		cells[start].color = e.Color
	}
	return cells
}

func (c calendarModel) renderHours(st view.State, now time.Time) string {
	days := st.VisibleDays()
	grouped := calendar.GroupByDay(st.Events, days)
	labelW := 6
	colW := c.colWidth(len(days), labelW+2)

	var head []string
	var allDay []string
	columns := make([][]gridCell, len(days))
	for i, d := range days {
		label := d.Format("Mon 2")
		if st.Mode == calendar.ModeDay {
			label = d.Format("Monday 2")
		}
		style := weekdayStyle.Width(colW)
		if calendar.SameDay(d, now) {
			style = todayStyle.Width(colW)
		}
		head = append(head, style.Render(label))

		evs := grouped[d.Format(store.DateLayout)]
		strip := ""
		if untimed := calendar.Untimed(evs); len(untimed) > 0 {
			strip = eventLine(untimed[0], colW-1)
			if len(untimed) > 1 {
				strip = truncate(untimed[0].Title, colW-6) + mutedStyle.Render(fmt.Sprintf(" +%d", len(untimed)-1))
			}
		}
		allDay = append(allDay, lipgloss.NewStyle().Width(colW).MaxHeight(1).Render(strip))
		columns[i] = layoutDay(evs, c.rowsPerHour)
	}

	rows := []string{
		strings.Repeat(" ", labelW+1) + lipgloss.JoinHorizontal(lipgloss.Top, head...),
		hourLabelStyle.Render(" all") + " " + lipgloss.JoinHorizontal(lipgloss.Top, allDay...),
	}

	end := c.scroll + c.gridRows()
	for _, h := range calendar.Hours() {
		for sub := 0; sub < c.rowsPerHour; sub++ {
			r := h*c.rowsPerHour + sub
			if r < c.scroll || r >= end {
				continue
			}
			label := ""
			if sub == 0 {
				label = fmt.Sprintf("%02d:00", h)
			}
			line := []string{hourLabelStyle.Render(label) + " "}
			for i, d := range days {
				line = append(line, c.renderGridCell(columns[i][r], d, r, colW))
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (c calendarModel) renderGridCell(cell gridCell, d time.Time, row, w int) string {
	selected := calendar.SameDay(d, c.cursor) && row/c.rowsPerHour == c.hour
	if cell.set {
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(cell.color)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Width(w - 1)
		if selected {
			style = style.Bold(true).Underline(true)
		}
		text := truncate(cell.text, w-1)
		if cell.more > 0 {
			suffix := fmt.Sprintf(" +%d", cell.more)
			text = truncate(cell.text, w-1-len(suffix)) + suffix
		}
		return style.Render(text) + " "
	}
	if selected {
		return cursorCellStyle.Width(w - 1).Render("") + " "
	}
	fill := " "
	if row%c.rowsPerHour == 0 {
		fill = "·"
	}
	return mutedStyle.Width(w).Render(fill)
}
