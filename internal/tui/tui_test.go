package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/config"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/view"
)

var fixedNow = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, es store.EventStore) App {
	t.Helper()
	cfg := *config.DefaultConfig()
	a := NewApp(es, cfg, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.now = func() time.Time { return fixedNow }
	a.state = view.New(cfg.Calendar(), cfg.Mode(), fixedNow)
	a.state.Anchor = anchorFor(cfg.Mode(), fixedNow)
	a.calendar = newCalendarModel(fixedNow, cfg.RowsPerHour)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 48})
	return m.(App)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strp(s string) *string { return &s }

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// settle runs cmd and feeds the app's own result messages back into it.
// Commands produced by forms (cursor blink and the like) are not run.
func settle(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		return a
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			a = settle(t, a, c)
		}
	case eventsLoadedMsg, mutationDoneMsg, requestMsg, configSavedMsg, statusMsg, exportDoneMsg:
		var next tea.Cmd
		a, next = send(t, a, msg)
		if !a.form.active() {
			a = settle(t, a, next)
		}
	}
	return a
}

func mustCreate(t *testing.T, s *store.Store, f store.EventFields) *store.Event {
	t.Helper()
	e, err := s.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("create %q: %v", f.Title, err)
	}
	return e
}

// completeForm fills the open event form and marks it submitted.
func completeForm(t *testing.T, a App, fill func(f eventForm)) (App, tea.Cmd) {
	t.Helper()
	if !a.form.active() {
		t.Fatal("no form open")
	}
	fill(a.form)
	a.form.form.State = huh.StateCompleted
	m, cmd := a.updateForm(nil)
	return m.(App), cmd
}

// ============================================================
// Helpers
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 4 {
		t.Fatalf("expected 4 tabs, got %d", len(viewNames))
	}
	if viewNames[viewCalendar] != "Calendar" || viewNames[viewSettings] != "Settings" {
		t.Fatalf("unexpected tab order: %v", viewNames)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0m"},
		{15, "15m"},
		{60, "1h"},
		{90, "1h30m"},
		{480, "8h"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.mins); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
	if durationLabel(480) != "All day" || durationLabel(45) != "45m" {
		t.Fatal("unexpected duration labels")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Standup", 10); got != "Standup" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("Standup", 4); got != "Sta…" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("Standup", 0); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateClock(t *testing.T) {
	for _, ok := range []string{"", "09:00", "9:30", "23:59"} {
		if err := validateClock(ok); err != nil {
			t.Errorf("validateClock(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"9", "24:00", "12:60", "noon"} {
		if err := validateClock(bad); err == nil {
			t.Errorf("validateClock(%q) should fail", bad)
		}
	}
}

func TestValidateClockAgreesWithStore(t *testing.T) {
	for _, in := range []string{"09:00", "9:30", "9:5", "+9:30", "09:+5", "09:30:00", "24:00", " 7:45 "} {
		formErr := validateClock(in)
		f := store.EventFields{Title: "A", Date: date(2024, 3, 5), Time: strp(in)}
		storeErr := f.Validate()
		if (formErr == nil) != (storeErr == nil) {
			t.Errorf("%q: form err %v, store err %v", in, formErr, storeErr)
		}
	}
}

// ============================================================
// Grid layout
// ============================================================

func TestLayoutDay(t *testing.T) {
	events := []store.Event{
		{ID: 1, Title: "Planning", Date: date(2024, 3, 5), Time: strp("14:30"), Duration: 90, Color: "#10B981"},
		{ID: 2, Title: "Late", Date: date(2024, 3, 5), Time: strp("23:30"), Duration: 120},
		{ID: 3, Title: "Quick", Date: date(2024, 3, 5), Time: strp("08:00"), Duration: 15},
		{ID: 4, Title: "Offsite", Date: date(2024, 3, 5)},
	}

	cells := layoutDay(events, 2)
	if len(cells) != 48 {
		t.Fatalf("expected 48 rows, got %d", len(cells))
	}
	// 14:30 at two rows per hour starts on row 29 and covers three rows
	for r := 29; r < 32; r++ {
		if !cells[r].set || cells[r].color != "#10B981" {
			t.Fatalf("row %d should belong to Planning", r)
		}
	}
	if cells[28].set || cells[32].set {
		t.Fatal("Planning spills outside its rows")
	}
	if !strings.Contains(cells[29].text, "Planning") {
		t.Fatalf("title should be on the first row, got %q", cells[29].text)
	}
	// running past midnight is clamped to the grid
	if !cells[47].set {
		t.Fatal("late event should reach the last row")
	}
	// short events still get one row
	if !cells[16].set {
		t.Fatal("15 minute event should occupy one row")
	}
	for _, c := range cells {
		if strings.Contains(c.text, "Offsite") {
			t.Fatal("untimed events must not be placed on the grid")
		}
	}
}

func TestLayoutDayOverlapKeepsFirstLabel(t *testing.T) {
	events := []store.Event{
		{ID: 1, Title: "Standup", Date: date(2024, 3, 5), Time: strp("09:00"), Duration: 60, Color: "#10B981"},
		{ID: 2, Title: "Call", Date: date(2024, 3, 5), Time: strp("09:00"), Duration: 30, Color: "#EF4444"},
		{ID: 3, Title: "Review", Date: date(2024, 3, 5), Time: strp("09:30"), Duration: 60, Color: "#F59E0B"},
	}
	cells := layoutDay(events, 2)

	if !strings.Contains(cells[18].text, "Standup") || cells[18].more != 1 {
		t.Fatalf("row 18 = %+v, want Standup with one more", cells[18])
	}
	if cells[18].color != "#10B981" {
		t.Fatalf("first event keeps its color, got %s", cells[18].color)
	}
	// Review starts inside Standup's block and still gets its label
	if !strings.Contains(cells[19].text, "Review") || cells[19].more != 0 {
		t.Fatalf("row 19 = %+v, want Review", cells[19])
	}
	if !cells[20].set {
		t.Fatal("Review should extend past Standup")
	}
}

func TestAnchorFor(t *testing.T) {
	if got := anchorFor(calendar.ModeMonth, date(2024, 1, 31)); !got.Equal(date(2024, 1, 1)) {
		t.Fatalf("month anchor = %v", got)
	}
	if got := anchorFor(calendar.ModeWeek, date(2024, 1, 31)); !got.Equal(date(2024, 1, 31)) {
		t.Fatalf("week anchor = %v", got)
	}
}

// ============================================================
// App: loading and navigation
// ============================================================

func TestInitLoadsVisibleRange(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, store.EventFields{Title: "Standup", Date: date(2024, 3, 12), Time: strp("09:00")})
	mustCreate(t, s, store.EventFields{Title: "Far away", Date: date(2024, 6, 1)})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())

	if len(a.state.Events) != 1 || a.state.Events[0].Title != "Standup" {
		t.Fatalf("expected only the March event, got %+v", a.state.Events)
	}
	out := a.View()
	if !strings.Contains(out, "March 2024") {
		t.Fatal("month title missing from view")
	}
	if !strings.Contains(out, "Standup") {
		t.Fatal("event missing from month grid")
	}
}

func TestNavigateRefetches(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, store.EventFields{Title: "April fools", Date: date(2024, 4, 1)})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())

	a, cmd := send(t, a, press("]"))
	if !a.state.Anchor.Equal(date(2024, 4, 1)) {
		t.Fatalf("anchor = %v, want April 1", a.state.Anchor)
	}
	if !a.calendar.cursor.Equal(date(2024, 4, 5)) {
		t.Fatalf("cursor = %v, want April 5", a.calendar.cursor)
	}
	if cmd == nil {
		t.Fatal("navigation should refetch")
	}
	a = settle(t, a, cmd)
	if len(a.state.Events) != 1 {
		t.Fatalf("expected April event, got %d", len(a.state.Events))
	}

	a, _ = send(t, a, press("t"))
	if !a.state.Anchor.Equal(date(2024, 3, 1)) || !a.calendar.cursor.Equal(date(2024, 3, 5)) {
		t.Fatalf("today: anchor %v cursor %v", a.state.Anchor, a.calendar.cursor)
	}
}

func TestCursorLeavingPageMovesAnchor(t *testing.T) {
	a := newTestApp(t, newTestStore(t))
	a.calendar.cursor = date(2024, 3, 31)

	a, cmd := send(t, a, press("right"))
	if !a.calendar.cursor.Equal(date(2024, 4, 1)) {
		t.Fatalf("cursor = %v", a.calendar.cursor)
	}
	// Apr 1 is still on the March grid (trailing days), so no page change
	if !a.state.Anchor.Equal(date(2024, 3, 1)) || cmd != nil {
		t.Fatalf("anchor moved too early: %v", a.state.Anchor)
	}

	a.calendar.cursor = date(2024, 4, 6)
	a, cmd = send(t, a, press("down"))
	if !a.state.Anchor.Equal(date(2024, 4, 1)) || cmd == nil {
		t.Fatalf("anchor should follow the cursor into April, got %v", a.state.Anchor)
	}
}

func TestCycleView(t *testing.T) {
	a := newTestApp(t, newTestStore(t))

	a, _ = send(t, a, press("v"))
	if a.state.Mode != calendar.ModeWeek {
		t.Fatalf("mode = %v, want week", a.state.Mode)
	}
	if !strings.Contains(a.View(), "Mar 3 – Mar 9, 2024") {
		t.Fatal("week title missing")
	}

	a, _ = send(t, a, press("v"))
	if a.state.Mode != calendar.ModeDay || !strings.Contains(a.View(), "Tuesday, March 5, 2024") {
		t.Fatalf("expected day view, mode %v", a.state.Mode)
	}

	a, _ = send(t, a, press("v"))
	if a.state.Mode != calendar.ModeMonth || !a.state.Anchor.Equal(date(2024, 3, 1)) {
		t.Fatalf("back to month: mode %v anchor %v", a.state.Mode, a.state.Anchor)
	}
}

func TestHourCursorInWeekView(t *testing.T) {
	a := newTestApp(t, newTestStore(t))
	a, _ = send(t, a, press("v"))

	start := a.calendar.hour
	a, _ = send(t, a, press("down"))
	if a.calendar.hour != start+1 {
		t.Fatalf("hour = %d, want %d", a.calendar.hour, start+1)
	}
	a.calendar.hour = 23
	a, _ = send(t, a, press("down"))
	if a.calendar.hour != 23 {
		t.Fatal("hour should stop at 23")
	}
}

// ============================================================
// App: event form
// ============================================================

func TestCreateFromMonthCell(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, s)
	a.calendar.cursor = date(2024, 3, 12)

	a, _ = send(t, a, press("enter"))
	if !a.form.active() || !a.state.FormOpen || !a.state.Selected.Equal(date(2024, 3, 12)) {
		t.Fatalf("form not opened for the cursor date: %+v", a.state)
	}

	a, cmd := completeForm(t, a, func(f eventForm) {
		*f.title = "Standup"
		*f.clock = "09:00"
		*f.duration = 15
	})
	if cmd == nil || !a.saving {
		t.Fatal("submit should start a save")
	}
	a = settle(t, a, cmd)

	if a.state.FormOpen || a.form.active() {
		t.Fatal("form should close after a successful save")
	}
	if len(a.state.Events) != 1 || a.state.Events[0].Title != "Standup" || *a.state.Events[0].Time != "09:00" {
		t.Fatalf("unexpected events: %+v", a.state.Events)
	}
	if a.status != "Event created" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestCreateFromHourSlot(t *testing.T) {
	a := newTestApp(t, newTestStore(t))
	a, _ = send(t, a, press("v"))
	a.calendar.hour = 14

	a, _ = send(t, a, press("n"))
	if !a.form.active() || *a.form.clock != "14:00" {
		t.Fatalf("hour slot should prefill the time, got %q", *a.form.clock)
	}
}

func TestEnterOnOccupiedHourSlotEdits(t *testing.T) {
	s := newTestStore(t)
	standup := mustCreate(t, s, store.EventFields{Title: "Standup", Date: date(2024, 3, 5), Time: strp("09:15"), Duration: 15})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())
	a, _ = send(t, a, press("v"))
	a = settle(t, a, a.fetch())
	a.calendar.hour = 9

	a, _ = send(t, a, press("enter"))
	if !a.form.active() || a.state.EditingID == nil || *a.state.EditingID != standup.ID {
		t.Fatalf("enter on the 09h slot should edit Standup, got %+v", a.state)
	}
	if *a.form.title != "Standup" || *a.form.clock != "09:15" {
		t.Fatalf("form not filled from the event: %q %q", *a.form.title, *a.form.clock)
	}

	a, _ = send(t, a, press("esc"))
	a.calendar.hour = 10
	a, _ = send(t, a, press("enter"))
	if !a.form.active() || a.state.EditingID != nil || *a.form.clock != "10:00" {
		t.Fatal("enter on an empty slot should start a new event")
	}
}

func TestEditFromMonthCell(t *testing.T) {
	s := newTestStore(t)
	first := mustCreate(t, s, store.EventFields{Title: "Offsite", Date: date(2024, 3, 5)})
	mustCreate(t, s, store.EventFields{Title: "Lunch", Date: date(2024, 3, 5), Time: strp("12:00")})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())
	a.calendar.cursor = date(2024, 3, 5)

	a, _ = send(t, a, press("e"))
	if !a.form.active() || a.state.EditingID == nil || *a.state.EditingID != first.ID {
		t.Fatalf("e should edit the first event of the day, got %+v", a.state.EditingID)
	}

	a, _ = send(t, a, press("esc"))
	a.calendar.cursor = date(2024, 3, 6)
	a, _ = send(t, a, press("e"))
	if a.form.active() {
		t.Fatal("e on an empty day should do nothing")
	}
}

// listFailingStore stores mutations but cannot list them back.
type listFailingStore struct {
	*store.Store
}

func (listFailingStore) List(context.Context, store.EventFilter) ([]store.Event, error) {
	return nil, errors.New("network down")
}

func TestRefetchFailureAfterCreateClosesForm(t *testing.T) {
	mem := newTestStore(t)
	a := newTestApp(t, listFailingStore{Store: mem})
	a.calendar.cursor = date(2024, 3, 12)

	a, _ = send(t, a, press("enter"))
	a, cmd := completeForm(t, a, func(f eventForm) { *f.title = "Standup" })
	a = settle(t, a, cmd)

	if a.state.FormOpen || a.form.active() {
		t.Fatal("a stored create must not leave the draft open for resubmission")
	}
	if !errors.Is(a.state.Err, view.ErrRefetch) {
		t.Fatalf("expected refetch error, got %v", a.state.Err)
	}
	if !strings.Contains(errorText(a.state.Err), "Saved") {
		t.Fatalf("status should say the event was saved: %q", errorText(a.state.Err))
	}

	all, err := mem.List(context.Background(), store.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one stored event, got %d", len(all))
	}
}

func TestEscDiscardsForm(t *testing.T) {
	a := newTestApp(t, newTestStore(t))
	a, _ = send(t, a, press("enter"))
	*a.form.title = "draft"

	a, _ = send(t, a, press("esc"))
	if a.form.active() || a.state.FormOpen || a.state.Form.Title != "" {
		t.Fatal("esc should discard the draft")
	}
}

func TestUpdateMissingEventKeepsDraft(t *testing.T) {
	s := newTestStore(t)
	e := mustCreate(t, s, store.EventFields{Title: "Retro", Date: date(2024, 3, 8)})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())
	a, _ = send(t, a, press("2"))
	a, _ = send(t, a, press("e"))
	if !a.form.active() || a.state.EditingID == nil || *a.state.EditingID != e.ID {
		t.Fatal("edit form not opened")
	}

	// deleted elsewhere while the form was open
	if err := s.Delete(context.Background(), e.ID); err != nil {
		t.Fatal(err)
	}

	a, cmd := completeForm(t, a, func(f eventForm) { *f.title = "Retro v2" })
	a = settle(t, a, cmd)

	if !errors.Is(a.state.Err, store.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", a.state.Err)
	}
	if !a.state.FormOpen || !a.form.active() || *a.form.title != "Retro v2" {
		t.Fatal("draft should survive a failed save")
	}
	if len(a.state.Events) != 1 || a.state.Events[0].Title != "Retro" {
		t.Fatal("event list must be unchanged on failure")
	}
	if !strings.Contains(a.View(), "Event not found") {
		t.Fatal("error should be shown in the status line")
	}
}

// ============================================================
// App: agenda
// ============================================================

func TestAgendaDeleteWithConfirmation(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, store.EventFields{Title: "Standup", Date: date(2024, 3, 12), Time: strp("09:00")})
	mustCreate(t, s, store.EventFields{Title: "Planning", Date: date(2024, 3, 12), Time: strp("14:00")})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())
	a, _ = send(t, a, press("2"))
	a, _ = send(t, a, press("down"))

	a, _ = send(t, a, press("d"))
	if !a.agenda.confirming {
		t.Fatal("delete should ask for confirmation")
	}
	a, cmd := send(t, a, press("n"))
	if a.agenda.confirming || cmd != nil {
		t.Fatal("any key other than y cancels")
	}

	a, _ = send(t, a, press("d"))
	a, cmd = send(t, a, press("y"))
	a = settle(t, a, cmd)

	if len(a.state.Events) != 1 || a.state.Events[0].Title != "Standup" {
		t.Fatalf("expected Planning deleted, got %+v", a.state.Events)
	}
	if a.agenda.cursor != 0 {
		t.Fatalf("cursor should be clamped, got %d", a.agenda.cursor)
	}
	if a.status != "Event deleted" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestAgendaView(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, store.EventFields{Title: "Standup", Date: date(2024, 3, 12), Time: strp("09:00"), Description: strp("daily")})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())
	a, _ = send(t, a, press("2"))

	out := a.View()
	for _, want := range []string{"Agenda", "Tuesday, Mar 12", "Standup", "09:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("agenda view missing %q", want)
		}
	}
}

// ============================================================
// App: load, settings, export
// ============================================================

func TestLoadTab(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, store.EventFields{Title: "Standup", Date: date(2024, 3, 12), Time: strp("09:00"), Duration: 30})
	mustCreate(t, s, store.EventFields{Title: "Planning", Date: date(2024, 3, 12), Time: strp("14:00"), Duration: 90})
	mustCreate(t, s, store.EventFields{Title: "Offsite", Date: date(2024, 3, 13)})

	a := newTestApp(t, s)
	a = settle(t, a, a.Init())
	a, _ = send(t, a, press("3"))

	if len(a.load.days) != len(a.state.VisibleDays()) {
		t.Fatalf("expected one bar per visible day, got %d", len(a.load.days))
	}
	for i, d := range a.load.days {
		want := 0
		if d.Equal(date(2024, 3, 12)) {
			want = 120
		}
		if a.load.minutes[i] != want {
			t.Fatalf("%s: minutes = %d, want %d", d.Format(store.DateLayout), a.load.minutes[i], want)
		}
	}
	if !strings.Contains(a.View(), "1 all-day events not counted") {
		t.Fatal("untimed events should be reported")
	}
}

func TestSettingsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := newTestApp(t, newTestStore(t))
	a.settings.path = path

	a.settings, _ = a.settings.showForm()
	*a.settings.weekStart = "monday"
	*a.settings.rowsPerHour = 2

	a = settle(t, a, a.settings.save())

	if a.state.Config.WeekStart != time.Monday {
		t.Fatal("week start not applied")
	}
	if a.calendar.rowsPerHour != 2 {
		t.Fatal("rows per hour not applied")
	}
	saved, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.WeekStart != "monday" || saved.RowsPerHour != 2 {
		t.Fatalf("not persisted: %+v", saved)
	}
}

func TestValidateAPIURL(t *testing.T) {
	for _, ok := range []string{"", "http://127.0.0.1:8080", "https://cal.example.com"} {
		if err := validateAPIURL(ok); err != nil {
			t.Errorf("validateAPIURL(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"localhost:8080", "ftp://x", "http://"} {
		if err := validateAPIURL(bad); err == nil {
			t.Errorf("validateAPIURL(%q) should fail", bad)
		}
	}
}

func TestExportPicker(t *testing.T) {
	a := newTestApp(t, newTestStore(t))

	a, _ = send(t, a, press("x"))
	if !a.exportPicking {
		t.Fatal("x should open the export picker")
	}
	a, _ = send(t, a, press("down"))
	a, _ = send(t, a, press("down"))
	a, _ = send(t, a, press("down"))
	if a.exportCursor != 2 {
		t.Fatalf("cursor = %d, want 2", a.exportCursor)
	}
	if !strings.Contains(a.View(), "iCalendar") {
		t.Fatal("picker should list iCalendar")
	}
	a, _ = send(t, a, press("esc"))
	if a.exportPicking {
		t.Fatal("esc should close the picker")
	}
}
