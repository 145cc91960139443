// Package tui is the terminal calendar client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calgrid/internal/config"
	"github.com/sadopc/calgrid/internal/export"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/view"
)

const requestTimeout = 10 * time.Second

var exportLabels = map[export.Format]string{
	export.FormatCSV:  "CSV",
	export.FormatJSON: "JSON",
	export.FormatICS:  "iCalendar",
}

// App is the root Bubble Tea model.
type App struct {
	store  store.EventStore
	logger *slog.Logger
	now    func() time.Time
	width  int
	height int

	state  view.State
	form   eventForm
	saving bool

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	calendar calendarModel
	agenda   agendaModel
	load     loadModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the client around es. cfgPath is where the settings tab
// saves; an empty path keeps changes in memory.
func NewApp(es store.EventStore, cfg config.Config, cfgPath string, logger *slog.Logger) App {
	if logger == nil {
		logger = slog.Default()
	}
	h := help.New()
	h.ShowAll = false

	now := time.Now()
	mode := cfg.Mode()
	st := view.New(cfg.Calendar(), mode, now)
	st.Anchor = anchorFor(mode, st.Anchor)

	return App{
		store:      es,
		logger:     logger,
		now:        time.Now,
		state:      st,
		activeView: viewCalendar,
		calendar:   newCalendarModel(now, cfg.RowsPerHour),
		agenda:     newAgendaModel(),
		load:       newLoadModel(),
		settings:   newSettingsModel(cfg, cfgPath),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.fetch()
}

// fetch loads the events of the visible range.
func (a App) fetch() tea.Cmd {
	es, filter := a.store, a.state.Filter()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		events, err := view.Fetch(ctx, es, filter)
		return eventsLoadedMsg{events: events, err: err}
	}
}

// mutate executes req and refetches the visible range.
func (a App) mutate(req view.Request) tea.Cmd {
	es, filter := a.store, a.state.Filter()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		events, err := view.Execute(ctx, es, req, filter)
		return mutationDoneMsg{req: req, events: events, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.calendar.setSize(a.width, contentHeight)
		a.agenda.setSize(a.width, contentHeight)
		a.load.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.load.rebuild(a.state)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (a form) gets keys first.
		if a.form.active() {
			return a.updateForm(msg)
		}
		if a.activeView == viewSettings && a.settings.formActive {
			return a.updateActiveView(msg)
		}
		if a.activeView == viewAgenda && a.agenda.confirming {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewCalendar
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewAgenda
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewLoad
			a.load.rebuild(a.state)
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewLoad {
				a.load.rebuild(a.state)
			}
			return a, nil
		}
		return a.updateActiveView(msg)

	case eventsLoadedMsg:
		if msg.err != nil {
			a.logger.Error("fetch events failed", "error", msg.err)
			a.state = a.state.Failed(msg.err)
			return a, nil
		}
		a.state = a.state.Loaded(msg.events)
		a.agenda.clamp(len(a.state.Events))
		a.load.rebuild(a.state)
		return a, nil

	case requestMsg:
		a.saving = true
		a.status = ""
		return a, a.mutate(msg.req)

	case mutationDoneMsg:
		a.saving = false
		a.state = a.state.Apply(msg.req, msg.events, msg.err)
		switch {
		case errors.Is(msg.err, view.ErrRefetch):
			// stored, but the page is stale; never resubmit the draft
			a.logger.Warn("refetch after mutation failed", "kind", msg.req.Kind.String(), "id", msg.req.ID, "error", msg.err)
			a.status, a.statusErr = mutationStatus(msg.req.Kind), false
			return a, nil
		case msg.err != nil:
			a.logger.Error("event mutation failed", "kind", msg.req.Kind.String(), "id", msg.req.ID, "error", msg.err)
			if a.state.FormOpen {
				// the draft is kept so it can be corrected and resubmitted
				a.form = newEventForm(a.state)
				return a, a.form.form.Init()
			}
			return a, nil
		}
		a.logger.Debug("event mutation done", "kind", msg.req.Kind.String(), "id", msg.req.ID)
		a.agenda.clamp(len(a.state.Events))
		a.load.rebuild(a.state)
		a.status, a.statusErr = mutationStatus(msg.req.Kind), false
		return a, nil

	case configSavedMsg:
		a.settings, _ = a.settings.update(msg)
		a.state.Config = msg.cfg.Calendar()
		a.calendar.setRowsPerHour(msg.cfg.RowsPerHour)
		a.status, a.statusErr = "Settings saved", false
		return a, a.fetch()

	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = fmt.Sprintf("Exported %d events to %s", msg.count, msg.path), false
		a.exportPicking = false
		return a, nil
	}

	// Forms also need non-key messages (cursor blink, field init).
	if a.form.active() {
		return a.updateForm(msg)
	}
	return a.updateActiveView(msg)
}

func mutationStatus(k view.RequestKind) string {
	switch k {
	case view.RequestCreate:
		return "Event created"
	case view.RequestUpdate:
		return "Event updated"
	}
	return "Event deleted"
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := a.state
	var cmd tea.Cmd

	switch a.activeView {
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch a.activeView {
	case viewCalendar, viewLoad:
		a.calendar, a.state, cmd = a.calendar.update(km, a.state, a.now())
	case viewAgenda:
		a.agenda, a.state, cmd = a.agenda.update(km, a.state)
	}
	return a.afterTransition(before, cmd)
}

// afterTransition refetches when the visible range moved and opens the event
// form when the state asks for one.
func (a App) afterTransition(before view.State, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	bf, af := before.Filter(), a.state.Filter()
	if !bf.From.Equal(*af.From) || !bf.To.Equal(*af.To) || before.Mode != a.state.Mode {
		a.load.rebuild(a.state)
		cmds = append(cmds, a.fetch())
	}

	if a.state.FormOpen && !a.form.active() {
		a.status = ""
		a.form = newEventForm(a.state)
		cmds = append(cmds, a.form.form.Init())
	}
	return a, tea.Batch(cmds...)
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.form = eventForm{}
		a.state = a.state.Discard()
		return a, nil
	}

	form, cmd := a.form.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form.form = f
	}

	switch a.form.form.State {
	case huh.StateAborted:
		a.form = eventForm{}
		a.state = a.state.Discard()
		return a, nil
	case huh.StateCompleted:
		a.state.Form = a.form.draft()
		next, req, ok := a.state.Submit()
		a.state = next
		if !ok {
			// nothing to submit; reopen with the draft and any validation error
			a.form = newEventForm(a.state)
			return a, a.form.form.Init()
		}
		a.form = eventForm{}
		a.saving = true
		a.status = ""
		return a, a.mutate(req)
	}

	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.form.active():
		content = panelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(a.form.heading), "", a.form.form.View()),
		)
	case a.activeView == viewCalendar:
		content = a.calendar.view(a.state, a.now())
	case a.activeView == viewAgenda:
		content = a.agenda.view(a.state)
	case a.activeView == viewLoad:
		content = a.load.view(a.state)
	case a.activeView == viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("calgrid")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	var status string
	switch {
	case a.saving:
		status = warningStyle.Render(" saving…")
	case a.state.Err != nil:
		status = errorStyle.Render(" " + errorText(a.state.Err))
	case a.status != "" && a.statusErr:
		status = errorStyle.Render(" " + a.status)
	case a.status != "":
		status = successStyle.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(status)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

// errorText shortens store errors for the status line.
func errorText(err error) string {
	switch {
	case errors.Is(err, view.ErrRefetch):
		return "Saved, but " + err.Error()
	case errors.Is(err, store.ErrNotFound):
		return "Event not found (it may have been deleted elsewhere)"
	case errors.Is(err, store.ErrValidation):
		return err.Error()
	}
	return "Error: " + err.Error()
}

func (a App) renderExportPicker(_ int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+exportLabels[f]))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	es, now := a.store, a.now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		events, err := es.List(ctx, store.EventFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := export.DefaultFilename(format, now)
		if err := export.ToFile(format, events, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", exportLabels[format], err), isError: true}
		}
		return exportDoneMsg{path: path, count: len(events)}
	}
}
