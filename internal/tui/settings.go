package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calgrid/internal/config"
)

type settingsModel struct {
	width  int
	height int

	cfg        config.Config
	path       string // empty keeps changes in memory only
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	weekStart   *string
	defaultView *string
	rowsPerHour *int
	apiURL      *string
}

func newSettingsModel(cfg config.Config, path string) settingsModel {
	ws, dv, api := "", "", ""
	rph := 1
	return settingsModel{
		cfg:         cfg,
		path:        path,
		weekStart:   &ws,
		defaultView: &dv,
		rowsPerHour: &rph,
		apiURL:      &api,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case configSavedMsg:
		s.cfg = msg.cfg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.weekStart = s.cfg.WeekStart
	*s.defaultView = s.cfg.DefaultView
	*s.rowsPerHour = s.cfg.RowsPerHour
	*s.apiURL = s.cfg.APIURL

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).Value(s.weekStart),
			huh.NewSelect[string]().Title("Default view").
				Options(
					huh.NewOption("Month", "month"),
					huh.NewOption("Week", "week"),
					huh.NewOption("Day", "day"),
				).Value(s.defaultView),
			huh.NewSelect[int]().Title("Rows per hour").
				Description("Height of one hour in the week and day grids").
				Options(
					huh.NewOption("1", 1),
					huh.NewOption("2 (30 min)", 2),
					huh.NewOption("4 (15 min)", 4),
				).Value(s.rowsPerHour),
		).Title("Display"),
		huh.NewGroup(
			huh.NewInput().Title("Server URL").
				Description("Leave empty to use the local database. Applies on restart.").
				Value(s.apiURL).
				Validate(validateAPIURL),
		).Title("Storage"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	cfg := s.cfg
	cfg.WeekStart = *s.weekStart
	cfg.DefaultView = *s.defaultView
	cfg.RowsPerHour = *s.rowsPerHour
	cfg.APIURL = strings.TrimSpace(*s.apiURL)
	path := s.path
	return func() tea.Msg {
		if path != "" {
			if err := cfg.Save(path); err != nil {
				return statusMsg{text: fmt.Sprintf("Save settings: %v", err), isError: true}
			}
		} else {
			cfg.Normalize()
		}
		return configSavedMsg{cfg: cfg}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	server := s.cfg.APIURL
	if server == "" {
		server = "local database"
	}
	file := s.path
	if file == "" {
		file = "not saved"
	}

	items := []struct{ label, value string }{
		{"Week starts on", s.cfg.WeekStart},
		{"Default view", s.cfg.DefaultView},
		{"Rows per hour", fmt.Sprintf("%d", s.cfg.RowsPerHour)},
		{"Server", server},
		{"Database", s.cfg.DBPath},
		{"Config file", file},
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")
	for _, it := range items {
		label := lipgloss.NewStyle().Width(24).Render(it.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(it.value)))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func validateAPIURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}
