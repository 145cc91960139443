package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/store"
	"github.com/sadopc/calgrid/internal/view"
)

// loadModel charts the scheduled hours of every visible day.
type loadModel struct {
	width  int
	height int

	days    []time.Time
	minutes []int

	chart barchart.Model
}

func newLoadModel() loadModel {
	return loadModel{
		chart: barchart.New(60, 12),
	}
}

func (l *loadModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

// rebuild recomputes the per-day totals from st and redraws the chart.
func (l *loadModel) rebuild(st view.State) {
	l.days = st.VisibleDays()
	l.minutes = calendar.ScheduledMinutes(st.Events, l.days)

	chartWidth := max(20, l.width-8)
	chartHeight := 12
	if l.height > 30 {
		chartHeight = 16
	}
	l.chart = barchart.New(chartWidth, chartHeight)

	colors := dayColors(st.Events, l.days)
	var bars []barchart.BarData
	for i, d := range l.days {
		label := d.Format("Mon 02")
		if len(l.days) > 7 {
			label = d.Format("02")
		}
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if c := colors[i]; c != "" {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
		}
		if l.minutes[i] == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  d.Format(store.DateLayout),
				Value: float64(l.minutes[i]) / 60,
				Style: style,
			}},
		})
	}

	l.chart.PushAll(bars)
	l.chart.Draw()
}

// dayColors picks the color of the longest timed event of each day.
func dayColors(events []store.Event, days []time.Time) []string {
	grouped := calendar.GroupByDay(events, days)
	out := make([]string, len(days))
	for i, d := range days {
		longest := 0
		for _, e := range grouped[d.Format(store.DateLayout)] {
			if e.Time != nil && e.Duration > longest {
				longest = e.Duration
				out[i] = e.Color
			}
		}
	}
	return out
}

func (l loadModel) view(st view.State) string {
	w := l.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Load"), "  ", mutedStyle.Render(st.Title()),
	)

	total, busiest := 0, -1
	for i, m := range l.minutes {
		total += m
		if busiest < 0 || m > l.minutes[busiest] {
			busiest = i
		}
	}

	var summary []string
	summary = append(summary, fmt.Sprintf("  Scheduled: %s across %d days", highlightStyle.Render(formatHours(total)), len(l.days)))
	if busiest >= 0 && l.minutes[busiest] > 0 {
		summary = append(summary, fmt.Sprintf("  Busiest:   %s (%s)",
			highlightStyle.Render(l.days[busiest].Format("Mon Jan 2")), formatMinutes(l.minutes[busiest])))
	}
	if untimed := len(calendar.Untimed(st.Events)); untimed > 0 {
		summary = append(summary, mutedStyle.Render(fmt.Sprintf("  %d all-day events not counted", untimed)))
	}

	nav := mutedStyle.Render("  [/]: prev/next  v: month/week/day")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", l.chart.View(), "", strings.Join(summary, "\n"), "", nav,
		),
	)
}
