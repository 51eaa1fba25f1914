package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/report"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	sh     *shared
	width  int
	height int

	mode   reportMode
	offset int // 7-day blocks or weeks back from today

	sessions int
	cycles   int
}

func newReportsModel(sh *shared) reportsModel {
	return reportsModel{sh: sh}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	sessions int
	cycles   int
}

// refresh loads the pomodoro session stats for the visible range.
func (r reportsModel) refresh() tea.Cmd {
	from, to := r.dateRange()
	s := r.sh.store
	return func() tea.Msg {
		sessions, cycles, err := s.GetPomodoroStats(from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Loading stats: %v", err), isError: true}
		}
		return reportsDataMsg{sessions: sessions, cycles: cycles}
	}
}

// dateRange returns [from, to) in UTC days.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := r.sh.ctl.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch r.mode {
	case reportWeekly:
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*r.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.sessions = msg.sessions
		r.cycles = msg.cycles
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r reportsModel) days() []report.DaySlice {
	from, to := r.dateRange()
	return report.ByDay(r.sh.ctl.Log().All(), from, to.AddDate(0, 0, -1))
}

func (r reportsModel) buildChart(days []report.DaySlice) barchart.Model {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}
	chart := barchart.New(chartWidth, chartHeight)

	colors := r.sh.colors()
	ids := report.ProjectIDs(days)

	var bars []barchart.BarData
	for _, d := range days {
		label := d.Date
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			label = t.Format("Mon 02")
		}

		var values []barchart.BarValue
		for i, id := range ids {
			secs := d.ByProject[id]
			if secs == 0 {
				continue
			}
			color := report.ProjectColor(colors, id, i)
			values = append(values, barchart.BarValue{
				Name:  r.projectLabel(id),
				Value: float64(secs) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(color)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart
}

func (r reportsModel) projectLabel(id string) string {
	if id == "" {
		return "No project"
	}
	return r.sh.projectName(id)
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s – %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	days := r.days()
	nav := mutedStyle.Render("  ←/→: navigate  enter: switch range")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			r.renderTotals(days), "",
			r.buildChart(days).View(), "",
			r.renderLegend(days), "",
			nav,
		),
	)
}

func (r reportsModel) renderTotals(days []report.DaySlice) string {
	all := report.Totals(r.sh.ctl.Log().All(), len(r.sh.projects))

	var period int64
	for _, d := range days {
		period += d.Total
	}

	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), highlightStyle.Bold(true).Render(value))
	}
	gap := "    "
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("This period", report.HumanDuration(period)), gap,
		cell("All time", report.HumanDuration(all.TrackedSeconds)), gap,
		cell("Pomodoros", fmt.Sprint(all.PomodorosCompleted)), gap,
		cell("Sessions", fmt.Sprintf("%d (%d cycles)", r.sessions, r.cycles)), gap,
		cell("Projects", fmt.Sprint(all.Projects)), gap,
		cell("Entries", fmt.Sprint(all.Entries)),
	)
}

func (r reportsModel) renderLegend(days []report.DaySlice) string {
	colors := r.sh.colors()
	var items []string
	for i, id := range report.ProjectIDs(days) {
		items = append(items, fmt.Sprintf("%s %s", dot(report.ProjectColor(colors, id, i)), r.projectLabel(id)))
	}
	if len(items) == 0 {
		return mutedStyle.Render("  No data for this period")
	}
	return "  " + strings.Join(items, "  ")
}
