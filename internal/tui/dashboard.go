package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/tracker"
)

type dashboardModel struct {
	sh     *shared
	width  int
	height int
}

func newDashboardModel(sh *shared) dashboardModel {
	return dashboardModel{sh: sh}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Start), key.Matches(msg, keys.Enter):
			start := d.sh.ctl.State().ActiveTimer() == nil
			return d, func() tea.Msg { return navigateMsg{to: viewTracking, start: start} }
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(w),
		d.renderGoalPanel(w),
		d.renderTodayPanel(w),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	info := d.sh.ctl.State().ActiveTimer()
	if info == nil {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  NO ACTIVE TIMER"),
			mutedStyle.Render("Press s to start tracking"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var clock, indicator string
	switch info.Mode {
	case tracker.ModeManual:
		clock = formatSeconds(int64(info.ElapsedSeconds))
		indicator = "●  RUNNING"
	default:
		clock = formatPomodoroTime(d.sh.ctl.State().PhaseRemaining())
		indicator = "●  " + info.Phase.String()
	}

	style := timerRunningStyle
	if !info.Running {
		style = timerPausedStyle
		indicator = warningStyle.Render("⏸  PAUSED")
	} else {
		indicator = successStyle.Render(indicator)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		style.Width(w-6).Render(clock),
		indicator,
		highlightStyle.Render(info.Description),
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderGoalPanel(w int) string {
	total := report.DayTotal(d.sh.ctl.Log().All(), d.sh.today())
	goal := report.GoalProgress(total, d.sh.goalHours)

	title := titleStyle.Render("Daily Goal")
	summary := fmt.Sprintf("%s of %s", highlightStyle.Render(report.HumanDuration(total)),
		report.HumanDuration(goal.GoalSeconds))

	var state string
	if goal.Achieved {
		state = successStyle.Render("Goal achieved!")
	} else {
		state = mutedStyle.Render(report.HumanDuration(goal.RemainingSeconds) + " to go")
	}

	bar := progressBar(goal.Fraction, w-10, colorSuccess)
	pct := mutedStyle.Render(fmt.Sprintf(" %3.0f%%", goal.Fraction*100))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+summary,
		bar+pct,
		state,
	))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	entries := d.sh.ctl.Log().ForDate(d.sh.today())
	title := titleStyle.Render("Today")
	if len(entries) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries today"),
		))
	}

	// Most recent first, limited to what fits.
	limit := d.height - 16
	if limit < 3 {
		limit = 3
	}
	colors := d.sh.colors()
	rows := []string{title}
	for i := len(entries) - 1; i >= 0 && len(rows) <= limit; i-- {
		e := entries[i]
		marker := " "
		if e.IsPomodoro {
			marker = "◆"
		}
		row := fmt.Sprintf("  %s %s %s %-28s %-14s %s",
			dot(report.ProjectColor(colors, e.ProjectID, i)),
			e.Start().Local().Format("15:04"),
			marker,
			truncate(e.Description, 28),
			truncate(d.sh.projectName(e.ProjectID), 14),
			report.HumanDuration(e.DurationSeconds),
		)
		rows = append(rows, row)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// progressBar draws a horizontal bar filled to fraction.
func progressBar(fraction float64, width int, fill lipgloss.Color) string {
	if width < 1 {
		width = 1
	}
	n := int(math.Round(math.Max(0, math.Min(1, fraction)) * float64(width)))
	return lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", n)) +
		lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("░", width-n))
}
