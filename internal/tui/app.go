package tui

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/clock"
	"github.com/sadopc/timekeeper/internal/export"
	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/sync"
	"github.com/sadopc/timekeeper/internal/theme"
	"github.com/sadopc/timekeeper/internal/tracker"
)

// Options configures NewApp. Store is required.
type Options struct {
	Store *store.Store
	// Clock defaults to the system clock.
	Clock clock.Clock
	// Scheduler defaults to an interval ticker posting onto the UI loop.
	Scheduler clock.Scheduler
	TickEvery time.Duration
	// Sync is nil when remote backup and calendar sync are unavailable.
	Sync    *sync.Dispatcher
	Entries []tracker.Entry
	// ExportDir defaults to the home directory.
	ExportDir string
}

// inbox collects controller effects and errors raised while a message is
// being handled. App.Update drains it afterwards.
type inbox struct {
	effects []tracker.Effect
	errs    []error
}

// App is the root Bubble Tea model.
type App struct {
	sh     *shared
	loop   *Loop
	inbox  *inbox
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	dashboard dashboardModel
	tracking  trackingModel
	entries   entriesModel
	projects  projectsModel
	reports   reportsModel
	events    eventsModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(o Options) App {
	loop := NewLoop()
	in := &inbox{}

	clk := o.Clock
	if clk == nil {
		clk = clock.System{}
	}
	sched := o.Scheduler
	if sched == nil {
		sched = clock.Interval{Every: o.TickEvery, Post: loop.Post}
	}

	ps, err := o.Store.LoadPomodoroSettings()
	if err != nil {
		log.Printf("loading pomodoro settings: %v", err)
		ps = tracker.DefaultSettings()
	}

	copts := tracker.Options{
		Clock:     clk,
		Scheduler: sched,
		Log:       tracker.NewEntryLog(o.Entries, o.Store),
		Settings:  ps,
		Recorder:  o.Store,
		OnEffect:  func(f tracker.Effect) { in.effects = append(in.effects, f) },
		OnError:   func(err error) { in.errs = append(in.errs, err) },
	}
	// A nil *Dispatcher must not become a non-nil interface.
	if o.Sync != nil {
		copts.Forwarder = o.Sync
	}

	sh := &shared{
		store: o.Store,
		ctl:   tracker.NewController(copts),
		sync:  o.Sync,
	}
	sh.reloadSettings()

	exportDir := o.ExportDir
	if exportDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			exportDir = home
		} else {
			exportDir = "."
		}
	}

	h := help.New()
	h.ShowAll = false

	return App{
		sh:         sh,
		loop:       loop,
		inbox:      in,
		activeView: viewDashboard,
		exportDir:  exportDir,
		dashboard:  newDashboardModel(sh),
		tracking:   newTrackingModel(sh),
		entries:    newEntriesModel(sh),
		projects:   newProjectsModel(sh),
		reports:    newReportsModel(sh),
		events:     newEventsModel(sh),
		settings:   newSettingsModel(sh),
		help:       h,
	}
}

// reloadSettings re-reads the goal and theme settings and applies the
// theme palette.
func (s *shared) reloadSettings() {
	s.goalHours = s.store.DailyGoalHours()
	s.unlocked = theme.Normalize(s.store.GetList(store.KeyThemeUnlocked))
	s.themeID = theme.Selected(s.store.GetString(store.KeyThemeSelected), s.unlocked)
	applyPalette(theme.Resolve(s.themeID).Palette)
}

// Controller exposes the timer controller, mainly for tests.
func (a App) Controller() *tracker.Controller { return a.sh.ctl }

// Close stops the timers. The program must have exited.
func (a App) Close() {
	a.sh.ctl.Close()
	a.loop.Stop()
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{loadProjects(a.sh.store), a.loop.wait()}
	if a.sh.sync != nil {
		cmds = append(cmds, a.sh.sync.WaitForResult())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	drained := a.drain()
	return a, tea.Batch(cmd, drained)
}

// drain turns queued controller effects into navigation and status text.
func (a *App) drain() tea.Cmd {
	var cmds []tea.Cmd
	for len(a.inbox.effects) > 0 || len(a.inbox.errs) > 0 {
		effects, errs := a.inbox.effects, a.inbox.errs
		a.inbox.effects, a.inbox.errs = nil, nil

		for _, err := range errs {
			log.Printf("timekeeper: %v", err)
			a.setStatus(err.Error(), true)
		}
		for _, f := range effects {
			switch f := f.(type) {
			case tracker.Navigate:
				to := viewDashboard
				if f.To == tracker.DestTracking {
					to = viewTracking
				}
				cmds = append(cmds, a.switchView(to))
			case tracker.LogEntry:
				a.setStatus(fmt.Sprintf("Logged %q (%s)", f.Entry.Description, report.HumanDuration(f.Entry.DurationSeconds)), false)
			case tracker.SessionStarted:
				a.setStatus(fmt.Sprintf("Pomodoro started: %d min focus", f.Settings.FocusDurationMinutes), false)
			case tracker.PhaseChanged:
				if f.Completed {
					a.setStatus(fmt.Sprintf("%s complete. %s next", f.From.Label(), f.To.Label()), false)
				} else {
					a.setStatus(fmt.Sprintf("Skipped %s", f.From.Label()), false)
				}
			case tracker.SessionEnded:
				a.setStatus(fmt.Sprintf("Pomodoro ended (%s): %d focus cycles", f.Reason, f.Completed), false)
			}
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
}

// switchView changes the active view, leaving focus mode when the
// tracking view is left.
func (a *App) switchView(to viewState) tea.Cmd {
	if a.activeView == viewTracking && to != viewTracking && a.sh.ctl.State().FocusMode {
		a.sh.ctl.Dispatch(tracker.ExitFocusMode{})
	}
	a.activeView = to
	switch to {
	case viewProjects:
		return loadProjects(a.sh.store)
	case viewReports:
		return a.reports.refresh()
	}
	return nil
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tracking.setSize(a.width, contentHeight)
		a.entries.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.events.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case runMsg:
		msg.fn()
		return a, a.loop.wait()

	case tea.KeyMsg:
		if a.sh.ctl.State().FocusMode {
			return a.updateFocusMode(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		// A child form captures all input.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Focus):
			a.sh.ctl.Dispatch(tracker.EnterFocusMode{OnTrackingView: a.activeView == viewTracking})
			if !a.sh.ctl.State().FocusMode {
				a.setStatus("Focus mode needs a running timer on the Tracking view", true)
			}
			return a, nil
		case key.Matches(msg, keys.Tab):
			return a, a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}
		for i, b := range []key.Binding{keys.Tab1, keys.Tab2, keys.Tab3, keys.Tab4, keys.Tab5, keys.Tab6, keys.Tab7} {
			if key.Matches(msg, b) {
				return a, a.switchView(viewState(i))
			}
		}

	case navigateMsg:
		cmd := a.switchView(msg.to)
		if msg.start && msg.to == viewTracking {
			var formCmd tea.Cmd
			a.tracking, formCmd = a.tracking.showStartForm()
			cmd = tea.Batch(cmd, formCmd)
		}
		return a, cmd

	case projectsDataMsg:
		a.sh.projects = msg.projects
		var cmd tea.Cmd
		a.projects, cmd = a.projects.update(msg)
		return a, cmd

	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case restoredMsg:
		if err := a.sh.ctl.Log().Replace(msg.snap.Tasks); err != nil {
			log.Printf("restoring entries: %v", err)
			a.setStatus(fmt.Sprintf("Restoring entries: %v", err), true)
		} else {
			a.setStatus(msg.status, false)
		}
		a.sh.ctl.Dispatch(tracker.ApplySettings{Settings: msg.snap.PomodoroSettings})
		a.sh.reloadSettings()
		return a, loadProjects(a.sh.store)

	case settingsChangedMsg:
		a.sh.reloadSettings()
		return a, nil

	case sync.ResultMsg:
		if msg.Err != nil {
			a.setStatus(remoteError("Calendar", msg.Err).text, true)
		} else if msg.Status != "" {
			a.setStatus(msg.Status, false)
		}
		return a, a.sh.sync.WaitForResult()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		return a, nil
	}

	return a.updateActiveView(msg)
}

// updateFocusMode handles keys while the full-screen timer is shown.
func (a App) updateFocusMode(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Back):
		a.sh.ctl.Dispatch(tracker.PresentationChanged{Fullscreen: false})
	case key.Matches(msg, keys.Focus):
		a.sh.ctl.Dispatch(tracker.ExitFocusMode{})
	case key.Matches(msg, keys.Pause), key.Matches(msg, keys.Stop), key.Matches(msg, keys.Skip):
		var cmd tea.Cmd
		a.tracking, cmd = a.tracking.update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTracking:
		a.tracking, cmd = a.tracking.update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewEvents:
		a.events, cmd = a.events.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTracking:
		return a.tracking.formActive
	case viewEntries:
		return a.entries.formActive
	case viewProjects:
		return a.projects.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.sh.ctl.State().FocusMode {
		return a.tracking.focusView(a.width, a.height)
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTracking:
		content = a.tracking.view()
	case viewEntries:
		content = a.entries.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	case viewEvents:
		content = a.events.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
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

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timekeeper")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

// timerIndicator summarises the active timer for the footer.
func (a App) timerIndicator() string {
	st := a.sh.ctl.State()
	info := st.ActiveTimer()
	if info == nil {
		return ""
	}
	if info.Mode == tracker.ModePomodoro {
		text := fmt.Sprintf(" 🍅 %s %s", info.Phase.Label(), formatPomodoroTime(st.PhaseRemaining()))
		if !info.Running {
			return warningStyle.Render(text + " ⏸")
		}
		if info.Phase.IsBreak() {
			return breakStyle.Render(text)
		}
		return focusStyle.Render(text)
	}
	if !info.Running {
		return warningStyle.Render(" ⏸ " + formatSeconds(int64(info.ElapsedSeconds)))
	}
	return successStyle.Render(" ● " + formatSeconds(int64(info.ElapsedSeconds)))
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	right := a.timerIndicator() + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []export.Format{export.CSV, export.JSON}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	entries := a.sh.ctl.Log().All()
	projects := a.sh.projects
	now := a.sh.ctl.Now()
	dir := a.exportDir
	return func() tea.Msg {
		path, err := export.Write(f, entries, projects, dir, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
