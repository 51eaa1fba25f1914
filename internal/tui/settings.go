package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/sync"
	"github.com/sadopc/timekeeper/internal/tracker"
)

const authHint = "run `timekeeper auth <token>` first"

// remoteTimeout bounds backup, restore and calendar calls started here.
const remoteTimeout = 60 * time.Second

type settingsForm struct {
	focus, short, long, cycles string
	goal                       string
	driveBackup, calendarSync  bool
}

type settingsModel struct {
	sh     *shared
	width  int
	height int

	formActive bool
	form       *huh.Form
	values     *settingsForm // pointer so huh bindings survive value copies
}

func newSettingsModel(sh *shared) settingsModel {
	return settingsModel{sh: sh, values: &settingsForm{}}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(km, keys.Enter):
		return s.showForm()
	case key.Matches(km, keys.Backup):
		return s, s.backup()
	case key.Matches(km, keys.Restore):
		return s, s.restore()
	case key.Matches(km, keys.Calendar):
		return s, s.ensureCalendar()
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	ps := s.sh.ctl.State().Settings
	*s.values = settingsForm{
		focus:        strconv.Itoa(ps.FocusDurationMinutes),
		short:        strconv.Itoa(ps.ShortBreakDurationMinutes),
		long:         strconv.Itoa(ps.LongBreakDurationMinutes),
		cycles:       strconv.Itoa(ps.CyclesPerLongBreak),
		goal:         strconv.FormatFloat(s.sh.goalHours, 'f', -1, 64),
		driveBackup:  s.sh.store.GetBool(store.KeyDriveBackup),
		calendarSync: s.sh.store.GetBool(store.KeyCalendarSync),
	}
	v := s.values

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(&v.focus).Validate(positiveInt),
			huh.NewInput().Title("Short break (min)").Value(&v.short).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(&v.long).Validate(positiveInt),
			huh.NewInput().Title("Focus cycles before long break").Value(&v.cycles).Validate(positiveInt),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(&v.goal).Validate(positiveFloat),
			huh.NewConfirm().Title("Back up to Google Drive").Value(&v.driveBackup),
			huh.NewConfirm().Title("Sync entries to Google Calendar").Value(&v.calendarSync),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		s.form = nil
		return s, s.save()
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

// save persists the form and applies the pomodoro durations to the
// running engine.
func (s settingsModel) save() tea.Cmd {
	v := s.values
	atoi := func(str string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(str))
		return n
	}
	ps := tracker.Settings{
		FocusDurationMinutes:      atoi(v.focus),
		ShortBreakDurationMinutes: atoi(v.short),
		LongBreakDurationMinutes:  atoi(v.long),
		CyclesPerLongBreak:        atoi(v.cycles),
	}
	if err := s.sh.store.SavePomodoroSettings(ps); err != nil {
		return errorCmd("Saving settings", err)
	}
	s.sh.ctl.Dispatch(tracker.ApplySettings{Settings: ps})

	goal, _ := strconv.ParseFloat(strings.TrimSpace(v.goal), 64)
	if err := s.sh.store.SetDailyGoalHours(goal); err != nil {
		return errorCmd("Saving goal", err)
	}

	wasSyncing := s.sh.store.GetBool(store.KeyCalendarSync)
	if err := s.sh.store.SetBool(store.KeyDriveBackup, v.driveBackup); err != nil {
		return errorCmd("Saving settings", err)
	}
	if err := s.sh.store.SetBool(store.KeyCalendarSync, v.calendarSync); err != nil {
		return errorCmd("Saving settings", err)
	}

	cmds := []tea.Cmd{
		func() tea.Msg { return settingsChangedMsg{} },
		statusCmd("Settings saved", false),
	}
	if v.calendarSync && !wasSyncing {
		cmds = append(cmds, s.ensureCalendar())
	}
	return tea.Sequence(cmds...)
}

func remoteError(prefix string, err error) statusMsg {
	if errors.Is(err, sync.ErrNotAuthenticated) {
		return statusMsg{text: fmt.Sprintf("%s: not signed in, %s", prefix, authHint), isError: true}
	}
	if errors.Is(err, sync.ErrDisabled) {
		return statusMsg{text: fmt.Sprintf("%s: switched off in settings", prefix), isError: true}
	}
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}

func (s settingsModel) backup() tea.Cmd {
	d := s.sh.sync
	if d == nil {
		return statusCmd("Backup is not configured", true)
	}
	entries := s.sh.ctl.Log().All()
	now := s.sh.ctl.Now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		status, err := d.Backup(ctx, entries, now)
		if err != nil {
			return remoteError("Backup", err)
		}
		return statusMsg{text: status}
	}
}

func (s settingsModel) restore() tea.Cmd {
	d := s.sh.sync
	if d == nil {
		return statusCmd("Restore is not configured", true)
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		snap, status, err := d.Restore(ctx)
		if err != nil {
			return remoteError("Restore", err)
		}
		return restoredMsg{snap: snap, status: status}
	}
}

func (s settingsModel) ensureCalendar() tea.Cmd {
	d := s.sh.sync
	if d == nil {
		return statusCmd("Calendar sync is not configured", true)
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		id, err := d.EnsureCalendar(ctx)
		if err != nil {
			return remoteError("Calendar", err)
		}
		return statusMsg{text: "Calendar ready: " + id}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	ps := s.sh.ctl.State().Settings
	onOff := func(b bool) string {
		if b {
			return successStyle.Render("on")
		}
		return mutedStyle.Render("off")
	}
	account := mutedStyle.Render("not configured")
	if s.sh.sync != nil {
		if s.sh.sync.Authenticated() {
			account = successStyle.Render("signed in")
		} else {
			account = warningStyle.Render("signed out (" + authHint + ")")
		}
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(30).Render(label), value)
	}
	rows := []string{
		title, "",
		row("Focus", highlightStyle.Render(fmt.Sprintf("%d min", ps.FocusDurationMinutes))),
		row("Short break", highlightStyle.Render(fmt.Sprintf("%d min", ps.ShortBreakDurationMinutes))),
		row("Long break", highlightStyle.Render(fmt.Sprintf("%d min", ps.LongBreakDurationMinutes))),
		row("Cycles before long break", highlightStyle.Render(strconv.Itoa(ps.CyclesPerLongBreak))),
		row("Daily goal", highlightStyle.Render(fmt.Sprintf("%g hours", s.sh.goalHours))),
		"",
		row("Google account", account),
		row("Drive backup", onOff(s.sh.store.GetBool(store.KeyDriveBackup))),
		row("Calendar sync", onOff(s.sh.store.GetBool(store.KeyCalendarSync))),
	}
	if id := s.sh.store.GetString(store.KeyCalendarID); id != "" {
		rows = append(rows, row("Calendar", mutedStyle.Render(id)))
	}
	rows = append(rows, "",
		mutedStyle.Render("  enter: edit  B: back up now  R: restore  C: connect calendar"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
