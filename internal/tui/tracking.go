package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/tracker"
)

const (
	modeManual   = "manual"
	modePomodoro = "pomodoro"
)

type trackingModel struct {
	sh     *shared
	width  int
	height int

	formActive bool
	form       *huh.Form
	formType   string // "start", "describe", "project"

	// Form field pointers (survive value copies)
	formDesc    *string
	formProject *string
	formMode    *string
}

func newTrackingModel(sh *shared) trackingModel {
	desc, project, mode := "", "", modeManual
	return trackingModel{
		sh:          sh,
		formDesc:    &desc,
		formProject: &project,
		formMode:    &mode,
	}
}

func (t *trackingModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func projectOptions(projects []store.Project) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("No project", "")}
	for _, p := range projects {
		opts = append(opts, huh.NewOption(p.Name, p.ID))
	}
	return opts
}

func (t trackingModel) update(msg tea.Msg) (trackingModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	ctl := t.sh.ctl
	st := ctl.State()
	switch {
	case st.Manual != nil:
		switch {
		case key.Matches(km, keys.Pause):
			ctl.Dispatch(tracker.ToggleManualPause{})
		case key.Matches(km, keys.Stop):
			ctl.Dispatch(tracker.StopManual{})
		case key.Matches(km, keys.Rename):
			return t.showDescribeForm(st.Manual.Description)
		case key.Matches(km, keys.Assign):
			return t.showProjectForm(st.Manual.ProjectID)
		}

	case st.PomodoroActive():
		switch {
		case key.Matches(km, keys.Pause):
			if st.Pomodoro.Running {
				ctl.Dispatch(tracker.PausePomodoro{})
			} else {
				ctl.Dispatch(tracker.ResumePomodoro{})
			}
		case key.Matches(km, keys.Stop):
			ctl.Dispatch(tracker.StopPomodoro{})
		case key.Matches(km, keys.Skip):
			if st.Pomodoro.Phase.IsBreak() {
				ctl.Dispatch(tracker.SkipBreak{})
			}
		}

	default:
		switch {
		case key.Matches(km, keys.Start), key.Matches(km, keys.New), key.Matches(km, keys.Enter):
			return t.showStartForm()
		}
	}
	return t, nil
}

func (t trackingModel) showStartForm() (trackingModel, tea.Cmd) {
	*t.formDesc = ""
	*t.formProject = ""
	*t.formMode = modeManual
	t.formType = "start"

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What are you working on?").Value(t.formDesc),
			huh.NewSelect[string]().Title("Project").Options(projectOptions(t.sh.projects)...).Value(t.formProject),
			huh.NewSelect[string]().Title("Timer").
				Options(
					huh.NewOption("Manual stopwatch", modeManual),
					huh.NewOption("Pomodoro", modePomodoro),
				).Value(t.formMode),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t trackingModel) showDescribeForm(current string) (trackingModel, tea.Cmd) {
	*t.formDesc = current
	t.formType = "describe"
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(t.formDesc),
		),
	).WithShowHelp(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t trackingModel) showProjectForm(current string) (trackingModel, tea.Cmd) {
	*t.formProject = current
	t.formType = "project"
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Project").Options(projectOptions(t.sh.projects)...).Value(t.formProject),
		),
	).WithShowHelp(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t trackingModel) updateForm(msg tea.Msg) (trackingModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		t.submitForm()
		return t, nil
	}
	return t, cmd
}

func (t trackingModel) submitForm() {
	ctl := t.sh.ctl
	switch t.formType {
	case "start":
		if *t.formMode == modePomodoro {
			ctl.Dispatch(tracker.StartFocus{Description: *t.formDesc, ProjectID: *t.formProject})
		} else {
			ctl.Dispatch(tracker.StartManual{Description: *t.formDesc, ProjectID: *t.formProject})
		}
	case "describe":
		ctl.Dispatch(tracker.UpdateManualDescription{Description: *t.formDesc})
	case "project":
		ctl.Dispatch(tracker.UpdateManualProject{ProjectID: *t.formProject})
	}
}

func (t trackingModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("Start Tracking")
		switch t.formType {
		case "describe":
			title = titleStyle.Render("Edit Description")
		case "project":
			title = titleStyle.Render("Change Project")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()))
	}

	st := t.sh.ctl.State()
	switch {
	case st.Manual != nil:
		return t.renderManual(st, w)
	case st.PomodoroActive():
		return t.renderPomodoro(st, w)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Tracking"),
		"",
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("Ready to start"),
		"",
		mutedStyle.Render("s: start manual or pomodoro timer"),
	)
	return panelStyle.Width(w).Render(content)
}

func (t trackingModel) renderManual(st tracker.State, w int) string {
	m := st.Manual
	clock := timerRunningStyle.Width(w - 6).Render(formatSeconds(int64(m.ElapsedSeconds)))
	indicator := successStyle.Render("●  RUNNING")
	if !m.Running {
		clock = timerPausedStyle.Width(w - 6).Render(formatSeconds(int64(m.ElapsedSeconds)))
		indicator = warningStyle.Render("⏸  PAUSED")
	}

	desc := m.Description
	if strings.TrimSpace(desc) == "" {
		desc = tracker.UntitledDescription
	}
	project := mutedStyle.Render("No project")
	if m.ProjectID != "" {
		project = dot(report.ProjectColor(t.sh.colors(), m.ProjectID, 0)) + " " + t.sh.projectName(m.ProjectID)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Manual Timer"),
		"",
		clock,
		indicator,
		"",
		highlightStyle.Render(desc),
		project,
		"",
		mutedStyle.Render("space: pause/resume  x: stop & log  d: description  p: project  f: focus"),
	)
	return activePanelStyle.Width(w).Render(content)
}

func (t trackingModel) renderPomodoro(st tracker.State, w int) string {
	p := st.Pomodoro
	remaining := formatPomodoroTime(st.PhaseRemaining())

	style, fill := focusStyle, colorError
	if p.Phase.IsBreak() {
		style, fill = breakStyle, colorSecondary
	}
	if !p.Running {
		style, fill = timerPausedStyle, colorWarning
	}

	label := style.Render(strings.ToUpper(p.Phase.Label()))
	if !p.Running {
		label += warningStyle.Render("  ⏸ PAUSED")
	}

	total := st.Settings.PhaseSeconds(p.Phase)
	var fraction float64
	if total > 0 {
		fraction = float64(p.ElapsedSeconds) / float64(total)
	}

	desc := p.Description
	if desc == "" {
		desc = tracker.PhaseFocus.Label()
	}

	controls := "space: pause/resume  x: stop  f: focus"
	if p.Phase.IsBreak() {
		controls = "space: pause/resume  b: skip break  x: stop  f: focus"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Pomodoro"),
		"",
		style.Width(w-6).Render(remaining),
		label,
		progressBar(fraction, w-10, fill),
		"",
		renderCycles(st),
		highlightStyle.Render(desc),
		"",
		mutedStyle.Render(controls),
	)
	return activePanelStyle.Width(w).Render(content)
}

// renderCycles draws one dot per focus period in the current set.
func renderCycles(st tracker.State) string {
	p := st.Pomodoro
	n := st.Settings.CyclesPerLongBreak
	done := p.CyclesInSet
	if p.Phase == tracker.PhaseLongBreak {
		done = n
	}

	var parts []string
	for i := 0; i < n; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && p.Phase == tracker.PhaseFocus:
			parts = append(parts, errorStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d completed", p.CompletedThisSession))
	return strings.Join(parts, " ") + counter
}

// focusView fills the screen with the active timer only.
func (t trackingModel) focusView(width, height int) string {
	st := t.sh.ctl.State()
	var clock, label, desc string
	style := timerRunningStyle

	switch {
	case st.Manual != nil:
		clock = formatSeconds(int64(st.Manual.ElapsedSeconds))
		label = "MANUAL"
		desc = st.Manual.Description
		if !st.Manual.Running {
			style = timerPausedStyle
		}
	case st.PomodoroActive():
		clock = formatPomodoroTime(st.PhaseRemaining())
		label = strings.ToUpper(st.Pomodoro.Phase.Label())
		desc = st.Pomodoro.Description
		style = focusStyle
		if st.Pomodoro.Phase.IsBreak() {
			style = breakStyle
		}
		if !st.Pomodoro.Running {
			style = timerPausedStyle
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		style.Render(bigDigits(clock)),
		"",
		style.Render(label),
		highlightStyle.Render(desc),
		"",
		mutedStyle.Render("esc: exit focus mode  space: pause/resume  x: stop"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

var digitGlyphs = map[rune][3]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {" ▄█", "  █", "  ▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {" ", "▪", " "},
}

// bigDigits renders a clock string three rows tall.
func bigDigits(s string) string {
	var rows [3][]string
	for _, r := range s {
		g, ok := digitGlyphs[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], g[i])
		}
	}
	lines := make([]string, 3)
	for i := range rows {
		lines[i] = strings.Join(rows[i], " ")
	}
	return strings.Join(lines, "\n")
}
