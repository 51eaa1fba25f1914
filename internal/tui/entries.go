package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/tracker"
)

type entriesModel struct {
	sh     *shared
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	editingID  string

	formDesc     *string
	formDuration *string
	formProject  *string
}

func newEntriesModel(sh *shared) entriesModel {
	desc, dur, project := "", "", ""
	return entriesModel{
		sh:           sh,
		formDesc:     &desc,
		formDuration: &dur,
		formProject:  &project,
	}
}

func (m *entriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := m.sh.ctl.Log().Len()
	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Edit):
		if n > 0 {
			return m.showEditForm()
		}
	}
	return m, nil
}

func (m entriesModel) showEditForm() (entriesModel, tea.Cmd) {
	entries := m.sh.ctl.Log().All()
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
	e := entries[m.cursor]
	m.editingID = e.ID
	*m.formDesc = e.Description
	*m.formDuration = formatSeconds(e.DurationSeconds)
	*m.formProject = e.ProjectID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(m.formDesc),
			huh.NewInput().Title("Duration (HH:MM:SS)").Value(m.formDuration).
				Validate(func(s string) error {
					_, err := parseClock(s)
					return err
				}),
			huh.NewSelect[string]().Title("Project").Options(projectOptions(m.sh.projects)...).Value(m.formProject),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		secs, err := parseClock(*m.formDuration)
		if err != nil {
			return m, errorCmd("Invalid duration", err)
		}
		e, ok := m.sh.ctl.EditEntry(m.editingID, tracker.EntryEdit{
			Description:     *m.formDesc,
			DurationSeconds: secs,
			ProjectID:       *m.formProject,
		})
		if !ok {
			return m, statusCmd("Entry no longer exists", true)
		}
		return m, statusCmd(fmt.Sprintf("Updated %q", e.Description), false)
	}
	return m, cmd
}

func (m entriesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Entry"), "", m.form.View()),
		)
	}

	entries := m.sh.ctl.Log().All()
	title := titleStyle.Render(fmt.Sprintf("Entries (%d)", len(entries)))
	if len(entries) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Nothing tracked yet. Start a timer from the Tracking view."),
		))
	}

	visible := m.height - 10
	if visible < 3 {
		visible = 3
	}
	first := 0
	if m.cursor >= visible {
		first = m.cursor - visible + 1
	}

	colors := m.sh.colors()
	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-10s %-5s   %-30s %-16s %8s", "Date", "Start", "Description", "Project", "Duration")))
	for i := first; i < len(entries) && i < first+visible; i++ {
		e := entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		kind := " "
		if e.IsPomodoro {
			kind = "◆"
		}
		line := fmt.Sprintf("%-10s %-5s %s %-30s %-16s %8s",
			e.Date,
			e.Start().Local().Format("15:04"),
			kind,
			truncate(e.Description, 30),
			truncate(m.sh.projectName(e.ProjectID), 16),
			report.HumanDuration(e.DurationSeconds),
		)
		rows = append(rows, cursor+dot(report.ProjectColor(colors, e.ProjectID, i))+" "+style.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: edit  ◆ pomodoro focus  E: export"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
