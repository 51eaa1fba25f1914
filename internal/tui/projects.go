package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/store"
)

type projectsModel struct {
	sh     *shared
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project"

	// Form field pointers (survive value copies)
	formName  *string
	formColor *string

	editingID string
}

func newProjectsModel(sh *shared) projectsModel {
	name, color := "", report.ProjectColors[0]
	return projectsModel{
		sh:        sh,
		formName:  &name,
		formColor: &color,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func loadProjects(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		projects, err := s.ListProjects()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Loading projects: %v", err), isError: true}
		}
		return projectsDataMsg{projects: projects}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		if p.cursor >= len(msg.projects) {
			p.cursor = max(0, len(msg.projects)-1)
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.sh.projects)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if p.cursor < len(p.sh.projects) {
				proj := p.sh.projects[p.cursor]
				return p.showForm(&proj)
			}
		}
	}
	return p, nil
}

func (p projectsModel) showForm(proj *store.Project) (projectsModel, tea.Cmd) {
	p.formType = "project"
	*p.formName = ""
	*p.formColor = report.ProjectColors[len(p.sh.projects)%len(report.ProjectColors)]
	if proj != nil {
		p.formType = "edit_project"
		p.editingID = proj.ID
		*p.formName = proj.Name
		*p.formColor = proj.Color
	}

	colorOptions := make([]huh.Option[string], 0, len(report.ProjectColors)+1)
	for _, c := range report.ProjectColors {
		colorOptions = append(colorOptions, huh.NewOption(dot(c)+" "+c, c))
	}
	if proj != nil && !slices.Contains(report.ProjectColors, proj.Color) {
		colorOptions = append(colorOptions, huh.NewOption(dot(proj.Color)+" "+proj.Color, proj.Color))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return store.ErrEmptyName
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		name, color := *p.formName, *p.formColor
		var err error
		switch p.formType {
		case "project":
			_, err = p.sh.store.CreateProject(name, color)
		case "edit_project":
			err = p.sh.store.UpdateProject(p.editingID, name, color)
		}
		if err != nil {
			if errors.Is(err, store.ErrEmptyName) {
				return p, statusCmd("Project name is required", true)
			}
			return p, errorCmd("Saving project", err)
		}
		return p, tea.Batch(loadProjects(p.sh.store), statusCmd("Saved project "+strings.TrimSpace(name), false))
	}

	return p, cmd
}

func (p projectsModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.formType == "edit_project" {
			title = titleStyle.Render("Edit Project")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}

	title := titleStyle.Render("Projects")
	if len(p.sh.projects) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No projects yet. Press n to create one."),
		))
	}

	totals := map[string]int64{}
	for _, e := range p.sh.ctl.Log().All() {
		totals[e.ProjectID] += e.DurationSeconds
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("     %-28s %-9s %10s", "Name", "Color", "Tracked")))
	for i, proj := range p.sh.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%-28s %-9s %10s", truncate(proj.Name, 28), proj.Color, report.HumanDuration(totals[proj.ID]))
		rows = append(rows, cursor+dot(proj.Color)+"  "+style.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  enter: edit"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
