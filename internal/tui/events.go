package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/theme"
)

// eventsModel lists the unlock events followed by the themes. The cursor
// runs over both lists.
type eventsModel struct {
	sh     *shared
	width  int
	height int
	cursor int
}

func newEventsModel(sh *shared) eventsModel {
	return eventsModel{sh: sh}
}

func (m *eventsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m eventsModel) update(msg tea.Msg) (eventsModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	events, themes := theme.Events(), theme.All()
	n := len(events) + len(themes)

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Enter):
		if m.cursor < len(events) {
			return m, m.participate(events[m.cursor])
		}
		return m, m.selectTheme(themes[m.cursor-len(events)])
	}
	return m, nil
}

func (m eventsModel) participate(ev theme.Event) tea.Cmd {
	unlocked, id := theme.Participate(ev.ID, m.sh.unlocked)
	if id == "" {
		return statusCmd(fmt.Sprintf("Already joined %s", ev.Name), false)
	}
	if err := m.sh.store.SetList(store.KeyThemeUnlocked, unlocked); err != nil {
		return errorCmd("Saving unlock", err)
	}
	m.sh.unlocked = unlocked
	if err := m.sh.setTheme(id); err != nil {
		return errorCmd("Selecting theme", err)
	}
	t := theme.Resolve(id)
	return statusCmd(fmt.Sprintf("Joined %s: unlocked the %s theme", ev.Name, t.Name), false)
}

func (m eventsModel) selectTheme(t theme.Theme) tea.Cmd {
	if !theme.IsUnlocked(t.ID, m.sh.unlocked) {
		return statusCmd(t.Name+" is locked. Join its event to unlock it.", true)
	}
	if err := m.sh.setTheme(t.ID); err != nil {
		return errorCmd("Selecting theme", err)
	}
	return statusCmd("Theme set to "+t.Name, false)
}

// setTheme stores and applies the selected theme.
func (s *shared) setTheme(id string) error {
	id = theme.Select(id, s.themeID, s.unlocked)
	if err := s.store.SetSetting(store.KeyThemeSelected, id); err != nil {
		return err
	}
	s.themeID = id
	applyPalette(theme.Resolve(id).Palette)
	return nil
}

func (m eventsModel) view() string {
	w := m.width - 4
	events, themes := theme.Events(), theme.All()

	item := func(i int, text string) string {
		if i == m.cursor {
			return selectedItemStyle.Render("> " + text)
		}
		return normalItemStyle.Render("  " + text)
	}

	rows := []string{titleStyle.Render("Events"), ""}
	for i, ev := range events {
		state := mutedStyle.Render("join to unlock " + theme.Resolve(ev.ThemeID).Name)
		if theme.IsUnlocked(ev.ThemeID, m.sh.unlocked) {
			state = successStyle.Render("✓ joined")
		}
		rows = append(rows, item(i, fmt.Sprintf("%-28s", ev.Name))+" "+state)
		rows = append(rows, mutedStyle.Render("    "+ev.Description))
	}

	rows = append(rows, "", titleStyle.Render("Themes"), "")
	for j, t := range themes {
		i := len(events) + j
		swatch := dot(string(t.Palette.Primary)) + dot(string(t.Palette.Secondary)) + dot(string(t.Palette.Success))
		var state string
		switch {
		case t.ID == m.sh.themeID:
			state = successStyle.Render("● active")
		case theme.IsUnlocked(t.ID, m.sh.unlocked):
			state = mutedStyle.Render("unlocked")
		default:
			state = mutedStyle.Render("🔒 locked")
		}
		rows = append(rows, item(i, fmt.Sprintf("%-20s", t.Name))+" "+swatch+"  "+state)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: join event / apply theme"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
