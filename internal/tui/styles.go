package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeeper/internal/theme"
)

// Colours come from the selected theme; see applyPalette.
var (
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorMuted     lipgloss.Color
	colorSuccess   lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorFg        lipgloss.Color
	colorSubtle    lipgloss.Color
	colorBorder    lipgloss.Color
)

var (
	activeTabStyle   lipgloss.Style
	inactiveTabStyle lipgloss.Style

	panelStyle       lipgloss.Style
	activePanelStyle lipgloss.Style

	timerStyle        lipgloss.Style
	timerRunningStyle lipgloss.Style
	timerPausedStyle  lipgloss.Style
	focusStyle        lipgloss.Style
	breakStyle        lipgloss.Style

	titleStyle     lipgloss.Style
	successStyle   lipgloss.Style
	warningStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	mutedStyle     lipgloss.Style
	highlightStyle lipgloss.Style

	headerStyle lipgloss.Style
	footerStyle lipgloss.Style

	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
)

func init() {
	applyPalette(theme.Resolve(theme.Default).Palette)
}

// applyPalette rebuilds every style from p.
func applyPalette(p theme.Palette) {
	colorPrimary = p.Primary
	colorSecondary = p.Secondary
	colorMuted = p.Muted
	colorSuccess = p.Success
	colorWarning = p.Warning
	colorError = p.Danger
	colorFg = p.Text
	colorSubtle = p.Subtle
	colorBorder = p.Border

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	timerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Align(lipgloss.Center)

	timerRunningStyle = timerStyle.Foreground(colorSuccess)
	timerPausedStyle = timerStyle.Foreground(colorWarning)
	focusStyle = timerStyle.Foreground(colorError)
	breakStyle = timerStyle.Foreground(colorSecondary)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorSecondary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)
}

// dot renders a coloured bullet.
func dot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}
