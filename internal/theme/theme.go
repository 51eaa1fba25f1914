// Package theme holds the cosmetic colour themes and the events that
// unlock them.
package theme

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Theme ids.
const (
	DefaultLight = "default-light"
	DefaultDark  = "default-dark"
	BatmanKnight = "batman-knight"
	IronmanArmor = "ironman-armor"
	AgentSecret  = "agent-secret"
)

// Default is selected when nothing valid is.
const Default = DefaultDark

// Palette is the set of colours a theme applies to the UI.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Subtle    lipgloss.Color
	Border    lipgloss.Color
}

// Theme is a named palette. Built-in themes are always unlocked.
type Theme struct {
	ID      string
	Name    string
	BuiltIn bool
	Palette Palette
}

var themes = []Theme{
	{
		ID: DefaultLight, Name: "Default Light", BuiltIn: true,
		Palette: Palette{
			Primary: "#4F46E5", Secondary: "#0891B2", Success: "#059669",
			Warning: "#D97706", Danger: "#DC2626", Muted: "#6B7280",
			Text: "#111827", Subtle: "#E5E7EB", Border: "#9CA3AF",
		},
	},
	{
		ID: DefaultDark, Name: "Default Dark", BuiltIn: true,
		Palette: Palette{
			Primary: "#7C3AED", Secondary: "#06B6D4", Success: "#10B981",
			Warning: "#F59E0B", Danger: "#EF4444", Muted: "#6B7280",
			Text: "#F9FAFB", Subtle: "#374151", Border: "#4B5563",
		},
	},
	{
		ID: BatmanKnight, Name: "Dark Knight",
		Palette: Palette{
			Primary: "#FACC15", Secondary: "#A3A3A3", Success: "#84CC16",
			Warning: "#EAB308", Danger: "#B91C1C", Muted: "#525252",
			Text: "#E5E5E5", Subtle: "#171717", Border: "#404040",
		},
	},
	{
		ID: IronmanArmor, Name: "Iron Armor",
		Palette: Palette{
			Primary: "#DC2626", Secondary: "#FBBF24", Success: "#22D3EE",
			Warning: "#F59E0B", Danger: "#991B1B", Muted: "#78716C",
			Text: "#FEF3C7", Subtle: "#44403C", Border: "#B45309",
		},
	},
	{
		ID: AgentSecret, Name: "Secret Agent",
		Palette: Palette{
			Primary: "#22C55E", Secondary: "#94A3B8", Success: "#4ADE80",
			Warning: "#FDE047", Danger: "#F43F5E", Muted: "#64748B",
			Text: "#E2E8F0", Subtle: "#1E293B", Border: "#334155",
		},
	},
}

// All returns every theme in display order.
func All() []Theme { return slices.Clone(themes) }

// Get looks up a theme by id.
func Get(id string) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// Resolve returns the theme for id, or the default theme if id is unknown.
func Resolve(id string) Theme {
	if t, ok := Get(id); ok {
		return t
	}
	t, _ := Get(Default)
	return t
}

// Event is a predefined challenge whose participation unlocks a theme.
type Event struct {
	ID          string
	Name        string
	Description string
	ThemeID     string
}

var events = []Event{
	{
		ID:          "event-batman-unlock",
		Name:        "Vigilante Challenge",
		Description: "Work through the night like a true guardian of the city.",
		ThemeID:     BatmanKnight,
	},
	{
		ID:          "event-ironman-unlock",
		Name:        "Genius Inventor Assembly",
		Description: "Build something remarkable in a single focused sprint.",
		ThemeID:     IronmanArmor,
	},
	{
		ID:          "event-agent-secret-unlock",
		Name:        "Top Secret Mission",
		Description: "Complete your objectives quietly and without distraction.",
		ThemeID:     AgentSecret,
	},
}

// Events returns the predefined events.
func Events() []Event { return slices.Clone(events) }

// Normalize drops unknown and duplicate ids from unlocked and makes sure
// the built-in themes are present. Order follows the theme list.
func Normalize(unlocked []string) []string {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		if t.BuiltIn || slices.Contains(unlocked, t.ID) {
			out = append(out, t.ID)
		}
	}
	return out
}

// IsUnlocked reports whether id may be selected.
func IsUnlocked(id string, unlocked []string) bool {
	return slices.Contains(Normalize(unlocked), id)
}

// Participate joins an event. It returns the updated unlocked list and the
// id of the theme it unlocked, which is empty when the event is unknown or
// its theme was already unlocked.
func Participate(eventID string, unlocked []string) ([]string, string) {
	unlocked = Normalize(unlocked)
	for _, ev := range events {
		if ev.ID != eventID {
			continue
		}
		if slices.Contains(unlocked, ev.ThemeID) {
			return unlocked, ""
		}
		return Normalize(append(unlocked, ev.ThemeID)), ev.ThemeID
	}
	return unlocked, ""
}

// Select returns id if it is unlocked, otherwise current. An invalid
// current falls back to the default.
func Select(id, current string, unlocked []string) string {
	if IsUnlocked(id, unlocked) {
		return id
	}
	return Selected(current, unlocked)
}

// Selected validates a stored selection against the unlocked list.
func Selected(id string, unlocked []string) string {
	if IsUnlocked(id, unlocked) {
		return id
	}
	return Default
}
